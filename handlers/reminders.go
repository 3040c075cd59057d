package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

type ReminderHandler struct {
	store *store.Store
	hub   *Hub
}

func NewReminderHandler(s *store.Store, h *Hub) *ReminderHandler {
	return &ReminderHandler{store: s, hub: h}
}

// normalizeReminderTime canonicalizes to zero-padded "HH:MM". The due
// scan compares stored times against the current minute formatted the
// same way, so anything else on disk would never match.
func normalizeReminderTime(value string) (string, bool) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return "", false
	}
	return parsed.Format("15:04"), true
}

func validDays(days []int) bool {
	if len(days) == 0 {
		return false
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return false
		}
	}
	return true
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Type == "" || req.Title == "" || req.Time == "" {
		http.Error(w, "Type, title, and time are required", http.StatusBadRequest)
		return
	}
	if !models.ValidReminderTypes[req.Type] {
		http.Error(w, "Invalid reminder type", http.StatusBadRequest)
		return
	}
	normalized, ok := normalizeReminderTime(req.Time)
	if !ok {
		http.Error(w, "Time must be in HH:MM format", http.StatusBadRequest)
		return
	}
	req.Time = normalized
	if !validDays(req.Days) {
		http.Error(w, "Days must contain at least one weekday between 0 and 6", http.StatusBadRequest)
		return
	}

	reminder, err := h.store.CreateReminder(userID, req)
	if err != nil {
		http.Error(w, "Failed to create reminder", http.StatusInternalServerError)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventReminderCreated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]*models.Reminder{"reminder": reminder},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]*models.Reminder{"reminder": reminder})
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var isActive *bool
	switch r.URL.Query().Get("isActive") {
	case "true":
		v := true
		isActive = &v
	case "false":
		v := false
		isActive = &v
	}

	reminders, err := h.store.GetRemindersForUser(userID, isActive)
	if err != nil {
		http.Error(w, "Failed to fetch reminders", http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.Reminder{"reminders": reminders})
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	reminder, err := h.store.GetReminderByID(r.PathValue("id"))
	if err != nil || reminder.UserID != userID {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Reminder{"reminder": reminder})
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.UpdateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Type != nil && !models.ValidReminderTypes[*req.Type] {
		http.Error(w, "Invalid reminder type", http.StatusBadRequest)
		return
	}
	if req.Time != nil {
		normalized, ok := normalizeReminderTime(*req.Time)
		if !ok {
			http.Error(w, "Time must be in HH:MM format", http.StatusBadRequest)
			return
		}
		req.Time = &normalized
	}
	if req.Days != nil && !validDays(*req.Days) {
		http.Error(w, "Days must contain at least one weekday between 0 and 6", http.StatusBadRequest)
		return
	}

	reminder, err := h.store.UpdateReminder(r.PathValue("id"), userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update reminder", http.StatusInternalServerError)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventReminderUpdated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]*models.Reminder{"reminder": reminder},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Reminder{"reminder": reminder})
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	reminderID := r.PathValue("id")

	deleted, err := h.store.DeleteReminder(reminderID, userID)
	if err != nil {
		http.Error(w, "Failed to delete reminder", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventReminderDeleted,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]string{"reminderId": reminderID},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Reminder deleted successfully"})
}
