package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

type JournalHandler struct {
	store *store.Store
	hub   *Hub
}

func NewJournalHandler(s *store.Store, h *Hub) *JournalHandler {
	return &JournalHandler{store: s, hub: h}
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Content == "" {
		http.Error(w, "Journal content is required", http.StatusBadRequest)
		return
	}

	journal, err := h.store.CreateJournal(userID, req)
	if err != nil {
		http.Error(w, "Failed to create journal", http.StatusInternalServerError)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventJournalCreated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]*models.Journal{"journal": journal},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]*models.Journal{"journal": journal})
}

// AutoSave upserts a draft without emitting events; the editor calls it on
// an interval while the user types.
func (h *JournalHandler) AutoSave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.AutoSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var journal *models.Journal
	var err error
	if req.DraftID != "" {
		journal, err = h.store.UpdateJournal(req.DraftID, userID, models.UpdateJournalRequest{
			Title:   &req.Title,
			Content: &req.Content,
			Mood:    &req.Mood,
			Tags:    &req.Tags,
		})
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
	} else {
		journal, err = h.store.CreateJournal(userID, models.CreateJournalRequest{
			Title:   req.Title,
			Content: req.Content,
			Mood:    req.Mood,
			Tags:    req.Tags,
		})
	}
	if err != nil {
		http.Error(w, "Failed to save draft", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "Draft saved",
		"journal": journal,
		"draftId": journal.ID,
	})
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	q := store.JournalQuery{
		Search: r.URL.Query().Get("search"),
		Limit:  10,
		Page:   1,
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if page := r.URL.Query().Get("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil && n > 0 {
			q.Page = n
		}
	}

	journals, err := h.store.GetJournalsForUser(userID, q)
	if err != nil {
		http.Error(w, "Failed to fetch journals", http.StatusInternalServerError)
		return
	}
	if journals == nil {
		journals = []models.Journal{}
	}

	total, err := h.store.CountJournals(userID, q.Search)
	if err != nil {
		http.Error(w, "Failed to fetch journals", http.StatusInternalServerError)
		return
	}

	totalPages := total / q.Limit
	if total%q.Limit > 0 {
		totalPages++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"journals":    journals,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": q.Page,
	})
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	journal, err := h.store.GetJournalByID(r.PathValue("id"))
	if err != nil || journal.UserID != userID {
		http.Error(w, "Journal not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Journal{"journal": journal})
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.UpdateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Content != nil && *req.Content == "" {
		http.Error(w, "Journal content is required", http.StatusBadRequest)
		return
	}

	journal, err := h.store.UpdateJournal(r.PathValue("id"), userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Journal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update journal", http.StatusInternalServerError)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventJournalUpdated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]*models.Journal{"journal": journal},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Journal{"journal": journal})
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	journalID := r.PathValue("id")

	deleted, err := h.store.DeleteJournal(journalID, userID)
	if err != nil {
		http.Error(w, "Failed to delete journal", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Journal not found", http.StatusNotFound)
		return
	}

	h.hub.Publish(models.Event{
		Type:     models.EventJournalDeleted,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]string{"journalId": journalID},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Journal deleted successfully"})
}
