package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

type MoodHandler struct {
	store *store.Store
	hub   *Hub
}

func NewMoodHandler(s *store.Store, h *Hub) *MoodHandler {
	return &MoodHandler{store: s, hub: h}
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MoodLevel < 1 || req.MoodLevel > 10 {
		http.Error(w, "Mood level must be between 1 and 10", http.StatusBadRequest)
		return
	}
	if req.Emotion != "" && !models.ValidEmotions[req.Emotion] {
		http.Error(w, "Invalid emotion", http.StatusBadRequest)
		return
	}

	mood, err := h.store.CreateMood(userID, req, time.Now())
	if err != nil {
		http.Error(w, "Failed to save mood", http.StatusInternalServerError)
		return
	}

	// Dashboard listens for refreshed stats alongside the new entry.
	stats, _ := h.store.GetMoodStats(userID, nil, nil)
	h.hub.Publish(models.Event{
		Type:     models.EventMoodCreated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]any{"mood": mood, "stats": stats},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]*models.Mood{"mood": mood})
}

func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	q := store.MoodQuery{Limit: 30}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if start, err := time.Parse(time.RFC3339, r.URL.Query().Get("startDate")); err == nil {
		if end, err := time.Parse(time.RFC3339, r.URL.Query().Get("endDate")); err == nil {
			q.StartDate = &start
			q.EndDate = &end
		}
	}

	moods, err := h.store.GetMoodsForUser(userID, q)
	if err != nil {
		http.Error(w, "Failed to fetch moods", http.StatusInternalServerError)
		return
	}
	if moods == nil {
		moods = []models.Mood{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.Mood{"moods": moods})
}

func (h *MoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	mood, err := h.store.GetMoodByID(r.PathValue("id"))
	if err != nil || mood.UserID != userID {
		http.Error(w, "Mood not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Mood{"mood": mood})
}

func (h *MoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.UpdateMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MoodLevel != nil && (*req.MoodLevel < 1 || *req.MoodLevel > 10) {
		http.Error(w, "Mood level must be between 1 and 10", http.StatusBadRequest)
		return
	}

	mood, err := h.store.UpdateMood(r.PathValue("id"), userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Mood not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update mood", http.StatusInternalServerError)
		return
	}

	stats, _ := h.store.GetMoodStats(userID, nil, nil)
	h.hub.Publish(models.Event{
		Type:     models.EventMoodUpdated,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]any{"mood": mood, "stats": stats},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Mood{"mood": mood})
}

func (h *MoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	moodID := r.PathValue("id")

	deleted, err := h.store.DeleteMood(moodID, userID)
	if err != nil {
		http.Error(w, "Failed to delete mood", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Mood not found", http.StatusNotFound)
		return
	}

	stats, _ := h.store.GetMoodStats(userID, nil, nil)
	h.hub.Publish(models.Event{
		Type:     models.EventMoodDeleted,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]any{"moodId": moodID, "stats": stats},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Mood deleted successfully"})
}

func (h *MoodHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var start, end *time.Time
	if s, err := time.Parse(time.RFC3339, r.URL.Query().Get("startDate")); err == nil {
		if e, err := time.Parse(time.RFC3339, r.URL.Query().Get("endDate")); err == nil {
			start, end = &s, &e
		}
	}

	stats, err := h.store.GetMoodStats(userID, start, end)
	if err != nil {
		http.Error(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.MoodStats{"stats": stats})
}
