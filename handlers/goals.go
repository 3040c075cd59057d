package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

type GoalHandler struct {
	store *store.Store
	hub   *Hub
}

func NewGoalHandler(s *store.Store, h *Hub) *GoalHandler {
	return &GoalHandler{store: s, hub: h}
}

// publishChange emits a single coarse event for any goal mutation; clients
// refetch the list rather than patching individual entries.
func (h *GoalHandler) publishChange(userID, action string, payload any) {
	h.hub.Publish(models.Event{
		Type:     models.EventGoalChanged,
		Audience: models.PrivateTo(userID),
		Payload:  map[string]any{"action": action, "goal": payload},
	})
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, "Goal title is required", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = "daily"
	}
	if !models.ValidGoalTypes[req.Type] {
		http.Error(w, "Goal type must be daily, weekly, or monthly", http.StatusBadRequest)
		return
	}

	goal, err := h.store.CreateGoal(userID, req)
	if err != nil {
		http.Error(w, "Failed to create goal", http.StatusInternalServerError)
		return
	}

	h.publishChange(userID, "created", goal)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]*models.Goal{"goal": goal})
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidGoalStatuses[status] {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}

	goals, err := h.store.GetGoalsForUser(userID, status)
	if err != nil {
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.Goal{"goals": goals})
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	goal, err := h.store.GetGoalByID(r.PathValue("id"))
	if err != nil || goal.UserID != userID {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Goal{"goal": goal})
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Status != nil && !models.ValidGoalStatuses[*req.Status] {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if req.Type != nil && !models.ValidGoalTypes[*req.Type] {
		http.Error(w, "Goal type must be daily, weekly, or monthly", http.StatusBadRequest)
		return
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		http.Error(w, "Progress must be between 0 and 100", http.StatusBadRequest)
		return
	}

	goal, err := h.store.UpdateGoal(r.PathValue("id"), userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}

	h.publishChange(userID, "updated", goal)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*models.Goal{"goal": goal})
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	goalID := r.PathValue("id")

	deleted, err := h.store.DeleteGoal(goalID, userID)
	if err != nil {
		http.Error(w, "Failed to delete goal", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}

	h.publishChange(userID, "deleted", map[string]string{"id": goalID})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Goal deleted successfully"})
}
