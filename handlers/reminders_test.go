package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mindnest-server/middleware"
	"mindnest-server/models"
	"mindnest-server/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(username, username+"@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// asUser attaches an authenticated identity the way the middleware would.
func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.SetUserID(req.Context(), userID))
}

func TestCreateReminderValidation(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")
	h := NewReminderHandler(s, NewHub(s))

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{"type":"medication"}`},
		{"invalid type", `{"type":"nagging","title":"x","time":"09:00","days":[1]}`},
		{"bad time", `{"type":"medication","title":"x","time":"25:99","days":[1]}`},
		{"empty days", `{"type":"medication","title":"x","time":"09:00","days":[]}`},
		{"day out of range", `{"type":"medication","title":"x","time":"09:00","days":[7]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest("POST", "/api/reminders", strings.NewReader(tc.body)), user.ID)
			rec := httptest.NewRecorder()
			h.Create(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateAndListReminders(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")
	h := NewReminderHandler(s, NewHub(s))

	body := `{"type":"medication","title":"Take meds","time":"09:00","days":[1,3,5]}`
	req := asUser(httptest.NewRequest("POST", "/api/reminders", strings.NewReader(body)), user.ID)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Reminder models.Reminder `json:"reminder"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !created.Reminder.IsActive {
		t.Error("new reminder should default to active")
	}
	if created.Reminder.LastTriggered != nil {
		t.Error("new reminder should start untriggered")
	}

	req = asUser(httptest.NewRequest("GET", "/api/reminders", nil), user.ID)
	rec = httptest.NewRecorder()
	h.List(rec, req)

	var listed struct {
		Reminders []models.Reminder `json:"reminders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Reminders) != 1 {
		t.Fatalf("reminders = %d, want 1", len(listed.Reminders))
	}
	if len(listed.Reminders[0].Days) != 3 {
		t.Errorf("days = %v, want three entries", listed.Reminders[0].Days)
	}
}

func TestCreateReminderNormalizesTime(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")
	h := NewReminderHandler(s, NewHub(s))

	body := `{"type":"medication","title":"Take meds","time":"9:00","days":[1]}`
	req := asUser(httptest.NewRequest("POST", "/api/reminders", strings.NewReader(body)), user.ID)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Reminder models.Reminder `json:"reminder"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Reminder.Time != "09:00" {
		t.Errorf("stored time = %q, want zero-padded 09:00", created.Reminder.Time)
	}

	// The stored form must match what the due scan compares against,
	// otherwise the reminder is accepted but never fires.
	due, err := s.GetDueReminders(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due at Monday 09:00 = %d, want 1", len(due))
	}
}

func TestUpdateReminderNormalizesTime(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")
	h := NewReminderHandler(s, NewHub(s))

	created, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "medication", Title: "Take meds", Time: "09:00", Days: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	req := asUser(httptest.NewRequest("PUT", "/api/reminders/"+created.ID, strings.NewReader(`{"time":"9:05"}`)), user.ID)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	got, err := s.GetReminderByID(created.ID)
	if err != nil {
		t.Fatalf("GetReminderByID: %v", err)
	}
	if got.Time != "09:05" {
		t.Errorf("stored time = %q, want 09:05", got.Time)
	}
}

func TestGetReminderNotOwned(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	h := NewReminderHandler(s, NewHub(s))

	created, err := s.CreateReminder(alice.ID, models.CreateReminderRequest{
		Type: "therapy", Title: "Session", Time: "10:00", Days: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	req := asUser(httptest.NewRequest("GET", "/api/reminders/"+created.ID, nil), bob.ID)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListRemindersActiveFilter(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")
	h := NewReminderHandler(s, NewHub(s))

	active, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "custom", Title: "on", Time: "09:00", Days: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	paused, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "custom", Title: "off", Time: "10:00", Days: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	off := false
	if _, err := s.UpdateReminder(paused.ID, user.ID, models.UpdateReminderRequest{IsActive: &off}); err != nil {
		t.Fatalf("UpdateReminder: %v", err)
	}

	req := asUser(httptest.NewRequest("GET", "/api/reminders?isActive=true", nil), user.ID)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	var listed struct {
		Reminders []models.Reminder `json:"reminders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Reminders) != 1 || listed.Reminders[0].ID != active.ID {
		t.Errorf("filtered list = %+v, want only the active reminder", listed.Reminders)
	}
}
