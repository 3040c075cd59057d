package scheduler

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mindnest-server/models"
	"mindnest-server/store"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) Publish(evt models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) all() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

type sinkRecorder struct {
	mu      sync.Mutex
	userIDs []string
}

func (r *sinkRecorder) Notify(userID string, n models.ReminderNotification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
}

func (r *sinkRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.userIDs)
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *store.Store, *eventRecorder, *sinkRecorder) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	events := &eventRecorder{}
	sink := &sinkRecorder{}
	sched := New(s, events)
	sched.SetSink(sink)
	sched.SetClock(func() time.Time { return now })
	return sched, s, events, sink
}

func TestCheckRemindersFiresOncePerDay(t *testing.T) {
	// 2026-03-02 09:00 is a Monday.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sched, s, events, sink := newTestScheduler(t, now)

	user, err := s.CreateUser("alice", "alice@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	reminder, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "medication", Title: "Take meds", Time: "09:00", Days: []int{1},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	sched.CheckReminders()

	got := events.all()
	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	evt := got[0]
	if evt.Type != models.EventReminderFired {
		t.Errorf("event type = %q, want %q", evt.Type, models.EventReminderFired)
	}
	if evt.Audience.IsGlobal() || evt.Audience.UserID() != user.ID {
		t.Error("reminder event should be private to the owner")
	}
	if sink.count() != 1 {
		t.Errorf("sink notified %d times, want 1", sink.count())
	}

	updated, err := s.GetReminderByID(reminder.ID)
	if err != nil {
		t.Fatalf("GetReminderByID: %v", err)
	}
	if updated.LastTriggered == nil {
		t.Fatal("lastTriggered not recorded")
	}

	// A second scan the same day must not fire again.
	sched.CheckReminders()
	if len(events.all()) != 1 {
		t.Fatalf("reminder fired twice in one day")
	}
}

func TestCheckRemindersSkipsDisabledNotifications(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sched, s, events, sink := newTestScheduler(t, now)

	user, err := s.CreateUser("bob", "bob@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	off := false
	if _, err := s.UpdateUserPreferences(user.ID, models.UpdatePreferencesRequest{Notifications: &off}); err != nil {
		t.Fatalf("UpdateUserPreferences: %v", err)
	}

	if _, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "exercise", Title: "Stretch", Time: "09:00", Days: []int{1},
	}); err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	sched.CheckReminders()

	// The realtime event still goes out; only the sink stays quiet.
	if len(events.all()) != 1 {
		t.Fatalf("events = %d, want 1", len(events.all()))
	}
	if sink.count() != 0 {
		t.Errorf("sink notified despite notifications disabled")
	}
}

func TestCheckRemindersIgnoresOtherTimes(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sched, s, events, _ := newTestScheduler(t, now)

	user, err := s.CreateUser("carol", "carol@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "custom", Title: "Evening check-in", Time: "21:00", Days: []int{1},
	}); err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	sched.CheckReminders()
	if len(events.all()) != 0 {
		t.Fatalf("reminder fired outside its scheduled minute")
	}
}
