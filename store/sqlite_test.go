package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mindnest-server/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(username, username+"@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestCreateUserDefaults(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	if user.Theme != "light" {
		t.Errorf("theme = %q, want light", user.Theme)
	}
	if !user.Notifications {
		t.Error("notifications should default to true")
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}
	if !s.ValidatePassword(user, "password123") {
		t.Error("ValidatePassword rejected the correct password")
	}
	if s.ValidatePassword(user, "wrong") {
		t.Error("ValidatePassword accepted a wrong password")
	}
}

func TestReminderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	created, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type:  "medication",
		Title: "Take meds",
		Time:  "09:00",
		Days:  []int{5, 1, 3},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	if !created.IsActive {
		t.Error("new reminder should be active")
	}
	if created.LastTriggered != nil {
		t.Error("new reminder should have no lastTriggered")
	}

	got, err := s.GetReminderByID(created.ID)
	if err != nil {
		t.Fatalf("GetReminderByID: %v", err)
	}
	// Days come back sorted regardless of insert order.
	want := []int{1, 3, 5}
	if len(got.Days) != len(want) {
		t.Fatalf("days = %v, want %v", got.Days, want)
	}
	for i, d := range want {
		if got.Days[i] != d {
			t.Fatalf("days = %v, want %v", got.Days, want)
		}
	}
}

func TestDeleteReminderRemovesDays(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	created, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
		Type: "therapy", Title: "Session", Time: "10:00", Days: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	deleted, err := s.DeleteReminder(created.ID, user.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteReminder = (%v, %v), want (true, nil)", deleted, err)
	}

	days, err := s.getReminderDays(created.ID)
	if err != nil {
		t.Fatalf("getReminderDays: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("day rows survived delete: %v", days)
	}

	if deleted, _ := s.DeleteReminder(created.ID, user.ID); deleted {
		t.Error("second delete reported success")
	}
}

func TestGetDueReminders(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	// 2026-03-02 is a Monday.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mk := func(title, at string, days []int) *models.Reminder {
		r, err := s.CreateReminder(user.ID, models.CreateReminderRequest{
			Type: "custom", Title: title, Time: at, Days: days,
		})
		if err != nil {
			t.Fatalf("CreateReminder(%s): %v", title, err)
		}
		return r
	}

	match := mk("match", "09:00", []int{1})
	mk("wrong-time", "09:01", []int{1})
	mk("wrong-day", "09:00", []int{2})
	inactive := mk("inactive", "09:00", []int{1})
	off := false
	if _, err := s.UpdateReminder(inactive.ID, user.ID, models.UpdateReminderRequest{IsActive: &off}); err != nil {
		t.Fatalf("UpdateReminder: %v", err)
	}

	due, err := s.GetDueReminders(now)
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 1 || due[0].ID != match.ID {
		t.Fatalf("due = %+v, want exactly %q", due, match.ID)
	}
	if !due[0].UserNotifications {
		t.Error("UserNotifications should reflect the owner's default")
	}

	if err := s.MarkReminderTriggered(match.ID, now); err != nil {
		t.Fatalf("MarkReminderTriggered: %v", err)
	}

	// Same day, later minute with the same wall time: already fired.
	due, err = s.GetDueReminders(now.Add(time.Second))
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("reminder fired twice in one day: %+v", due)
	}

	// Next week it is due again.
	due, err = s.GetDueReminders(now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("GetDueReminders: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due next week = %+v, want one entry", due)
	}
}

func TestUpdateMoodStorageFailure(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	mood, err := s.CreateMood(user.ID, models.CreateMoodRequest{MoodLevel: 5}, time.Now())
	if err != nil {
		t.Fatalf("CreateMood: %v", err)
	}

	s.Close()

	// A storage failure must not masquerade as not-owned.
	level := 7
	_, err = s.UpdateMood(mood.ID, user.ID, models.UpdateMoodRequest{MoodLevel: &level})
	if err == nil {
		t.Fatal("UpdateMood on a closed store should fail")
	}
	if errors.Is(err, sql.ErrNoRows) {
		t.Error("storage failure reported as sql.ErrNoRows")
	}
}

func TestDeleteMoodRemovesTags(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	mood, err := s.CreateMood(user.ID, models.CreateMoodRequest{
		MoodLevel: 6, Tags: []string{"work", "sleep"},
	}, time.Now())
	if err != nil {
		t.Fatalf("CreateMood: %v", err)
	}

	deleted, err := s.DeleteMood(mood.ID, user.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteMood = (%v, %v), want (true, nil)", deleted, err)
	}

	tags, err := s.getTags("mood_tags", "mood_id", mood.ID)
	if err != nil {
		t.Fatalf("getTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tag rows survived delete: %v", tags)
	}
}

func TestMoodStats(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	now := time.Now()
	for _, m := range []models.CreateMoodRequest{
		{MoodLevel: 4, Emotion: "sad"},
		{MoodLevel: 8, Emotion: "happy"},
		{MoodLevel: 6, Emotion: "happy"},
	} {
		if _, err := s.CreateMood(user.ID, m, now); err != nil {
			t.Fatalf("CreateMood: %v", err)
		}
	}

	stats, err := s.GetMoodStats(user.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetMoodStats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Average != 6 {
		t.Errorf("average = %v, want 6", stats.Average)
	}
	if stats.Emotions["happy"] != 2 || stats.Emotions["sad"] != 1 {
		t.Errorf("emotions = %v", stats.Emotions)
	}
}

func TestToggleLike(t *testing.T) {
	s := newTestStore(t)
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	post, err := s.CreatePost(alice.ID, "hello", false, nil)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	liked, err := s.ToggleLike(post.ID, bob.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", liked, err)
	}

	got, err := s.GetPostByID(post.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if got.LikesCount != 1 {
		t.Errorf("likesCount = %d, want 1", got.LikesCount)
	}

	liked, err = s.ToggleLike(post.ID, bob.ID)
	if err != nil || liked {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", liked, err)
	}

	got, _ = s.GetPostByID(post.ID)
	if got.LikesCount != 0 {
		t.Errorf("likesCount after unlike = %d, want 0", got.LikesCount)
	}
}

func TestUpdateGoalCompletion(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	goal, err := s.CreateGoal(user.ID, models.CreateGoalRequest{Title: "Walk daily", Type: "daily"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if goal.Status != "pending" || goal.Progress != 0 {
		t.Fatalf("new goal = %s/%d, want pending/0", goal.Status, goal.Progress)
	}

	done := "completed"
	goal, err = s.UpdateGoal(goal.ID, user.ID, models.UpdateGoalRequest{Status: &done})
	if err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	if goal.Progress != 100 {
		t.Errorf("completed goal progress = %d, want 100", goal.Progress)
	}
	if goal.CompletedAt == nil {
		t.Error("completed goal should record completedAt")
	}
}

func TestJournalSearchAndCount(t *testing.T) {
	s := newTestStore(t)
	user := newTestUser(t, s, "alice")

	for _, c := range []string{"gratitude list", "rough morning", "gratitude again"} {
		if _, err := s.CreateJournal(user.ID, models.CreateJournalRequest{Content: c}); err != nil {
			t.Fatalf("CreateJournal: %v", err)
		}
	}

	journals, err := s.GetJournalsForUser(user.ID, JournalQuery{Search: "gratitude", Limit: 10, Page: 1})
	if err != nil {
		t.Fatalf("GetJournalsForUser: %v", err)
	}
	if len(journals) != 2 {
		t.Errorf("search hits = %d, want 2", len(journals))
	}

	total, err := s.CountJournals(user.ID, "gratitude")
	if err != nil {
		t.Fatalf("CountJournals: %v", err)
	}
	if total != 2 {
		t.Errorf("count = %d, want 2", total)
	}
}
