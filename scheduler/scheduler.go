package scheduler

import (
	"log"
	"time"

	"mindnest-server/models"
	"mindnest-server/store"

	"github.com/robfig/cron/v3"
)

// Broadcaster delivers domain events to connected realtime clients.
type Broadcaster interface {
	Publish(evt models.Event)
}

// NotificationSink receives reminder notifications for delivery outside
// the realtime channel (push, email). Implementations must not block.
type NotificationSink interface {
	Notify(userID string, n models.ReminderNotification)
}

// LogSink is the default sink; it only records that a notification
// would have been sent.
type LogSink struct{}

func (LogSink) Notify(userID string, n models.ReminderNotification) {
	log.Printf("[SCHEDULER] Notification for user %s: %s (%s)", userID, n.Title, n.Type)
}

// Scheduler scans for due reminders once per minute and fires each at
// most once per day. Marking a reminder triggered happens before the
// event is published, so a crash between the two drops the event rather
// than firing it twice.
type Scheduler struct {
	store *store.Store
	hub   Broadcaster
	sink  NotificationSink
	cron  *cron.Cron
	now   func() time.Time
}

func New(s *store.Store, hub Broadcaster) *Scheduler {
	return &Scheduler{
		store: s,
		hub:   hub,
		sink:  LogSink{},
		now:   time.Now,
	}
}

// SetSink replaces the notification sink. Call before Start.
func (s *Scheduler) SetSink(sink NotificationSink) {
	s.sink = sink
}

// SetClock replaces the time source. Call before Start.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Scheduler) Start() error {
	// SkipIfStillRunning serializes ticks: a slow scan suppresses the
	// next one instead of overlapping it.
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	if _, err := s.cron.AddFunc("* * * * *", s.CheckReminders); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("[SCHEDULER] Reminder scheduler started (checking every minute)")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("[SCHEDULER] Reminder scheduler stopped")
}

// CheckReminders runs one scan cycle. A failed query skips the whole
// cycle; the next minute retries naturally.
func (s *Scheduler) CheckReminders() {
	now := s.now()

	due, err := s.store.GetDueReminders(now)
	if err != nil {
		log.Printf("[SCHEDULER] Due reminder query failed: %v", err)
		return
	}

	for _, reminder := range due {
		// The mark is the linearization point: if it fails, skip the
		// reminder this cycle rather than risk firing twice today.
		if err := s.store.MarkReminderTriggered(reminder.ID, now); err != nil {
			log.Printf("[SCHEDULER] Failed to mark reminder %s: %v", reminder.ID, err)
			continue
		}

		notification := models.ReminderNotification{
			ID:          reminder.ID,
			Title:       reminder.Title,
			Description: reminder.Description,
			Type:        reminder.Type,
			Time:        reminder.Time,
		}

		s.hub.Publish(models.Event{
			Type:     models.EventReminderFired,
			Audience: models.PrivateTo(reminder.UserID),
			Payload:  map[string]models.ReminderNotification{"reminder": notification},
		})

		if reminder.UserNotifications {
			s.sink.Notify(reminder.UserID, notification)
		}

		log.Printf("[SCHEDULER] Triggered reminder %s (%s) for user %s", reminder.ID, reminder.Title, reminder.UserID)
	}
}
