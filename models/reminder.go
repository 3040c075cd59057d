package models

import "time"

type Reminder struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Time          string     `json:"time"` // "HH:MM", minute resolution
	Days          []int      `json:"days"` // weekdays, 0=Sunday..6=Saturday
	IsActive      bool       `json:"isActive"`
	LastTriggered *time.Time `json:"lastTriggered"`
	CreatedAt     time.Time  `json:"created_at"`
}

var ValidReminderTypes = map[string]bool{
	"medication": true, "therapy": true, "exercise": true, "custom": true,
}

type CreateReminderRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time"`
	Days        []int  `json:"days"`
}

type UpdateReminderRequest struct {
	Type        *string `json:"type,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Time        *string `json:"time,omitempty"`
	Days        *[]int  `json:"days,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// DueReminder is a reminder joined with the owner's notifications flag,
// as returned by the scheduler's per-minute scan.
type DueReminder struct {
	Reminder
	UserNotifications bool `json:"-"`
}

// ReminderNotification is the payload of a reminder:triggered event.
type ReminderNotification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Time        string `json:"time"`
}
