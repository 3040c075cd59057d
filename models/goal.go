package models

import "time"

type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

var ValidGoalTypes = map[string]bool{"daily": true, "weekly": true, "monthly": true}

var ValidGoalStatuses = map[string]bool{
	"pending": true, "in-progress": true, "completed": true, "cancelled": true,
}

type CreateGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
}

type UpdateGoalRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
}
