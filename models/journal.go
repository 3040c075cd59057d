package models

import "time"

type Journal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateJournalRequest struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Mood    string   `json:"mood,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type UpdateJournalRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Mood    *string   `json:"mood,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// AutoSaveRequest upserts a draft: with DraftID it updates the existing
// entry, without it a new one is created.
type AutoSaveRequest struct {
	DraftID string   `json:"draftId,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Mood    string   `json:"mood,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}
