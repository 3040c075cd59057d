package models

import "time"

type Mood struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MoodLevel int       `json:"moodLevel"`
	Emotion   string    `json:"emotion"`
	Note      string    `json:"note,omitempty"`
	Date      time.Time `json:"date"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

var ValidEmotions = map[string]bool{
	"happy": true, "sad": true, "anxious": true, "angry": true,
	"calm": true, "tired": true, "energetic": true, "neutral": true,
}

type CreateMoodRequest struct {
	MoodLevel int      `json:"moodLevel"`
	Emotion   string   `json:"emotion,omitempty"`
	Note      string   `json:"note,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type UpdateMoodRequest struct {
	MoodLevel *int      `json:"moodLevel,omitempty"`
	Emotion   *string   `json:"emotion,omitempty"`
	Note      *string   `json:"note,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

type MoodStats struct {
	Total    int            `json:"total"`
	Average  float64        `json:"average"`
	Emotions map[string]int `json:"emotions"`
}
