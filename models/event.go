package models

// Audience selects which connected realtime sessions receive an event:
// either every client, or only the connections of a single user.
type Audience struct {
	userID string
	global bool
}

func PrivateTo(userID string) Audience {
	return Audience{userID: userID}
}

func Global() Audience {
	return Audience{global: true}
}

func (a Audience) IsGlobal() bool {
	return a.global
}

func (a Audience) UserID() string {
	return a.userID
}

// Event describes a domain mutation for the realtime channel. Handlers and
// the scheduler produce events; the hub resolves the audience and fans out.
type Event struct {
	Type     string
	Audience Audience
	Payload  any
}

// WSMessage is the wire shape sent to connected clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Private events (owner's connections only)
const (
	EventMoodCreated     = "mood:created"
	EventMoodUpdated     = "mood:updated"
	EventMoodDeleted     = "mood:deleted"
	EventJournalCreated  = "journal:created"
	EventJournalUpdated  = "journal:updated"
	EventJournalDeleted  = "journal:deleted"
	EventGoalChanged     = "goal:changed"
	EventReminderCreated = "reminder:created"
	EventReminderUpdated = "reminder:updated"
	EventReminderDeleted = "reminder:deleted"
	EventReminderFired   = "reminder:triggered"
)

// Public events (all connected clients)
const (
	EventPostNew         = "post:new"
	EventCommentNew      = "comment:new"
	EventPostLikeUpdated = "post:like-updated"
	EventPostDeleted     = "post:deleted"
)
