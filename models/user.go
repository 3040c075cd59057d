package models

import "time"

type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Theme          string     `json:"theme"`
	HighContrast   bool       `json:"high_contrast"`
	TextToSpeech   bool       `json:"text_to_speech"`
	Notifications  bool       `json:"notifications"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

type UserResponse struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FirstName      string      `json:"first_name,omitempty"`
	LastName       string      `json:"last_name,omitempty"`
	ProfilePicture string      `json:"profile_picture,omitempty"`
	Preferences    Preferences `json:"preferences"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Preferences are the user-tunable UI and delivery settings. The reminder
// scheduler reads Notifications to decide whether to attempt out-of-band
// delivery on top of the realtime event.
type Preferences struct {
	Theme         string `json:"theme"`
	HighContrast  bool   `json:"highContrast"`
	TextToSpeech  bool   `json:"textToSpeech"`
	Notifications bool   `json:"notifications"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		Preferences: Preferences{
			Theme:         u.Theme,
			HighContrast:  u.HighContrast,
			TextToSpeech:  u.TextToSpeech,
			Notifications: u.Notifications,
		},
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

type UpdatePreferencesRequest struct {
	Theme         *string `json:"theme,omitempty"`
	HighContrast  *bool   `json:"highContrast,omitempty"`
	TextToSpeech  *bool   `json:"textToSpeech,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}
