package users

import "time"

// User is an account that owns contacts and labels.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preferences holds per-user feature flags.
type Preferences struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	HasCompletedOnboarding bool      `json:"has_completed_onboarding"`
	HasSyncedContacts      bool      `json:"has_synced_contacts"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// CreateUserRequest is the input for account creation.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePreferencesRequest carries partial preference updates; nil fields are left unchanged.
type UpdatePreferencesRequest struct {
	HasCompletedOnboarding *bool `json:"has_completed_onboarding"`
	HasSyncedContacts      *bool `json:"has_synced_contacts"`
}
