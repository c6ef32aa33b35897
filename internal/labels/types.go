package labels

import "time"

// Label is a user-owned organizational tag. Name is stored case-sensitively
// and unique per owner; matching against suggestions is case-insensitive.
type Label struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
