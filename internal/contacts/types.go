package contacts

import (
	"time"

	"github.com/simplehq/simple-server/internal/labels"
)

// Contact is a persisted person record owned by a single user. Optional
// fields are empty strings when absent.
type Contact struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Name            string         `json:"name,omitempty"`
	PhoneNumber     string         `json:"phone_number,omitempty"`
	Email           string         `json:"email,omitempty"`
	SystemContactID string         `json:"system_contact_id,omitempty"`
	TextDescription string         `json:"text_description,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Labels          []labels.Label `json:"labels,omitempty"`
}

// CreateParams is the input for inserting a contact row.
type CreateParams struct {
	UserID          string
	Name            string
	PhoneNumber     string
	Email           string
	SystemContactID string
	TextDescription string
}

// SideEffect records the outcome of one best-effort secondary operation
// during ingestion (label assignment, directory mirroring). A failed side
// effect never fails the primary operation.
type SideEffect struct {
	Op     string `json:"op"`
	Target string `json:"target,omitempty"`
	Err    string `json:"error,omitempty"`
}

// IngestResult is the outcome of creating a contact from free text.
// ProposedLabels are model-suggested new label names; they are surfaced for
// a future confirmation flow but never persisted automatically.
type IngestResult struct {
	Contact        Contact        `json:"contact"`
	AppliedLabels  []labels.Label `json:"applied_labels,omitempty"`
	ProposedLabels []string       `json:"proposed_labels,omitempty"`
	SideEffects    []SideEffect   `json:"side_effects,omitempty"`
}
