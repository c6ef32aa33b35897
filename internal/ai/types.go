package ai

// Extraction holds the structured contact fields pulled out of free text.
// Empty fields were not found.
type Extraction struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// LabelSuggestion is the model's label proposal for a contact description.
// ExistingLabels reference names from the caller-provided set; NewLabels are
// free-form proposals that are never auto-created.
type LabelSuggestion struct {
	ExistingLabels []string `json:"existingLabels"`
	NewLabels      []string `json:"newLabels"`
}
