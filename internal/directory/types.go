package directory

import "context"

// AuthorizationStatus mirrors the external address book's permission model.
type AuthorizationStatus string

const (
	StatusNotDetermined AuthorizationStatus = "not_determined"
	StatusAuthorized    AuthorizationStatus = "authorized"
	StatusDenied        AuthorizationStatus = "denied"
	StatusRestricted    AuthorizationStatus = "restricted"
)

// Entry is one record in the external address book.
type Entry struct {
	NativeID     string   `json:"native_id"`
	GivenName    string   `json:"given_name"`
	FamilyName   string   `json:"family_name"`
	PhoneNumbers []string `json:"phone_numbers"`
	Email        string   `json:"email"`
}

// Directory is the external address book the reconciler imports from and
// the gateway mirrors into.
type Directory interface {
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	RequestAccess(ctx context.Context) (bool, error)
	Entries(ctx context.Context) ([]Entry, error)
	SaveContact(ctx context.Context, name, phoneNumber, email string) (string, error)
}

// Name joins the non-empty name components with a single space.
func (e Entry) Name() string {
	switch {
	case e.GivenName != "" && e.FamilyName != "":
		return e.GivenName + " " + e.FamilyName
	case e.GivenName != "":
		return e.GivenName
	default:
		return e.FamilyName
	}
}
