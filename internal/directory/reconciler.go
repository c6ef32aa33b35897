package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/simplehq/simple-server/internal/contacts"
	"github.com/simplehq/simple-server/internal/users"
)

// ErrAccessDenied is returned when the address book permanently refuses
// access. Sync cannot proceed and should not be retried automatically.
var ErrAccessDenied = errors.New("address book access denied")

const importedDescription = "Imported from phone contacts"

const defaultBatchSize = 50

type contactStore interface {
	FindByUserAndPhone(ctx context.Context, userID, phoneNumber string) (contacts.Contact, bool, error)
	Insert(ctx context.Context, params contacts.CreateParams) (contacts.Contact, error)
}

type preferenceStore interface {
	UpdatePreferences(ctx context.Context, userID string, req users.UpdatePreferencesRequest) (users.Preferences, error)
}

type refresher interface {
	RefreshContacts(ctx context.Context, userID string) ([]contacts.Contact, error)
}

// SyncResult summarises one reconciliation run.
type SyncResult struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Reconciler imports external address book entries into the contact store.
// Runs are idempotent: an entry whose normalized phone number already exists
// for the owner is never inserted again.
type Reconciler struct {
	dir       Directory
	store     contactStore
	prefs     preferenceStore
	gateway   refresher
	logger    *slog.Logger
	batchSize int
}

// NewReconciler creates the reconciler. batchSize <= 0 selects the default.
func NewReconciler(log *slog.Logger, dir Directory, store contactStore, prefs preferenceStore, gateway refresher, batchSize int) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Reconciler{
		dir:       dir,
		store:     store,
		prefs:     prefs,
		gateway:   gateway,
		logger:    log.With(slog.String("service", "reconciler")),
		batchSize: batchSize,
	}
}

// Sync imports the owner's external address book. Access is requested when
// it has not been decided yet; a denied or restricted book yields
// ErrAccessDenied. Per-entry failures are counted, logged, and skipped.
func (r *Reconciler) Sync(ctx context.Context, userID string) (SyncResult, error) {
	if err := r.ensureAccess(ctx); err != nil {
		return SyncResult{}, err
	}

	entries, err := r.dir.Entries(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("enumerate address book: %w", err)
	}

	result := SyncResult{Scanned: len(entries)}
	for start := 0; start < len(entries); start += r.batchSize {
		end := start + r.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		r.importBatch(ctx, userID, entries[start:end], &result)
	}

	synced := true
	if _, err := r.prefs.UpdatePreferences(ctx, userID, users.UpdatePreferencesRequest{HasSyncedContacts: &synced}); err != nil {
		r.logger.Warn("marking contacts synced failed", slog.Any("error", err))
	}
	if r.gateway != nil {
		if _, err := r.gateway.RefreshContacts(ctx, userID); err != nil {
			r.logger.Warn("contact list refresh failed", slog.Any("error", err))
		}
	}

	r.logger.Info("address book sync complete",
		slog.Int("scanned", result.Scanned),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}

func (r *Reconciler) ensureAccess(ctx context.Context) error {
	status, err := r.dir.AuthorizationStatus(ctx)
	if err != nil {
		return fmt.Errorf("check address book access: %w", err)
	}
	switch status {
	case StatusAuthorized:
		return nil
	case StatusDenied, StatusRestricted:
		return ErrAccessDenied
	}
	granted, err := r.dir.RequestAccess(ctx)
	if err != nil {
		return fmt.Errorf("request address book access: %w", err)
	}
	if !granted {
		return ErrAccessDenied
	}
	return nil
}

func (r *Reconciler) importBatch(ctx context.Context, userID string, batch []Entry, result *SyncResult) {
	for _, entry := range batch {
		imported, err := r.importEntry(ctx, userID, entry)
		switch {
		case err != nil:
			r.logger.Warn("entry import failed",
				slog.String("name", entry.Name()), slog.Any("error", err))
			result.Failed++
		case imported:
			result.Imported++
		default:
			result.Skipped++
		}
	}
}

// importEntry inserts one entry unless it is unusable or already present.
// The existence check and the insert are not atomic; a concurrent run can
// insert the same phone number twice, which the schema tolerates.
func (r *Reconciler) importEntry(ctx context.Context, userID string, entry Entry) (bool, error) {
	if len(entry.PhoneNumbers) == 0 {
		return false, nil
	}
	name := entry.Name()
	if name == "" {
		return false, nil
	}
	phone := NormalizePhone(entry.PhoneNumbers[0])
	if phone == "" {
		return false, nil
	}

	_, found, err := r.store.FindByUserAndPhone(ctx, userID, phone)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	_, err = r.store.Insert(ctx, contacts.CreateParams{
		UserID:          userID,
		Name:            name,
		PhoneNumber:     phone,
		Email:           entry.Email,
		SystemContactID: entry.NativeID,
		TextDescription: importedDescription,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// NormalizePhone strips everything except digits, keeping a single leading
// plus sign.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "+" {
		return ""
	}
	return s
}
