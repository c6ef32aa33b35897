// Package contacts provides contact persistence, relevance search, and the
// ingestion gateway.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplehq/simple-server/internal/db"
	"github.com/simplehq/simple-server/internal/labels"
)

// Service manages contact rows and their label associations.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a contacts store service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "contacts")),
	}
}

// Insert creates a contact row.
func (s *Service) Insert(ctx context.Context, params CreateParams) (Contact, error) {
	if s.pool == nil {
		return Contact{}, fmt.Errorf("contacts store not configured")
	}
	if strings.TrimSpace(params.UserID) == "" {
		return Contact{}, fmt.Errorf("user id is required")
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, name, phone_number, email, system_contact_id, text_description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, phone_number, email, system_contact_id, text_description, created_at, updated_at`,
		strings.TrimSpace(params.UserID),
		db.ToPgText(params.Name),
		db.ToPgText(params.PhoneNumber),
		db.ToPgText(params.Email),
		db.ToPgText(params.SystemContactID),
		db.ToPgText(params.TextDescription),
	)
	contact, err := scanContact(row)
	if err != nil {
		return Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return contact, nil
}

// ListByUser returns all of the user's contacts with labels attached,
// newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Contact, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("contacts store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, phone_number, email, system_contact_id, text_description, created_at, updated_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC`, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	return s.attachLabels(ctx, items)
}

// SearchPattern runs the direct store-side search: contacts of the user
// where name, description, phone, or email contains query (case-insensitive
// substring). Results carry labels.
func (s *Service) SearchPattern(ctx context.Context, userID, query string) ([]Contact, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("contacts store not configured")
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, phone_number, email, system_contact_id, text_description, created_at, updated_at
		FROM contacts
		WHERE user_id = $1
		  AND (name ILIKE $2 OR text_description ILIKE $2 OR phone_number ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at DESC`, strings.TrimSpace(userID), pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	return s.attachLabels(ctx, items)
}

// FindByUserAndPhone looks up a contact by owner and exact phone number.
// The bool reports whether a contact was found.
func (s *Service) FindByUserAndPhone(ctx context.Context, userID, phoneNumber string) (Contact, bool, error) {
	if s.pool == nil {
		return Contact{}, false, fmt.Errorf("contacts store not configured")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, phone_number, email, system_contact_id, text_description, created_at, updated_at
		FROM contacts
		WHERE user_id = $1 AND phone_number = $2
		LIMIT 1`, strings.TrimSpace(userID), strings.TrimSpace(phoneNumber))
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, false, nil
		}
		return Contact{}, false, err
	}
	return contact, true, nil
}

// SetSystemContactID stores the external directory's native id on a contact.
func (s *Service) SetSystemContactID(ctx context.Context, contactID, systemContactID string) error {
	if s.pool == nil {
		return fmt.Errorf("contacts store not configured")
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE contacts SET system_contact_id = $2 WHERE id = $1`,
		strings.TrimSpace(contactID), db.ToPgText(systemContactID))
	return err
}

// AssignLabel creates the contact-label association.
func (s *Service) AssignLabel(ctx context.Context, contactID, labelID string) error {
	if s.pool == nil {
		return fmt.Errorf("contacts store not configured")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_labels (contact_id, label_id) VALUES ($1, $2)`,
		strings.TrimSpace(contactID), strings.TrimSpace(labelID))
	if err != nil {
		return fmt.Errorf("assign label: %w", err)
	}
	return nil
}

// RemoveLabel deletes the contact-label association.
func (s *Service) RemoveLabel(ctx context.Context, contactID, labelID string) error {
	if s.pool == nil {
		return fmt.Errorf("contacts store not configured")
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM contact_labels WHERE contact_id = $1 AND label_id = $2`,
		strings.TrimSpace(contactID), strings.TrimSpace(labelID))
	if err != nil {
		return fmt.Errorf("remove label: %w", err)
	}
	return nil
}

// attachLabels loads label associations for the given contacts in one query.
func (s *Service) attachLabels(ctx context.Context, items []Contact) ([]Contact, error) {
	if len(items) == 0 {
		return items, nil
	}
	ids := make([]string, 0, len(items))
	for _, contact := range items {
		ids = append(ids, contact.ID)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT cl.contact_id, l.id, l.user_id, l.name, l.created_at, l.updated_at
		FROM contact_labels cl
		JOIN labels l ON l.id = cl.label_id
		WHERE cl.contact_id = ANY($1::uuid[])
		ORDER BY l.name COLLATE "C"`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byContact := make(map[string][]labels.Label)
	for rows.Next() {
		var (
			contactID pgtype.UUID
			labelID   pgtype.UUID
			ownerID   pgtype.UUID
			name      string
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&contactID, &labelID, &ownerID, &name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		key := db.UUIDToString(contactID)
		byContact[key] = append(byContact[key], labels.Label{
			ID:        db.UUIDToString(labelID),
			UserID:    db.UUIDToString(ownerID),
			Name:      name,
			CreatedAt: db.TimeFromPg(createdAt),
			UpdatedAt: db.TimeFromPg(updatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Labels = byContact[items[i].ID]
	}
	return items, nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		id          pgtype.UUID
		userID      pgtype.UUID
		name        pgtype.Text
		phone       pgtype.Text
		email       pgtype.Text
		systemID    pgtype.Text
		description pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &name, &phone, &email, &systemID, &description, &createdAt, &updatedAt); err != nil {
		return Contact{}, err
	}
	return Contact{
		ID:              db.UUIDToString(id),
		UserID:          db.UUIDToString(userID),
		Name:            db.TextToString(name),
		PhoneNumber:     db.TextToString(phone),
		Email:           db.TextToString(email),
		SystemContactID: db.TextToString(systemID),
		TextDescription: db.TextToString(description),
		CreatedAt:       db.TimeFromPg(createdAt),
		UpdatedAt:       db.TimeFromPg(updatedAt),
	}, nil
}

func scanContacts(rows pgx.Rows) ([]Contact, error) {
	items := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, contact)
	}
	return items, rows.Err()
}

// escapeLike escapes LIKE metacharacters in user-supplied query text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
