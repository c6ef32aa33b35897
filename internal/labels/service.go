// Package labels manages user-owned labels and suggestion matching.
package labels

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
)

var ErrLabelExists = errors.New("label already exists")

// Service manages label persistence.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a labels service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "labels")),
	}
}

// List returns the user's labels in canonical display order
// (name ascending, byte-wise).
func (s *Service) List(ctx context.Context, userID string) ([]Label, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("labels store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM labels
		WHERE user_id = $1
		ORDER BY name COLLATE "C"`, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabels(rows)
}

// Create inserts a new label for the user.
func (s *Service) Create(ctx context.Context, userID, name string) (Label, error) {
	if s.pool == nil {
		return Label{}, fmt.Errorf("labels store not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Label{}, fmt.Errorf("label name is required")
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO labels (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at, updated_at`,
		strings.TrimSpace(userID), name)
	label, err := scanLabel(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Label{}, ErrLabelExists
		}
		return Label{}, fmt.Errorf("create label: %w", err)
	}
	return label, nil
}

func scanLabel(row pgx.Row) (Label, error) {
	var (
		id        pgtype.UUID
		userID    pgtype.UUID
		name      string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &name, &createdAt, &updatedAt); err != nil {
		return Label{}, err
	}
	return Label{
		ID:        db.UUIDToString(id),
		UserID:    db.UUIDToString(userID),
		Name:      name,
		CreatedAt: db.TimeFromPg(createdAt),
		UpdatedAt: db.TimeFromPg(updatedAt),
	}, nil
}

func scanLabels(rows pgx.Rows) ([]Label, error) {
	items := make([]Label, 0)
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, label)
	}
	return items, rows.Err()
}
