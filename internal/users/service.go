// Package users manages accounts and per-user preference flags.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplehq/simple-server/internal/db"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Service manages user accounts and preferences.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a users service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "users")),
	}
}

// Create registers a new account and its default preferences row.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if s.pool == nil {
		return User{}, fmt.Errorf("users store not configured")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		return User{}, fmt.Errorf("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, created_at, updated_at`,
		username, db.ToPgText(req.Email), string(hashed))
	user, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, user.ID); err != nil {
		s.logger.Warn("create default preferences failed", slog.Any("error", err))
	}
	return user, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	if s.pool == nil {
		return User{}, fmt.Errorf("users store not configured")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, created_at, updated_at
		FROM users WHERE id = $1`, strings.TrimSpace(userID))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	if s.pool == nil {
		return User{}, fmt.Errorf("users store not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return User{}, ErrInvalidCredentials
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE username = $1`, username)

	var (
		id        pgtype.UUID
		name      string
		email     pgtype.Text
		hash      string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &name, &email, &hash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return User{
		ID:        db.UUIDToString(id),
		Username:  name,
		Email:     db.TextToString(email),
		CreatedAt: db.TimeFromPg(createdAt),
		UpdatedAt: db.TimeFromPg(updatedAt),
	}, nil
}

// GetPreferences returns the preference flags for a user, creating the row when absent.
func (s *Service) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	if s.pool == nil {
		return Preferences{}, fmt.Errorf("users store not configured")
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO user_preferences (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, has_completed_onboarding, has_synced_contacts, created_at, updated_at`,
		strings.TrimSpace(userID))
	return scanPreferences(row)
}

// UpdatePreferences applies partial preference updates; nil fields are unchanged.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (Preferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	if req.HasCompletedOnboarding != nil {
		current.HasCompletedOnboarding = *req.HasCompletedOnboarding
	}
	if req.HasSyncedContacts != nil {
		current.HasSyncedContacts = *req.HasSyncedContacts
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE user_preferences
		SET has_completed_onboarding = $2, has_synced_contacts = $3
		WHERE user_id = $1
		RETURNING id, user_id, has_completed_onboarding, has_synced_contacts, created_at, updated_at`,
		strings.TrimSpace(userID), current.HasCompletedOnboarding, current.HasSyncedContacts)
	return scanPreferences(row)
}

// ListSyncedUserIDs returns the ids of users who have completed an address
// book sync. The periodic reconciler re-syncs only these.
func (s *Service) ListSyncedUserIDs(ctx context.Context) ([]string, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("users store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM user_preferences WHERE has_synced_contacts = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, db.UUIDToString(id))
	}
	return ids, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        pgtype.UUID
		username  string
		email     pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &username, &email, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	return User{
		ID:        db.UUIDToString(id),
		Username:  username,
		Email:     db.TextToString(email),
		CreatedAt: db.TimeFromPg(createdAt),
		UpdatedAt: db.TimeFromPg(updatedAt),
	}, nil
}

func scanPreferences(row pgx.Row) (Preferences, error) {
	var (
		id          pgtype.UUID
		userID      pgtype.UUID
		onboarding  bool
		synced      bool
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &onboarding, &synced, &createdAt, &updatedAt); err != nil {
		return Preferences{}, err
	}
	return Preferences{
		ID:                     db.UUIDToString(id),
		UserID:                 db.UUIDToString(userID),
		HasCompletedOnboarding: onboarding,
		HasSyncedContacts:      synced,
		CreatedAt:              db.TimeFromPg(createdAt),
		UpdatedAt:              db.TimeFromPg(updatedAt),
	}, nil
}
