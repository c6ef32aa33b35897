// Package schedule runs the periodic address book re-sync for users who
// have already completed an initial sync.
package schedule

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/simplehq/simple-server/internal/directory"
)

type syncer interface {
	Sync(ctx context.Context, userID string) (directory.SyncResult, error)
}

type userLister interface {
	ListSyncedUserIDs(ctx context.Context) ([]string, error)
}

// Scheduler re-runs the directory reconciler on a cron pattern.
type Scheduler struct {
	cron       *cron.Cron
	reconciler syncer
	users      userLister
	logger     *slog.Logger
	pattern    string
}

// NewScheduler creates the scheduler. An empty pattern disables it.
func NewScheduler(log *slog.Logger, reconciler syncer, users userLister, pattern string) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		users:      users,
		logger:     log.With(slog.String("service", "schedule")),
		pattern:    pattern,
	}
}

// Start registers the sync job and starts the cron loop. No-op when no
// pattern is configured.
func (s *Scheduler) Start() error {
	if s.pattern == "" {
		s.logger.Info("periodic sync disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.pattern, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("periodic sync scheduled", slog.String("pattern", s.pattern))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx := context.Background()
	ids, err := s.users.ListSyncedUserIDs(ctx)
	if err != nil {
		s.logger.Error("listing synced users failed", slog.Any("error", err))
		return
	}
	for _, id := range ids {
		result, err := s.reconciler.Sync(ctx, id)
		if err != nil {
			if errors.Is(err, directory.ErrAccessDenied) {
				s.logger.Warn("address book access revoked", slog.String("user_id", id))
				continue
			}
			s.logger.Error("periodic sync failed",
				slog.String("user_id", id), slog.Any("error", err))
			continue
		}
		s.logger.Info("periodic sync done",
			slog.String("user_id", id), slog.Int("imported", result.Imported))
	}
}
