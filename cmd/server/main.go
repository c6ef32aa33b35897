package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	migrations "github.com/simplehq/simple-server/db"
	"github.com/simplehq/simple-server/internal/ai"
	"github.com/simplehq/simple-server/internal/config"
	"github.com/simplehq/simple-server/internal/contacts"
	"github.com/simplehq/simple-server/internal/db"
	"github.com/simplehq/simple-server/internal/directory"
	"github.com/simplehq/simple-server/internal/handlers"
	"github.com/simplehq/simple-server/internal/labels"
	"github.com/simplehq/simple-server/internal/logger"
	"github.com/simplehq/simple-server/internal/schedule"
	"github.com/simplehq/simple-server/internal/server"
	"github.com/simplehq/simple-server/internal/users"
	"github.com/simplehq/simple-server/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,

			provideLLMClient,
			provideDirectoryClient,
			labels.NewService,
			provideMatcher,
			users.NewService,
			contacts.NewService,
			provideGateway,
			provideReconciler,
			provideScheduler,

			provideServerHandler(providePingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideContactsHandler),
			provideServerHandler(provideLabelsHandler),
			provideServerHandler(provideSyncHandler),
			provideServerHandler(provideUsersHandler),

			provideServer,
		),
		fx.Invoke(
			startScheduler,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func runMigrate(args []string) error {
	cfg, err := provideConfig()
	if err != nil {
		return err
	}
	log := provideLogger(cfg)
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	source, err := fs.Sub(migrations.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	return db.RunMigrate(log, cfg.Postgres, source, command, args)
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideLLMClient(log *slog.Logger, cfg config.Config) (*ai.Client, error) {
	return ai.NewClient(log, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout())
}

// provideDirectoryClient returns nil when no directory endpoint is
// configured; the gateway and reconciler treat that as "no address book".
func provideDirectoryClient(log *slog.Logger, cfg config.Config) (*directory.Client, error) {
	if cfg.Directory.BaseURL == "" {
		return nil, nil
	}
	return directory.NewClient(log, cfg.Directory.BaseURL, cfg.Directory.AccessToken, cfg.Directory.Timeout())
}

func provideMatcher(log *slog.Logger, llm *ai.Client) *labels.Matcher {
	return labels.NewMatcher(log, llm)
}

func provideGateway(log *slog.Logger, store *contacts.Service, labelSvc *labels.Service, matcher *labels.Matcher, llm *ai.Client, dir *directory.Client) *contacts.Gateway {
	var writer contacts.DirectoryWriter
	if dir != nil {
		writer = dir
	}
	return contacts.NewGateway(log, store, labelSvc, matcher, llm, writer)
}

func provideReconciler(log *slog.Logger, cfg config.Config, dir *directory.Client, store *contacts.Service, userSvc *users.Service, gateway *contacts.Gateway) *directory.Reconciler {
	if dir == nil {
		return nil
	}
	return directory.NewReconciler(log, dir, store, userSvc, gateway, cfg.Sync.BatchSize)
}

func provideScheduler(log *slog.Logger, cfg config.Config, reconciler *directory.Reconciler, userSvc *users.Service) *schedule.Scheduler {
	if reconciler == nil {
		return nil
	}
	return schedule.NewScheduler(log, reconciler, userSvc, cfg.Sync.Schedule)
}

func providePingHandler() *handlers.PingHandler {
	return handlers.NewPingHandler()
}

func provideAuthHandler(log *slog.Logger, userSvc *users.Service, cfg config.Config) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, userSvc, cfg.Auth.JWTSecret, cfg.Auth.ExpiresIn())
}

func provideContactsHandler(gateway *contacts.Gateway) *handlers.ContactsHandler {
	return handlers.NewContactsHandler(gateway)
}

func provideLabelsHandler(gateway *contacts.Gateway) *handlers.LabelsHandler {
	return handlers.NewLabelsHandler(gateway)
}

func provideSyncHandler(reconciler *directory.Reconciler) *handlers.SyncHandler {
	return handlers.NewSyncHandler(reconciler)
}

func provideUsersHandler(userSvc *users.Service) *handlers.UsersHandler {
	return handlers.NewUsersHandler(userSvc)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startScheduler(lc fx.Lifecycle, scheduler *schedule.Scheduler, logger *slog.Logger) {
	if scheduler == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
) {
	fmt.Printf("Starting contact server %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
