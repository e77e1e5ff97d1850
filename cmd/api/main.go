package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/asso-backend/internal/api"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/config"
	"github.com/baharkarakas/asso-backend/internal/logger"
	"github.com/baharkarakas/asso-backend/internal/ratelimit"
	"github.com/baharkarakas/asso-backend/internal/services"
	"github.com/baharkarakas/asso-backend/internal/uploads"
	"github.com/baharkarakas/asso-backend/internal/worker"
)

func main() {
	var (
		cfg config.Config
		log *slog.Logger
	)

	root := &cobra.Command{
		Use:           "asso-api",
		Short:         "Association backend: members, posts, events and cotisations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log = logger.New(cfg.Env)
			slog.SetDefault(log)
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, log)
		},
	}
	root.RunE = serveCmd.RunE

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres migrations or reconcile mongo indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStorage(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.close()
			if err := st.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("storage up to date", "driver", cfg.StorageDriver)
			return nil
		},
	}

	promoteCmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Give an existing user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStorage(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.close()
			tm := auth.NewTokenManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
			users := services.NewUserService(st.repos.Users, tm, cache.NewSummaries(st.repos.Users, time.Minute), nil)
			u, err := users.Promote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s) is now %s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd, promoteCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.Migrate || cfg.StorageDriver == "mongo" {
		if err := st.migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	files, err := uploads.NewStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	wp := worker.NewPool(cfg.Workers, 64, log)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	sums := cache.NewSummaries(st.repos.Users, cfg.CacheTTL)
	janitor := services.NewJanitor(files, wp)

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rc.Close()
		limiter = ratelimit.NewRedis(rc, "asso:rl:", cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	handler := api.NewRouter(api.RouterDeps{
		Env:         cfg.Env,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
		Tokens:      tm,
		Limiter:     limiter,
		Files:       files,
		Users:       services.NewUserService(st.repos.Users, tm, sums, janitor),
		Posts:       services.NewPostService(st.repos.Posts, st.repos.AuditLogs, sums, janitor),
		Events:      services.NewEventService(st.repos.Events, st.repos.AuditLogs, sums, janitor),
		Cotisations: services.NewCotisationService(st.repos.Cotisations, st.repos.AuditLogs, sums),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.HTTPPort, "storage", cfg.StorageDriver, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
