package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/app"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime is what every command needs: configuration, a logger and the store.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	store *app.Store
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog API with product variants",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newAdminCmd())
	return root
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, store: store}, nil
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.store.Close(ctx); err != nil {
		rt.log.Warn("failed to close store", zap.Error(err))
	}
	_ = rt.log.Sync()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or indexes for the configured storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			rt.log.Info("migration finished", zap.String("driver", rt.cfg.StorageDriver))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data",
	}
	seed.AddCommand(&cobra.Command{
		Use:   "options",
		Short: "Upsert the default option catalog by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			svc := services.NewOptionService(rt.store.Options, rt.log)
			created, err := app.SeedOptions(cmd.Context(), svc, app.DefaultOptions, rt.log)
			if err != nil {
				return err
			}
			rt.log.Info("options seeded", zap.Int("created", created), zap.Int("total", len(app.DefaultOptions)))
			return nil
		},
	})
	return seed
}

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage backoffice accounts",
	}
	var username, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account without going through the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			return createAdmin(cmd.Context(), rt.store, rt.cfg.JWTSecret, rt.log, username, email, password)
		},
	}
	create.Flags().StringVar(&username, "username", "", "admin username")
	create.Flags().StringVar(&email, "email", "", "admin email")
	create.Flags().StringVar(&password, "password", "", "admin password")
	for _, name := range []string{"username", "email", "password"} {
		_ = create.MarkFlagRequired(name)
	}
	admin.AddCommand(create)
	return admin
}

func createAdmin(ctx context.Context, store *app.Store, secret string, log *zap.Logger, username, email, password string) error {
	auth := services.NewAuthService(store.Admins, secret, log)
	account := models.Admin{Username: username, Email: email, Password: password}
	if err := auth.RegisterAdmin(ctx, &account); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Info("admin created", zap.String("id", account.ID), zap.String("username", account.Username))
	return nil
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.close()
			if migrate {
				if err := rt.store.Migrate(ctx); err != nil {
					return err
				}
			}
			return serve(ctx, rt)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run migrations before serving")
	return cmd
}

func serve(ctx context.Context, rt *runtime) error {
	deps := app.Deps{
		Store:      rt.store,
		Cache:      cache.NoopProductCache{},
		Events:     services.NoopPublisher{},
		JWTSecret:  rt.cfg.JWTSecret,
		Log:        rt.log,
		RequestLog: true,
	}

	if rt.cfg.RedisAddr != "" {
		rc, err := cache.NewRedisProductCache(ctx, rt.cfg.RedisAddr, rt.cfg.RedisPassword, rt.cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer rc.Close()
		deps.Cache = rc
		rt.log.Info("product cache enabled", zap.String("addr", rt.cfg.RedisAddr), zap.Duration("ttl", rt.cfg.CacheTTL))
	}

	if rt.cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: rt.cfg.RabbitMQURL}, rt.log)
		if err != nil {
			return err
		}
		defer mq.Close()
		deps.Events = mq
		if err := mq.ConsumeProductEvents(ctx, rabbitmq.LogProductEvent(rt.log)); err != nil {
			rt.log.Error("failed to start product event consumer", zap.Error(err))
		}
	}

	fiberApp, _ := app.New(deps)

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("starting server", zap.String("addr", rt.cfg.AppPort))
		errCh <- fiberApp.Listen(rt.cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	rt.log.Info("shutting down server")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		rt.log.Error("error during shutdown", zap.Error(err))
	}
	rt.log.Info("server gracefully stopped")
	return nil
}
