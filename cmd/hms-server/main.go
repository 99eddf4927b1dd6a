package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/account"
	"github.com/hms/hms/internal/domain/acte"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/tenancy"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())
	rootCmd.AddCommand(accountCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			slug, _ := cmd.Flags().GetString("slug")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := tenant.NewService(tenant.NewRepo(pool))
			t := &tenant.Tenant{Name: name, Slug: slug}
			if err := svc.CreateTenant(ctx, t); err != nil {
				return err
			}
			fmt.Printf("Tenant created: %s (slug: %s, id: %s)\n", t.Name, t.Slug, t.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Tenant display name")
	createCmd.Flags().String("slug", "", "Tenant slug (derived from name when omitted)")
	cmd.AddCommand(createCmd)

	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage login accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			superuser, _ := cmd.Flags().GetBool("superuser")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
			svc := account.NewService(account.NewRepo(pool), tokens)
			acct, err := svc.CreateAccount(ctx, username, email, password, superuser)
			if err != nil {
				return err
			}
			fmt.Printf("Account created: %s (id: %s, superuser: %t)\n", acct.Username, acct.ID, acct.Superuser)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login username")
	createCmd.Flags().String("email", "", "Account email")
	createCmd.Flags().String("password", "", "Login password")
	createCmd.Flags().Bool("superuser", false, "Grant superuser access")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())

	// Repositories and services
	tenantRepo := tenant.NewRepo(pool)
	tenantSvc := tenant.NewService(tenantRepo)

	accountSvc := account.NewService(account.NewRepo(pool), tokens)
	staffSvc := staff.NewService(staff.NewRepo(pool), accountSvc, tenantRepo)
	patientSvc := patient.NewService(patient.NewRepo(pool), logger)
	appointmentSvc := appointment.NewService(appointment.NewRepo(pool))
	acteSvc := acte.NewService(acte.NewRepo(pool), logger)
	billingSvc := billing.NewService(billing.NewRepo(pool), logger)
	inventorySvc := inventory.NewService(inventory.NewRepo(pool), logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", tenancy.HeaderTenantSlug},
	}))

	// Token verification runs before tenant resolution so the staff-based
	// fallback can read the verified actor.
	e.Use(auth.Middleware(tokens, auth.PathSkipper("/auth/token", "/health", "/health/db")))

	resolver := tenancy.NewResolver(
		func(ctx context.Context, slug string) (*tenancy.Tenant, error) {
			t, err := tenantRepo.GetBySlug(ctx, slug)
			if err != nil || t == nil {
				return nil, err
			}
			return &tenancy.Tenant{ID: t.ID, Name: t.Name, Slug: t.Slug}, nil
		},
		func(ctx context.Context, accountID uuid.UUID) (*tenancy.Tenant, error) {
			t, err := staffSvc.TenantByAccount(ctx, accountID)
			if err != nil || t == nil {
				return nil, err
			}
			return &tenancy.Tenant{ID: t.ID, Name: t.Name, Slug: t.Slug}, nil
		},
		logger,
	)
	e.Use(resolver.Middleware())

	az := auth.NewAuthorizer(staffSvc.RoleByAccount)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	public := e.Group("")
	api := e.Group("/api")

	account.NewHandler(accountSvc, staffSvc).RegisterRoutes(public, api)
	tenant.NewHandler(tenantSvc).RegisterRoutes(api, az)
	patient.NewHandler(patientSvc, logger).RegisterRoutes(api, az)
	staff.NewHandler(staffSvc, logger).RegisterRoutes(api, az)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api, az)
	acte.NewHandler(acteSvc).RegisterRoutes(api, az)
	billing.NewHandler(billingSvc).RegisterRoutes(api, az)
	inventory.NewHandler(inventorySvc).RegisterRoutes(api, az)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
