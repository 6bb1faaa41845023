package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee-management-system/internal/cache"
	"employee-management-system/internal/config"
	"employee-management-system/internal/database"
	"employee-management-system/internal/handler"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/mailer"
	"employee-management-system/internal/service"
	"employee-management-system/internal/store"
	"employee-management-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	departmentCacheTTL = 10 * time.Minute
	shutdownTimeout    = 10 * time.Second
	healthTimeout      = 2 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.SeedAdmin(ctx, db, cfg.Admin, log); err != nil {
		return err
	}

	var facets cache.FacetCache = cache.Noop{}
	if cfg.Redis.Enabled() {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn(ctx, "redis unavailable, department cache disabled", "error", err)
		} else {
			defer rdb.Close()
			facets = cache.NewRedisFacetCache(rdb, departmentCacheTTL)
		}
	}

	var mirror service.EmployeeMirror
	sheetSync, err := service.NewSheetSyncService(ctx, cfg.Sheets)
	if err != nil {
		return fmt.Errorf("starting sheet mirror: %w", err)
	}
	if sheetSync != nil {
		if err := sheetSync.EnsureHeader(ctx); err != nil {
			log.Warn(ctx, "sheet header check failed", "error", err)
		}
		mirror = sheetSync
	}

	tokens := util.NewTokenService(cfg.JWTSecret)
	audit := service.NewAuditLog(db)
	users := service.NewUserService(store.NewUserStore(db), tokens, mailer.New(cfg.SMTP, log), cfg.ClientURL, log)
	employees := service.NewEmployeeService(store.NewEmployeeStore(db), facets, audit, mirror, log)

	app := fiber.New(fiber.Config{
		AppName:      "employee-management-system",
		ErrorHandler: handler.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handler.New(users, employees, audit, log).
		WithHealthCheck(func(ctx context.Context) error {
			return database.Ping(ctx, db, healthTimeout)
		}).
		SetupRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.Addr, "env", cfg.Env)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error(context.Background(), "server shutdown failed", "error", err)
	}
	employees.Wait()
	return nil
}
