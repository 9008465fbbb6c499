package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"quartz-site/internal/auth"
	"quartz-site/internal/cache"
	"quartz-site/internal/config"
	"quartz-site/internal/content"
	"quartz-site/internal/httpserver"
	"quartz-site/internal/inquiry"
	"quartz-site/internal/logging"
	"quartz-site/internal/metrics"
	"quartz-site/internal/repo"
	"quartz-site/internal/site"
	"quartz-site/internal/storage"
	"quartz-site/internal/wa"
	"quartz-site/internal/web"
	"quartz-site/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting quartz-site", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	if err := ensureSQLiteDir(cfg.DatabaseURL); err != nil {
		return err
	}
	repository, err := repo.Open(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repository.Close()

	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated", "backend", repository.Backend())

	authSvc := auth.NewService(repository, auth.Config{
		Secret:   []byte(cfg.SessionSecret),
		Secure:   cfg.SecureCookies(),
		LoginURL: strings.TrimRight(cfg.PublicBasePath, "/") + "/admin",
	}, logger)
	if err := authSvc.Bootstrap(ctx, cfg.AdminEmails, cfg.AdminBootstrapEmail, cfg.AdminBootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap admins: %w", err)
	}

	var queryStore cache.Store
	if cfg.RedisAddr != "" {
		client := cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		}, logger)
		if err := client.Ping(ctx); err != nil {
			logger.Warn("redis ping failed, query cache disabled", "error", err)
			_ = client.Close()
		} else {
			queryStore = client
			defer func() {
				if err := client.Close(); err != nil {
					logger.Warn("failed closing redis", "error", err)
				}
			}()
		}
	}
	queryCache := cache.NewQuery(queryStore, cfg.CacheTTL, logger, metricRegistry)

	contentSvc := content.NewService(repository, queryCache, logger, metricRegistry)

	var notifier inquiry.Notifier
	if cfg.WhatsAppNotifyEnabled {
		waClient, err := wa.New(ctx, wa.Config{
			StorePath: cfg.WhatsAppStorePath,
			LogLevel:  cfg.WhatsAppLogLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("init whatsapp client: %w", err)
		}
		defer waClient.Close()

		waCtx, waCancel := context.WithCancel(ctx)
		defer waCancel()
		go func() {
			if err := waClient.Start(waCtx); err != nil {
				logger.Error("whatsapp client stopped", "error", err)
			}
		}()

		waNotifier, err := wa.NewNotifier(waClient, cfg.WhatsAppNotifyTo, adminBaseURL(cfg))
		if err != nil {
			return fmt.Errorf("init whatsapp notifier: %w", err)
		}
		notifier = waNotifier
	}
	inquirySvc := inquiry.NewService(repository, notifier, logger, metricRegistry)

	images := storage.NewService(repository, cfg.UploadMaxBytes, logger, metricRegistry)

	whatsApp := site.NewWhatsApp(cfg.WhatsAppNumber)
	templates, err := web.NewTemplates(whatsApp)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	httpSrv := httpserver.New(httpserver.Config{
		Addr:          cfg.HTTPListenAddr,
		BasePath:      cfg.PublicBasePath,
		SecureCookies: cfg.SecureCookies(),
	}, httpserver.Dependencies{
		Repository: repository,
		Content:    contentSvc,
		Inquiries:  inquirySvc,
		Auth:       authSvc,
		Images:     images,
		Templates:  templates,
		WhatsApp:   whatsApp,
		Company:    site.DefaultCompany,
	}, logger, metricRegistry)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	inquirySvc.Wait()

	return nil
}

// ensureSQLiteDir creates the parent directory of a file backed SQLite URL.
func ensureSQLiteDir(databaseURL string) error {
	lower := strings.ToLower(databaseURL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return nil
	}
	path := strings.TrimPrefix(strings.TrimPrefix(databaseURL, "sqlite://"), "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}

func adminBaseURL(cfg config.Config) string {
	if cfg.PublicBaseURL == "" {
		return ""
	}
	return strings.TrimRight(cfg.PublicBaseURL, "/") + strings.TrimRight(cfg.PublicBasePath, "/")
}
