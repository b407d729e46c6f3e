package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/api"
	"github.com/weatherdesk/report-api/internal/core/ports"
	"github.com/weatherdesk/report-api/internal/core/service"
	"github.com/weatherdesk/report-api/internal/infrastructure/config"
	mongostore "github.com/weatherdesk/report-api/internal/infrastructure/db/mongo"
	redisstore "github.com/weatherdesk/report-api/internal/infrastructure/db/redis"
	"github.com/weatherdesk/report-api/internal/infrastructure/db/sqlstore"
	"github.com/weatherdesk/report-api/internal/infrastructure/http/handlers"
	"github.com/weatherdesk/report-api/internal/infrastructure/mail"
	"github.com/weatherdesk/report-api/internal/infrastructure/queue"
	"github.com/weatherdesk/report-api/internal/infrastructure/storage"
	"github.com/weatherdesk/report-api/internal/infrastructure/weather"
	"github.com/weatherdesk/report-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "weather-report-api",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	artifacts, err := openArtifacts(ctx, cfg)
	if err != nil {
		return err
	}

	tokens, err := service.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	pipeline := service.NewReportPipeline(service.PipelineDeps{
		Reports: st.reports,
		Weather: weather.NewClient(weather.Config{
			APIKey:  cfg.Weather.APIKey,
			BaseURL: cfg.Weather.BaseURL,
			Timeout: cfg.Weather.Timeout,
		}),
		Artifacts: artifacts,
		Notifier: mail.NewNotifier(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Password: cfg.SMTP.Password,
		}, logger.Component("mail")),
		BaseURL: cfg.PublicBaseURL,
	}, logger.Component("pipeline"))

	dispatcher := queue.NewDispatcher(pipeline, queue.Options{
		Workers:    cfg.Queue.Workers,
		Buffer:     cfg.Queue.Size,
		JobTimeout: cfg.Queue.JobTimeout,
	}, logger.Component("queue"))
	// Jobs run detached from the signal context so a shutdown drains them.
	dispatcher.Start(context.Background())

	authService := service.NewAuthService(st.users, st.blacklist, tokens, cfg.Auth.AdminSecretKey, logger.Component("auth"))
	e := api.NewRouter(api.RouterDeps{
		Auth:          authService,
		Users:         service.NewUserService(st.users, st.reports, artifacts, logger.Component("users")),
		Reports:       service.NewReportService(st.reports, st.users, dispatcher, artifacts, logger.Component("reports")),
		Readiness:     st.readiness,
		AuthRateLimit: cfg.AuthRateLimit,
		Log:           logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.StorageDriver).
			Str("blacklist", cfg.BlacklistBackend).
			Str("reports", cfg.Reports.Backend).
			Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown incomplete")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("report queue did not drain before timeout")
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// stores bundles the repositories selected by configuration and the hooks to
// check and release their connections.
type stores struct {
	users     ports.UserRepository
	reports   ports.ReportRepository
	blacklist ports.TokenBlacklist
	readiness []handlers.Dependency
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		})
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			st.close()
			return nil, err
		}
		st.users = mongostore.NewUserRepository(db)
		st.reports = mongostore.NewReportRepository(db)
		st.blacklist = mongostore.NewBlacklist(db)
		st.readiness = append(st.readiness, handlers.Dependency{
			Name: "mongodb",
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})

	case config.StoragePostgres, config.StorageSQLite:
		driver, dsn := sqlstore.DriverPostgres, cfg.SQL.PostgresDSN
		if cfg.StorageDriver == config.StorageSQLite {
			driver, dsn = sqlstore.DriverSQLite, cfg.SQL.SQLitePath
		}
		db, err := sqlstore.Open(ctx, driver, dsn)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = db.Close() })
		st.users = sqlstore.NewUserRepository(db)
		st.reports = sqlstore.NewReportRepository(db)
		st.blacklist = sqlstore.NewBlacklist(db)
		st.readiness = append(st.readiness, handlers.Dependency{Name: driver, Ping: db.Ping})
	}

	if cfg.BlacklistBackend == config.BlacklistRedis {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = rdb.Close() })
		st.blacklist = redisstore.NewBlacklist(rdb)
		st.readiness = append(st.readiness, handlers.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	return st, nil
}

func openArtifacts(ctx context.Context, cfg *config.Config) (ports.ArtifactStore, error) {
	if cfg.Reports.Backend == config.ReportsS3 {
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.Reports.S3Bucket,
			Region:    cfg.Reports.S3Region,
			Endpoint:  cfg.Reports.S3Endpoint,
			AccessKey: cfg.Reports.S3AccessKey,
			SecretKey: cfg.Reports.S3SecretKey,
			Prefix:    cfg.Reports.S3Prefix,
		})
	}
	return storage.NewLocal(cfg.Reports.Dir)
}
