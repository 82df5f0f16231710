package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/classifier"
	"github.com/Mr-Alvaro/Crediticio-System/config"
	httpLayer "github.com/Mr-Alvaro/Crediticio-System/http"
	"github.com/Mr-Alvaro/Crediticio-System/messaging"
	"github.com/Mr-Alvaro/Crediticio-System/repository"
	"github.com/Mr-Alvaro/Crediticio-System/service"
)

func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newPredictor(cfg config.ClassifierConfig, logger zerolog.Logger) classifier.Predictor {
	if cfg.URL == "" {
		logger.Warn().Float64("probability", cfg.StubProbability).Msg("Sin servidor de modelo, usando probabilidad fija")
		return classifier.StubPredictor{Probability: cfg.StubProbability}
	}
	return classifier.NewHTTPPredictor(classifier.HTTPPredictorOptions{
		URL:             cfg.URL,
		Timeout:         cfg.Timeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetryTimeout: cfg.MaxRetryTimeout,
	}, logger)
}

func postgresConfig(cfg config.PostgresConfig) repository.PostgresConfig {
	return repository.PostgresConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	}
}

// infra holds the optional backends. Memory implementations stand in for
// the ones that are not configured.
type infra struct {
	history   repository.HistoryRepository
	documents repository.DocumentStore
	publisher *messaging.KafkaPublisher
	checks    map[string]httpLayer.Check
	closers   []func() error
}

func openInfra(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*infra, error) {
	in := &infra{checks: map[string]httpLayer.Check{}}

	if cfg.Postgres.Host != "" {
		db, err := repository.OpenPostgres(ctx, postgresConfig(cfg.Postgres))
		if err != nil {
			return nil, err
		}
		repo := repository.NewHistoryRepositoryPostgres(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		in.history = repo
		in.checks["postgres"] = db.PingContext
		in.closers = append(in.closers, db.Close)
		logger.Info().Str("host", cfg.Postgres.Host).Msg("Historial en PostgreSQL")
	} else {
		in.history = repository.NewHistoryRepositoryMemory()
		logger.Info().Msg("Historial en memoria")
	}

	if cfg.Redis.Addr != "" {
		store := repository.NewRedisDocumentStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		in.documents = store
		in.checks["redis"] = store.Ping
		in.closers = append(in.closers, store.Close)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Documentos en Redis")
	} else {
		in.documents = repository.NewMemoryDocumentStore()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		in.publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		in.closers = append(in.closers, in.publisher.Close)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Eventos en Kafka")
	}

	return in, nil
}

func (in *infra) sinks() []service.Sink {
	sinks := []service.Sink{
		service.HistorySink{Repo: in.history},
		service.DocumentSink{Store: in.documents},
	}
	if in.publisher != nil {
		sinks = append(sinks, service.EventSink{Publisher: in.publisher})
	}
	return sinks
}

func (in *infra) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openMigrationDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.Postgres.Host == "" {
		return nil, errors.New("postgres.host no configurado (CREDITICIO_POSTGRES_HOST)")
	}
	return repository.OpenPostgres(ctx, postgresConfig(cfg.Postgres))
}
