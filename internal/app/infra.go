package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/pkg/database"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
	"github.com/umojalearning/umoja-backend/pkg/llm"
	"github.com/umojalearning/umoja-backend/pkg/observability"
	redispkg "github.com/umojalearning/umoja-backend/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideTokenVerifier),
	fx.Provide(ProvideLLMClient),
	fx.Provide(ProvideOTel),
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrations.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return database.Close(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideTokenVerifier(cfg *config.Config) (*idtoken.Verifier, error) {
	return idtoken.NewVerifier(cfg)
}

func ProvideLLMClient(cfg *config.Config) (llm.Completer, error) {
	client, err := llm.NewFromCentral(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
