package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App owns the store clients. They are created once at startup and handed
// to the repositories; nothing else holds a connection.
type App struct {
	Config *config.Config
	Redis  *redis.Client
	DB     *pgxpool.Pool
}

func NewApp(cfg *config.Config) (*App, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	err := withRetry("Redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	app := &App{Config: cfg, Redis: rdb}

	if cfg.CredentialStore == config.CredentialStorePostgres {
		err = withRetry("DB", func(ctx context.Context) error {
			pool, err := newDBPool(ctx, cfg.DBUrl)
			if err != nil {
				return err
			}
			app.DB = pool
			return nil
		})
		if err != nil {
			app.Close()
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := repositories.EnsurePartnersSchema(ctx, app.DB); err != nil {
			app.Close()
			return nil, fmt.Errorf("ensure partners schema: %w", err)
		}
	}

	return app, nil
}

// PartnerRepository returns the credential store selected by config.
func (a *App) PartnerRepository() repositories.PartnerRepository {
	if a.DB != nil {
		return repositories.NewPostgresPartnerRepository(a.DB)
	}
	return repositories.NewRedisPartnerRepository(a.Redis)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("DB connection closed.")
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Error closing Redis client")
		} else {
			utils.Logger.Info("Redis connection closed.")
		}
	}
}

func withRetry(what string, connect func(ctx context.Context) error) error {
	backoff := initialBackoff
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		err := connect(ctx)
		cancel()
		if err == nil {
			utils.Logger.Infof("Connected to %s on attempt %d", what, i)
			return nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed %s connect on attempt %d/%d. Retrying in %v...",
			what, i, maxRetries, backoff,
		)

		if i == maxRetries {
			return fmt.Errorf("unable to connect to %s after %d attempts: %w", what, maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
