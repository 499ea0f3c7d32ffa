package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splitz-app/splitz-backend/config"
	"github.com/splitz-app/splitz-backend/logger"
)

// ConnectPool opens a pgx connection pool using the supplied database
// configuration. In production TLS is enforced on the connection.
func ConnectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	log := logger.GetLogger()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.IsProduction() {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	if cfg.Database.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLife != "" {
		maxLife, err := time.ParseDuration(cfg.Database.ConnMaxLife)
		if err != nil {
			return nil, fmt.Errorf("invalid CONN_MAX_LIFE %q: %w", cfg.Database.ConnMaxLife, err)
		}
		poolConfig.MaxConnLifetime = maxLife
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("Connected to database",
		"host", cfg.Database.Host,
		"database", cfg.Database.Name)
	return pool, nil
}
