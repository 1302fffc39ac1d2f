package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	defaultConnAttempts = 10
	connRetryDelay      = time.Second
)

// NewPostgresClient connects to the ledger database, retrying while it starts
// up, and applies pending migrations.
func NewPostgresClient(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := connectWithRetry(ctx, defaultConnAttempts, connRetryDelay, func(ctx context.Context) (*sqlx.DB, error) {
		return sqlx.ConnectContext(ctx, "pgx", postgresDSN(cfg.Postgres))
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres %s:%d: %w", cfg.Postgres.Host, cfg.Postgres.Port, err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	slog.Info("Postgres connected", slog.String("host", cfg.Postgres.Host), slog.String("db", cfg.Postgres.DbName))

	if err = migratePostgres(db, cfg.Postgres.MigrationDir); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func postgresDSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.DbName,
		cfg.Password,
	)
}

// connectWithRetry calls connect up to attempts times, waiting delay between
// failures. It gives up early once ctx is done.
func connectWithRetry(ctx context.Context, attempts int, delay time.Duration, connect func(ctx context.Context) (*sqlx.DB, error)) (*sqlx.DB, error) {
	var err error
	for left := attempts; left > 0; left-- {
		var db *sqlx.DB
		db, err = connect(ctx)
		if err == nil {
			return db, nil
		}

		slog.Info("Postgres is trying to connect", slog.Int("attempts left", left-1), slog.String("err", err.Error()))
		if left == 1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ctx.Err(), err)
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%d attempts failed: %w", attempts, err)
}

func migratePostgres(db *sqlx.DB, migrationDir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationDir),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("load migrations from %s: %w", migrationDir, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations from %s: %w", migrationDir, err)
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", vErr)
	}
	slog.Info("postgres migrated",
		slog.String("dir", migrationDir),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.Bool("changed", !errors.Is(err, migrate.ErrNoChange)),
	)
	return nil
}
