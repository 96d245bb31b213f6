// server/settings/postgres.go
package settings

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const lastRootKey = "last_root"

// PostgresRootStore keeps the last root in the app_state table, for setups
// where several front-ends share one backend database.
type PostgresRootStore struct {
	pool *pgxpool.Pool
}

// Migrate brings the schema at databaseURL up to date.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres URL to the scheme of migrate's pgx driver.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

func NewPostgresRootStore(ctx context.Context, databaseURL string) (*PostgresRootStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &PostgresRootStore{pool: pool}, nil
}

func (s *PostgresRootStore) Close() {
	s.pool.Close()
}

func (s *PostgresRootStore) LastRoot(ctx context.Context) (*string, error) {
	var root string
	err := s.pool.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, lastRootKey).Scan(&root)
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last root: %w", err)
	}
	return &root, nil
}

func (s *PostgresRootStore) SaveLastRoot(ctx context.Context, root *string) error {
	if root == nil || *root == "" {
		if _, err := s.pool.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, lastRootKey); err != nil {
			return fmt.Errorf("clear last root: %w", err)
		}
		return nil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		lastRootKey, *root)
	if err != nil {
		return fmt.Errorf("save last root: %w", err)
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
