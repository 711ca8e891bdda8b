// Package repositories wires the Postgres connection to the individual
// stores and owns schema migrations.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/inkpost/backend/internal/migrations"
	"github.com/inkpost/backend/internal/repositories/blacklist"
	"github.com/inkpost/backend/internal/repositories/refreshtokens"
	"github.com/inkpost/backend/internal/repositories/users"
)

// Manager owns the shared *sql.DB and hands out the repositories built on it.
// The blacklist store is not part of the manager: its backend is selectable
// and may not be Postgres at all.
type Manager struct {
	db            *sql.DB
	users         users.Repository
	refreshTokens refreshtokens.Repository
}

func NewManager(dsn string) (*Manager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &Manager{
		db:            db,
		users:         users.NewPostgresRepository(db),
		refreshTokens: refreshtokens.NewPostgresRepository(db),
	}, nil
}

func (m *Manager) Conn() *sql.DB {
	return m.db
}

func (m *Manager) Users() users.Repository {
	return m.users
}

func (m *Manager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

// Blacklist returns a Postgres-backed deny-list sharing the manager's
// connection.
func (m *Manager) Blacklist() blacklist.Repository {
	return blacklist.NewPostgresRepository(m.db)
}

func (m *Manager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

func (m *Manager) Close() error {
	return m.db.Close()
}
