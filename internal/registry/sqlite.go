package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

//go:embed schema/schema.sql
var schemaSQL string

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
	busyTimeout = 5000 // milliseconds
)

// Compile-time interface check.
var _ domain.AppRegistry = (*SQLite)(nil)

// SQLite is an app registry persisted in a SQLite file, so enabled flags
// survive restarts.
type SQLite struct {
	conn *sql.DB
	opts options
	log  *logger.Logger
}

// OpenSQLite opens (and if needed creates) the registry database at path.
func OpenSQLite(ctx context.Context, path string, log *logger.Logger, opts ...Option) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	// SQLite serialises writers anyway.
	conn.SetMaxOpenConns(1)

	r := &SQLite{conn: conn, opts: buildOptions(opts), log: log}

	if err := r.pingWithRetry(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialising registry schema: %w", err)
	}

	log.Debug("app registry opened at %s", path)
	return r, nil
}

// Close closes the database.
func (r *SQLite) Close() error {
	return r.conn.Close()
}

func (r *SQLite) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err := r.conn.PingContext(ctx); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
	return fmt.Errorf("registry database unreachable after %d attempts", maxRetries)
}

// LookupOrCreate returns the app for id, inserting it on first sight.
func (r *SQLite) LookupOrCreate(ctx context.Context, id string) (domain.App, error) {
	app, err := r.get(ctx, id)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.App{}, err
	}

	app = domain.App{ID: id, Label: r.opts.labeler(id), Enabled: r.opts.defaultEnabled()}
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO apps (id, label, enabled, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		app.ID, app.Label, app.Enabled, time.Now().Unix())
	if err != nil {
		return domain.App{}, fmt.Errorf("registering app %s: %w", id, err)
	}

	// Another caller may have won the insert.
	app, err = r.get(ctx, id)
	if err != nil {
		return domain.App{}, err
	}
	r.log.Debug("registered app %s (%s, enabled=%t)", id, app.Label, app.Enabled)
	return app, nil
}

// Put inserts or replaces an app.
func (r *SQLite) Put(ctx context.Context, app domain.App) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO apps (id, label, enabled, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label, enabled = excluded.enabled`,
		app.ID, app.Label, app.Enabled, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving app %s: %w", app.ID, err)
	}
	return nil
}

// SetEnabled flips the enabled flag of a known app.
func (r *SQLite) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := r.conn.ExecContext(ctx, `UPDATE apps SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("updating app %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating app %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	r.log.Debug("app %s enabled=%t", id, enabled)
	return nil
}

// List returns every app sorted by label.
func (r *SQLite) List(ctx context.Context) ([]domain.App, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT id, label, enabled FROM apps ORDER BY label, id`)
	if err != nil {
		return nil, fmt.Errorf("listing apps: %w", err)
	}
	defer rows.Close()

	var out []domain.App
	for rows.Next() {
		var app domain.App
		if err := rows.Scan(&app.ID, &app.Label, &app.Enabled); err != nil {
			return nil, fmt.Errorf("scanning app: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing apps: %w", err)
	}
	return out, nil
}

func (r *SQLite) get(ctx context.Context, id string) (domain.App, error) {
	var app domain.App
	err := r.conn.QueryRowContext(ctx, `SELECT id, label, enabled FROM apps WHERE id = ?`, id).
		Scan(&app.ID, &app.Label, &app.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.App{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.App{}, fmt.Errorf("looking up app %s: %w", id, err)
	}
	return app, nil
}
