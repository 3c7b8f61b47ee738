package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// Compile-time interface check.
var _ domain.AppRegistry = (*Memory)(nil)

// Memory is an in-memory app registry. Safe for concurrent access.
type Memory struct {
	mu   sync.RWMutex
	apps map[string]domain.App
	opts options
	log  *logger.Logger
}

// NewMemory creates an empty in-memory registry.
func NewMemory(log *logger.Logger, opts ...Option) *Memory {
	return &Memory{
		apps: make(map[string]domain.App),
		opts: buildOptions(opts),
		log:  log,
	}
}

// LookupOrCreate returns the app for id, registering it on first sight.
func (m *Memory) LookupOrCreate(ctx context.Context, id string) (domain.App, error) {
	m.mu.RLock()
	app, ok := m.apps[id]
	m.mu.RUnlock()
	if ok {
		return app, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if app, ok := m.apps[id]; ok {
		return app, nil
	}
	app = domain.App{ID: id, Label: m.opts.labeler(id), Enabled: m.opts.defaultEnabled()}
	m.apps[id] = app
	m.log.Debug("registered app %s (%s, enabled=%t)", id, app.Label, app.Enabled)
	return app, nil
}

// Put inserts or replaces an app.
func (m *Memory) Put(ctx context.Context, app domain.App) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = app
	return nil
}

// SetEnabled flips the enabled flag of a known app.
func (m *Memory) SetEnabled(ctx context.Context, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Enabled = enabled
	m.apps[id] = app
	m.log.Debug("app %s enabled=%t", id, enabled)
	return nil
}

// List returns every app sorted by label.
func (m *Memory) List(ctx context.Context) ([]domain.App, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.App, 0, len(m.apps))
	for _, app := range m.apps {
		out = append(out, app)
	}
	sortApps(out)
	return out, nil
}

func sortApps(apps []domain.App) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Label != apps[j].Label {
			return apps[i].Label < apps[j].Label
		}
		return apps[i].ID < apps[j].ID
	})
}
