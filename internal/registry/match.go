package registry

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hammamikhairi/voicenotify/internal/domain"
)

// Match returns the apps whose ID matches any of the glob patterns, in
// list order. "com.google.*" matches every ID with that prefix.
func Match(apps []domain.App, patterns ...string) ([]domain.App, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	var out []domain.App
	for _, app := range apps {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, app.ID); ok {
				out = append(out, app)
				break
			}
		}
	}
	return out, nil
}

// SetEnabledMatching flips the enabled flag of every registered app that
// matches a pattern. A pattern without glob syntax that matches nothing
// registers that ID first, so a source can be muted before it ever posts.
func SetEnabledMatching(ctx context.Context, reg domain.AppRegistry, enabled bool, patterns ...string) ([]domain.App, error) {
	apps, err := reg.List(ctx)
	if err != nil {
		return nil, err
	}

	matched, err := Match(apps, patterns...)
	if err != nil {
		return nil, err
	}

	for _, p := range patterns {
		if isLiteral(p) && !containsID(matched, p) {
			app, err := reg.LookupOrCreate(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("registering %s: %w", p, err)
			}
			matched = append(matched, app)
		}
	}

	for i := range matched {
		if err := reg.SetEnabled(ctx, matched[i].ID, enabled); err != nil {
			return nil, fmt.Errorf("updating %s: %w", matched[i].ID, err)
		}
		matched[i].Enabled = enabled
	}
	return matched, nil
}

func isLiteral(pattern string) bool {
	return doublestar.ValidatePattern(pattern) && !hasMeta(pattern)
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '{', '\\':
			return true
		}
	}
	return false
}

func containsID(apps []domain.App, id string) bool {
	for _, a := range apps {
		if a.ID == id {
			return true
		}
	}
	return false
}
