package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hammamikhairi/voicenotify/internal/display"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
	"github.com/hammamikhairi/voicenotify/internal/registry"
)

func (a *app) appsCommand() *cli.Command {
	return &cli.Command{
		Name:  "apps",
		Usage: "list apps and choose which may speak",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list known apps",
				Action: a.appsList,
			},
			{
				Name:      "enable",
				Usage:     "allow matching apps to speak",
				ArgsUsage: "<pattern> [pattern ...]",
				Action:    a.appsSetEnabled(true),
			},
			{
				Name:      "disable",
				Usage:     "silence matching apps",
				ArgsUsage: "<pattern> [pattern ...]",
				Action:    a.appsSetEnabled(false),
			},
		},
	}
}

// withRegistry opens the persistent registry for an admin command.
func (a *app) withRegistry(ctx context.Context, fn func(reg *registry.SQLite) error) error {
	if a.flags.DBPath == "" {
		return errors.New("apps commands need a registry database (--db)")
	}
	store, err := prefs.Load(a.flags.PrefsPath)
	if err != nil {
		return err
	}
	if err := ensureDir(a.flags.DBPath); err != nil {
		return err
	}
	reg, err := registry.OpenSQLite(ctx, a.flags.DBPath, a.log,
		registry.WithDefaultEnabled(func() bool {
			return store.Bool(prefs.KeyAppDefaultOn, prefs.DefaultAppDefaultOn)
		}),
	)
	if err != nil {
		return err
	}
	defer reg.Close()
	return fn(reg)
}

func (a *app) appsList(ctx context.Context, c *cli.Command) error {
	return a.withRegistry(ctx, func(reg *registry.SQLite) error {
		apps, err := reg.List(ctx)
		if err != nil {
			return err
		}
		display.NewPrinter(os.Stdout, a.log).Apps(apps)
		return nil
	})
}

func (a *app) appsSetEnabled(enabled bool) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		patterns := c.Args().Slice()
		if len(patterns) == 0 {
			return errors.New("at least one app pattern is required")
		}
		return a.withRegistry(ctx, func(reg *registry.SQLite) error {
			changed, err := registry.SetEnabledMatching(ctx, reg, enabled, patterns...)
			if err != nil {
				return err
			}
			display.NewPrinter(os.Stdout, a.log).Apps(changed)
			return nil
		})
	}
}
