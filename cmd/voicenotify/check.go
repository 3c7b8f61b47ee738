package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hammamikhairi/voicenotify/internal/ignore"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

func (a *app) checkQuietCommand() *cli.Command {
	var at string
	return &cli.Command{
		Name:  "check-quiet",
		Usage: "report whether quiet hours are in effect",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "at",
				Usage:       "time of day to check (HH:MM, default now)",
				Destination: &at,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := prefs.Load(a.flags.PrefsPath)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				t, err := time.Parse("15:04", at)
				if err != nil {
					return fmt.Errorf("parsing --at: %w", err)
				}
				now = t
			}

			start := store.Int(prefs.KeyQuietStart, prefs.DefaultQuietTime)
			end := store.Int(prefs.KeyQuietEnd, prefs.DefaultQuietTime)
			if start == end {
				fmt.Fprintln(os.Stdout, "quiet hours: not configured")
				return nil
			}

			state := "inactive"
			if ignore.InQuietHours(start, end, ignore.MinuteOfDay(now)) {
				state = "active"
			}
			fmt.Fprintf(os.Stdout, "quiet hours %s-%s at %s: %s\n",
				clock(start), clock(end), now.Format("15:04"), state)
			return nil
		},
	}
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check the preferences file for values that would be ignored",
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := prefs.Load(a.flags.PrefsPath)
			if err != nil {
				return err
			}
			if err := store.Validate(); err != nil {
				return fmt.Errorf("%s: %w", a.flags.PrefsPath, err)
			}
			fmt.Fprintf(os.Stdout, "%s: ok\n", a.flags.PrefsPath)
			return nil
		},
	}
}

// clock formats minutes since midnight as HH:MM.
func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
