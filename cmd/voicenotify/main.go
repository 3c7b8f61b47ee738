// VoiceNotify speaks incoming notifications aloud.
//
// Usage:
//
//	voicenotify [global options] run < events.jsonl
//	voicenotify apps list|enable|disable [pattern ...]
//	voicenotify check-quiet [--at HH:MM]
//	voicenotify validate
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// Build information. Populated at build-time via -ldflags.
var version = "dev"

// Flags holds the global options shared by every command.
type Flags struct {
	LogLevel       string
	LogFile        string
	PrefsPath      string
	DBPath         string
	NoSpeech       bool
	CacheDir       string
	DiskCache      bool
	VoiceInterrupt bool
	WhisperBin     string
	WhisperModel   string
	Drain          time.Duration
}

// app carries what the Before hook sets up to the command actions.
type app struct {
	flags    Flags
	log      *logger.Logger
	closeLog func()
}

func main() {
	_ = godotenv.Load()

	a := &app{}
	f := &a.flags

	cmd := &cli.Command{
		Name:      "voicenotify",
		Usage:     "Speak incoming notifications aloud",
		UsageText: "voicenotify [global options] command [command options]",
		Description: `VoiceNotify reads notification and device events as JSON lines and
decides, for each notification, whether and when to announce it.

Run 'voicenotify run < events.jsonl' to feed events from a file or a pipe.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (off, info, debug)",
				Sources:     cli.EnvVars("VOICENOTIFY_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "file to write logs to (use \"stderr\" to log to console)",
				Sources:     cli.EnvVars("VOICENOTIFY_LOG_FILE"),
				Value:       ".voicenotify/voicenotify.log",
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "prefs",
				Aliases:     []string{"p"},
				Usage:       "path to the YAML preferences file",
				Sources:     cli.EnvVars("VOICENOTIFY_PREFS"),
				Value:       ".voicenotify/prefs.yaml",
				Destination: &f.PrefsPath,
			},
			&cli.StringFlag{
				Name:        "db",
				Usage:       "path to the SQLite app registry (empty keeps apps in memory)",
				Sources:     cli.EnvVars("VOICENOTIFY_DB"),
				Value:       ".voicenotify/apps.db",
				Destination: &f.DBPath,
			},
			&cli.BoolFlag{
				Name:        "no-speech",
				Usage:       "disable text-to-speech even if Azure keys are set",
				Sources:     cli.EnvVars("VOICENOTIFY_NO_SPEECH"),
				Destination: &f.NoSpeech,
			},
			&cli.StringFlag{
				Name:        "cache-dir",
				Usage:       "directory for persistent TTS audio cache",
				Sources:     cli.EnvVars("VOICENOTIFY_CACHE_DIR"),
				Value:       ".voicenotify/cache",
				Destination: &f.CacheDir,
			},
			&cli.BoolFlag{
				Name:        "disk-cache",
				Usage:       "persist TTS audio cache to disk (reads from disk even when false)",
				Sources:     cli.EnvVars("VOICENOTIFY_DISK_CACHE"),
				Value:       true,
				Destination: &f.DiskCache,
			},
			&cli.BoolFlag{
				Name:        "voice-interrupt",
				Usage:       "listen for \"stop\" through local Whisper STT while speaking",
				Sources:     cli.EnvVars("VOICENOTIFY_VOICE_INTERRUPT"),
				Destination: &f.VoiceInterrupt,
			},
			&cli.StringFlag{
				Name:        "whisper-bin",
				Usage:       "path to the whisper-cpp CLI binary",
				Sources:     cli.EnvVars("VOICENOTIFY_WHISPER_BIN"),
				Value:       "whisper-cli",
				Destination: &f.WhisperBin,
			},
			&cli.StringFlag{
				Name:        "whisper-model",
				Usage:       "path to the Whisper GGML model file",
				Sources:     cli.EnvVars("VOICENOTIFY_WHISPER_MODEL"),
				Value:       "bin/ggml-small.bin",
				Destination: &f.WhisperModel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			log, closer, err := setupLogger(f.LogLevel, f.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			a.log = log
			a.closeLog = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if a.closeLog != nil {
				a.closeLog()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.runCommand(),
			a.appsCommand(),
			a.checkQuietCommand(),
			a.validateCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger directs logs to a file by default so the history output on
// stdout stays clean.
func setupLogger(levelName, logFile string) (*logger.Logger, func(), error) {
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	if logFile != "" && logFile != "stderr" {
		if dir := filepath.Dir(logFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating log dir: %w", err)
			}
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", logFile, err)
		} else {
			out = f
			closer = func() { _ = f.Close() }
		}
	}

	// Third-party libs (the whisper transcriber) log through the standard
	// log package; keep them in the same place.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	return logger.New(level, out), closer, nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
