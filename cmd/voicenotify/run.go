package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hammamikhairi/voicenotify/internal/device"
	"github.com/hammamikhairi/voicenotify/internal/display"
	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/engine"
	"github.com/hammamikhairi/voicenotify/internal/history"
	"github.com/hammamikhairi/voicenotify/internal/interrupt"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
	"github.com/hammamikhairi/voicenotify/internal/registry"
	"github.com/hammamikhairi/voicenotify/internal/source"
	"github.com/hammamikhairi/voicenotify/internal/speech"
)

func (a *app) runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "read events from stdin and announce notifications",
		Description: `Each stdin line is one JSON event:

  {"type":"notification","package":"com.mail","title":"Ann","body":"Lunch?"}
  {"type":"screen","on":false}
  {"type":"headset","on":true}
  {"type":"bluetooth","on":true}
  {"type":"ringer","mode":"silent"}
  {"type":"call","on":true}
  {"type":"suspend"}              (toggle; add "on" to set)
  {"type":"shake","x":0,"y":9.8,"z":21}
  {"type":"status"}

When input ends, the command waits up to --drain for queued speech.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "drain",
				Usage:       "how long to wait for pending speech after input ends",
				Sources:     cli.EnvVars("VOICENOTIFY_DRAIN"),
				Value:       30 * time.Second,
				Destination: &a.flags.Drain,
			},
		},
		Action: a.run,
	}
}

func (a *app) run(ctx context.Context, c *cli.Command) error {
	store, err := prefs.Load(a.flags.PrefsPath)
	if err != nil {
		return err
	}
	if err := store.Validate(); err != nil {
		a.log.Warn("preferences: %v", err)
	}

	reg, closeReg, err := a.openRegistry(ctx, store)
	if err != nil {
		return err
	}
	defer closeReg()

	dev := device.New()
	hist := history.New(history.DefaultLimit)
	printer := display.NewPrinter(os.Stdout, a.log)
	hist.Subscribe(printer.Record)

	sp, stopSpeech := a.buildSpeech(ctx)
	defer stopSpeech()

	shake := interrupt.NewShake(store, a.log)
	detectors := interrupt.Group{shake}
	if a.flags.VoiceInterrupt {
		if v := a.buildVoiceDetector(); v != nil {
			detectors = append(detectors, v)
		}
	}

	eng := engine.New(reg, store, sp, dev, a.log,
		engine.WithHistory(hist),
		engine.WithInterruptDetector(detectors),
		engine.WithObserver(printer),
		engine.WithObserver(a.suspendSaver(store)),
	)
	dev.OnChange(eng.DeviceChanged)

	reader, err := source.NewReader(a.log)
	if err != nil {
		return err
	}

	printer.Banner()
	eng.Start(ctx)
	defer eng.Stop()

	h := &eventHandler{engine: eng, device: dev, shake: shake, printer: printer}
	n, err := reader.Run(ctx, os.Stdin, h.handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info("input closed after %d events", n)

	a.drain(ctx, eng)
	return nil
}

// openRegistry returns the SQLite registry, or an in-memory one when no
// database path is set.
func (a *app) openRegistry(ctx context.Context, store *prefs.Store) (domain.AppRegistry, func(), error) {
	opts := []registry.Option{
		registry.WithDefaultEnabled(func() bool {
			return store.Bool(prefs.KeyAppDefaultOn, prefs.DefaultAppDefaultOn)
		}),
	}

	if a.flags.DBPath == "" {
		return registry.NewMemory(a.log, opts...), func() {}, nil
	}
	if err := ensureDir(a.flags.DBPath); err != nil {
		return nil, nil, fmt.Errorf("creating db dir: %w", err)
	}
	db, err := registry.OpenSQLite(ctx, a.flags.DBPath, a.log, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			a.log.Error("closing registry: %v", err)
		}
	}, nil
}

// buildSpeech returns the Azure voice when credentials and an audio device
// are available, and the silent engine otherwise.
func (a *app) buildSpeech(ctx context.Context) (domain.SpeechEngine, func()) {
	silent := func() (domain.SpeechEngine, func()) {
		// Roughly 15 characters per second, so queues behave as if spoken.
		return speech.NewNoOp(a.log, 65*time.Millisecond), func() {}
	}

	if a.flags.NoSpeech {
		return silent()
	}

	key := os.Getenv(speech.EnvAzureSpeechKey)
	region := os.Getenv(speech.EnvAzureSpeechRegion)
	if key == "" || region == "" {
		a.log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
		return silent()
	}

	player, err := speech.NewPlayer(a.log)
	if err != nil {
		a.log.Error("audio player init failed, speech disabled: %v", err)
		return silent()
	}

	tts := speech.NewAzureClient(key, region, a.log)
	voice := speech.NewVoice(tts, player, a.log,
		speech.WithCacheDir(a.flags.CacheDir),
		speech.WithDiskWrite(a.flags.DiskCache),
	)
	voice.Start(ctx)
	a.log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), region)

	return voice, func() {
		voice.Stop()
		st := voice.Cache().Stats()
		a.log.Debug("audio cache: %d hits, %d disk hits, %d misses", st.Hits, st.DiskHits, st.Misses)
	}
}

// buildVoiceDetector returns nil when the whisper model is missing.
func (a *app) buildVoiceDetector() domain.InterruptDetector {
	if _, err := os.Stat(a.flags.WhisperModel); err != nil {
		a.log.Error("voice interrupt disabled: whisper model not found at %s", a.flags.WhisperModel)
		return nil
	}
	tempDir := ".voicenotify/stt"
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		a.log.Error("voice interrupt disabled: %v", err)
		return nil
	}
	a.log.Info("voice interrupt enabled (bin=%s, model=%s)", a.flags.WhisperBin, a.flags.WhisperModel)
	return interrupt.NewVoice(a.flags.WhisperBin, a.flags.WhisperModel, a.log, interrupt.WithTempDir(tempDir))
}

// suspendSaver records the suspended flag in the preference store whenever
// it changes, and writes the preferences file so it survives restarts. The
// engine itself never writes preferences.
func (a *app) suspendSaver(store *prefs.Store) domain.StatusObserver {
	var mu sync.Mutex
	last := store.Bool(prefs.KeyIsSuspended, prefs.DefaultIsSuspended)

	return domain.StatusObserverFunc(func(s domain.Status) {
		mu.Lock()
		defer mu.Unlock()
		if !s.Running || s.Suspended == last {
			return
		}
		last = s.Suspended
		store.Set(prefs.KeyIsSuspended, s.Suspended)

		if a.flags.PrefsPath == "" {
			return
		}
		if err := ensureDir(a.flags.PrefsPath); err != nil {
			a.log.Error("saving preferences: %v", err)
			return
		}
		if err := store.Save(a.flags.PrefsPath); err != nil {
			a.log.Error("saving preferences: %v", err)
		}
	})
}

// drain waits until nothing is delayed, queued or repeating, or until the
// drain timeout passes.
func (a *app) drain(ctx context.Context, eng *engine.Engine) {
	if a.flags.Drain <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, a.flags.Drain)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		s, err := eng.Status(ctx)
		if err != nil {
			return
		}
		if s.Queued == 0 && s.Delayed == 0 && s.Repeating == 0 {
			return
		}
		select {
		case <-ctx.Done():
			a.log.Info("drain timeout with %d queued, %d delayed, %d repeating", s.Queued, s.Delayed, s.Repeating)
			return
		case <-ticker.C:
		}
	}
}

// eventHandler applies input events to the engine and device state.
type eventHandler struct {
	engine  *engine.Engine
	device  *device.State
	shake   *interrupt.Shake
	printer *display.Printer
}

func (h *eventHandler) handle(ctx context.Context, ev source.Event) error {
	on := ev.On != nil && *ev.On

	switch ev.Kind {
	case source.KindNotification:
		_, err := h.engine.OnNotificationPosted(ctx, ev.Notification())
		return err
	case source.KindScreen:
		h.device.SetScreen(on)
	case source.KindHeadset:
		h.device.SetHeadset(on)
	case source.KindBluetooth:
		h.device.SetBluetooth(on)
	case source.KindRinger:
		h.device.SetRinger(ev.Ringer())
	case source.KindCall:
		h.device.SetInCall(on)
	case source.KindSuspend:
		if ev.On == nil {
			return h.engine.ToggleSuspend(ctx)
		}
		return h.engine.SetSuspended(ctx, on)
	case source.KindShake:
		h.shake.Feed(ev.X, ev.Y, ev.Z)
	case source.KindStatus:
		s, err := h.engine.Status(ctx)
		if err != nil {
			return err
		}
		h.printer.OnStatusChanged(s)
	default:
		return fmt.Errorf("unhandled event %q", ev.Kind)
	}
	return nil
}
