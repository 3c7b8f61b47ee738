package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/voicenotify/internal/device"
	"github.com/hammamikhairi/voicenotify/internal/display"
	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/engine"
	"github.com/hammamikhairi/voicenotify/internal/interrupt"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
	"github.com/hammamikhairi/voicenotify/internal/registry"
	"github.com/hammamikhairi/voicenotify/internal/source"
	"github.com/hammamikhairi/voicenotify/internal/speech"
)

func TestClock(t *testing.T) {
	assert.Equal(t, "23:00", clock(1380))
	assert.Equal(t, "06:05", clock(365))
}

func TestEventHandlerAppliesDeviceEvents(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := prefs.New(prefs.Defaults())
	dev := device.New()
	eng := engine.New(registry.NewMemory(log), store, speech.NewNoOp(log, 0), dev, log)
	eng.Start(context.Background())
	defer eng.Stop()

	h := &eventHandler{
		engine:  eng,
		device:  dev,
		shake:   interrupt.NewShake(store, log),
		printer: display.NewPrinter(&discard{}, log),
	}
	ctx := context.Background()
	on, off := true, false

	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindScreen, On: &off}))
	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindBluetooth, On: &on}))
	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindRinger, Mode: "silent"}))
	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindCall, On: &on}))

	assert.False(t, dev.ScreenOn())
	assert.True(t, dev.HeadsetOn())
	assert.Equal(t, domain.RingerSilent, dev.RingerMode())
	assert.True(t, dev.InCall())

	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindSuspend}))
	suspended, err := eng.Suspended(ctx)
	require.NoError(t, err)
	assert.True(t, suspended)

	require.NoError(t, h.handle(ctx, source.Event{Kind: source.KindSuspend, On: &off}))
	suspended, err = eng.Suspended(ctx)
	require.NoError(t, err)
	assert.False(t, suspended)
}

func TestEventHandlerPostsNotifications(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := prefs.New(prefs.Defaults())
	reg := registry.NewMemory(log)
	eng := engine.New(reg, store, speech.NewNoOp(log, 0), device.New(), log)
	eng.Start(context.Background())
	defer eng.Stop()

	h := &eventHandler{engine: eng, device: device.New(), printer: display.NewPrinter(&discard{}, log)}
	err := h.handle(context.Background(), source.Event{Kind: source.KindNotification, Package: "com.mail", Body: "hi"})
	require.NoError(t, err)

	apps, err := reg.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "com.mail", apps[0].ID)

	a := &app{log: log}
	a.flags.Drain = 2 * time.Second
	a.drain(context.Background(), eng)
	s, err := eng.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.Queued)
}

func TestSuspendSaverPersistsFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "prefs.yaml")
	store := prefs.New(prefs.Defaults())
	a := &app{log: logger.New(logger.LevelOff, nil)}
	a.flags.PrefsPath = path

	save := a.suspendSaver(store)
	save.OnStatusChanged(domain.Status{Running: true, Suspended: true})
	assert.True(t, store.Bool(prefs.KeyIsSuspended, false))

	loaded, err := prefs.Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Bool(prefs.KeyIsSuspended, false))

	// A stopped engine reports suspended=false; that must not clear the flag.
	save.OnStatusChanged(domain.Status{Running: false})
	assert.True(t, store.Bool(prefs.KeyIsSuspended, false))

	save.OnStatusChanged(domain.Status{Running: true})
	loaded, err = prefs.Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.Bool(prefs.KeyIsSuspended, true))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
