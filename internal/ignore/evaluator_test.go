package ignore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

type fakeDevice struct {
	screen  bool
	headset bool
	ringer  domain.RingerMode
	call    bool
}

func (d *fakeDevice) ScreenOn() bool                { return d.screen }
func (d *fakeDevice) HeadsetOn() bool               { return d.headset }
func (d *fakeDevice) RingerMode() domain.RingerMode { return d.ringer }
func (d *fakeDevice) InCall() bool                  { return d.call }

func newInfo(app domain.App, body, utterance string) *domain.NotificationInfo {
	info := domain.NewNotificationInfo("id", app, domain.Notification{Package: app.ID, Body: body}, time.Now())
	info.Utterance = utterance
	return info
}

var enabledApp = domain.App{ID: "com.mail", Label: "Mail", Enabled: true}

func TestInQuietHours(t *testing.T) {
	tests := []struct {
		name            string
		start, end, now int
		want            bool
	}{
		{"wrap midnight", 1380, 360, 1440 % 1440, true},
		{"wrap early morning", 1380, 360, 300, true},
		{"wrap noon", 1380, 360, 720, false},
		{"wrap at end is outside", 1380, 360, 360, false},
		{"wrap at start is inside", 1380, 360, 1380, true},
		{"same day inside", 60, 120, 90, true},
		{"same day outside", 60, 120, 120, false},
		{"disabled when equal", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InQuietHours(tt.start, tt.end, tt.now))
		})
	}
}

func TestContentPass(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	t.Run("clear", func(t *testing.T) {
		e := New(prefs.New(prefs.Defaults()), &fakeDevice{}, log)
		info := newInfo(enabledApp, "hello", "Mail. hello.")
		assert.True(t, e.Content(info, false, nil, now))
		assert.False(t, info.Ignored())
	})

	t.Run("suspended and disabled", func(t *testing.T) {
		e := New(prefs.New(prefs.Defaults()), &fakeDevice{}, log)
		app := enabledApp
		app.Enabled = false
		info := newInfo(app, "hello", "Mail. hello.")
		assert.False(t, e.Content(info, true, nil, now))
		assert.Equal(t, []domain.IgnoreReason{
			domain.Reason(domain.ReasonSuspended),
			domain.Reason(domain.ReasonAppDisabled),
		}, info.IgnoreReasons.List())
	})

	t.Run("block list is case insensitive", func(t *testing.T) {
		p := prefs.New(prefs.Defaults())
		p.Set(prefs.KeyIgnoreStrings, "promo\n\nSALE")
		e := New(p, &fakeDevice{}, log)
		info := newInfo(enabledApp, "Big sale today", "Mail. Big Sale today.")
		assert.False(t, e.Content(info, false, nil, now))
		assert.True(t, info.IgnoreReasons.Has(domain.ReasonStringFilter))
	})

	t.Run("required strings", func(t *testing.T) {
		p := prefs.New(prefs.Defaults())
		p.Set(prefs.KeyRequireStrings, "urgent")
		e := New(p, &fakeDevice{}, log)

		miss := newInfo(enabledApp, "hi", "Mail. hi.")
		assert.False(t, e.Content(miss, false, nil, now))
		assert.True(t, miss.IgnoreReasons.Has(domain.ReasonStringRequired))

		hit := newInfo(enabledApp, "URGENT: call", "Mail. URGENT: call.")
		assert.True(t, e.Content(hit, false, nil, now))
	})

	t.Run("empty message gated by preference", func(t *testing.T) {
		p := prefs.New(prefs.Defaults())
		e := New(p, &fakeDevice{}, log)
		info := newInfo(enabledApp, "", "Notification from Mail.")
		assert.False(t, e.Content(info, false, nil, now))
		assert.True(t, info.IgnoreReasons.Has(domain.ReasonEmptyMessage))

		p.Set(prefs.KeyIgnoreEmpty, false)
		again := newInfo(enabledApp, "", "Notification from Mail.")
		assert.True(t, e.Content(again, false, nil, now))
	})
}

func TestIdenticalRepeat(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	last := &LastMessage{Utterance: "Mail. hi.", At: now.Add(-5 * time.Second)}

	tests := []struct {
		name    string
		window  any
		last    *LastMessage
		text    string
		ignored bool
	}{
		{"within window", 10, last, "Mail. hi.", true},
		{"beyond window", 3, last, "Mail. hi.", false},
		{"zero window is unlimited", 0, last, "Mail. hi.", true},
		{"absent window is unlimited", nil, last, "Mail. hi.", true},
		{"malformed window is unlimited", "soon", last, "Mail. hi.", true},
		{"different text", 10, last, "Mail. bye.", false},
		{"no history", 10, nil, "Mail. hi.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prefs.New(prefs.Defaults())
			if tt.window != nil {
				p.Set(prefs.KeyIgnoreRepeat, tt.window)
			}
			e := New(p, &fakeDevice{}, log)
			info := newInfo(enabledApp, "hi", tt.text)
			ok := e.Content(info, false, tt.last, now)
			assert.Equal(t, tt.ignored, !ok)
			assert.Equal(t, tt.ignored, info.IgnoreReasons.Has(domain.ReasonIdenticalRepeat))
		})
	}
}

func TestIdenticalRepeatWindowIsRendered(t *testing.T) {
	p := prefs.New(prefs.Defaults())
	p.Set(prefs.KeyIgnoreRepeat, 30)
	e := New(p, &fakeDevice{}, logger.New(logger.LevelOff, nil))
	now := time.Now()

	info := newInfo(enabledApp, "hi", "x")
	e.Content(info, false, &LastMessage{Utterance: "x", At: now}, now)
	require.Equal(t, 1, info.IgnoreReasons.Len())
	assert.Equal(t, "Identical to a message within 30 seconds", info.ReasonsText())
}

func TestEnvironmentPass(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	night := time.Date(2024, 1, 1, 23, 30, 0, 0, time.Local)

	tests := []struct {
		name   string
		set    map[string]any
		device fakeDevice
		now    time.Time
		want   []domain.ReasonKind
	}{
		{"defaults screen on", nil, fakeDevice{screen: true}, noon, nil},
		{"quiet hours", map[string]any{prefs.KeyQuietStart: 1380, prefs.KeyQuietEnd: 360}, fakeDevice{screen: true}, night, []domain.ReasonKind{domain.ReasonQuietHours}},
		{"silent ringer", nil, fakeDevice{ringer: domain.RingerSilent}, noon, []domain.ReasonKind{domain.ReasonSilentRinger}},
		{"vibrate allowed", map[string]any{prefs.KeySpeakSilentOn: true}, fakeDevice{ringer: domain.RingerVibrate}, noon, nil},
		{"call", nil, fakeDevice{call: true}, noon, []domain.ReasonKind{domain.ReasonActiveCall}},
		{"screen off policy", map[string]any{prefs.KeySpeakScreenOff: false}, fakeDevice{}, noon, []domain.ReasonKind{domain.ReasonScreenOff}},
		{"screen on policy", map[string]any{prefs.KeySpeakScreenOn: false}, fakeDevice{screen: true}, noon, []domain.ReasonKind{domain.ReasonScreenOn}},
		{"headset on policy", map[string]any{prefs.KeySpeakHeadsetOn: false}, fakeDevice{headset: true}, noon, []domain.ReasonKind{domain.ReasonHeadsetOn}},
		{"headset off policy", map[string]any{prefs.KeySpeakHeadsetOff: false}, fakeDevice{}, noon, []domain.ReasonKind{domain.ReasonHeadsetOff}},
		{"call while silent", nil, fakeDevice{call: true, ringer: domain.RingerSilent}, noon, []domain.ReasonKind{domain.ReasonSilentRinger, domain.ReasonActiveCall}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prefs.New(prefs.Defaults())
			for k, v := range tt.set {
				p.Set(k, v)
			}
			dev := tt.device
			e := New(p, &dev, log)
			info := newInfo(enabledApp, "hi", "Mail. hi.")

			found := e.Environment(info, false, tt.now)
			var kinds []domain.ReasonKind
			for _, r := range found {
				kinds = append(kinds, r.Kind)
			}
			assert.Equal(t, tt.want, kinds)
			assert.Equal(t, len(tt.want), info.IgnoreReasons.Len())
		})
	}
}

func TestEnvironmentSuspended(t *testing.T) {
	e := New(prefs.New(prefs.Defaults()), &fakeDevice{screen: true}, logger.New(logger.LevelOff, nil))
	found := e.EnvironmentReasons(true, time.Now())
	require.Len(t, found, 1)
	assert.Equal(t, domain.ReasonSuspended, found[0].Kind)
}

func TestDedup(t *testing.T) {
	d := NewDedup()
	assert.Nil(t, d.Last("a"))

	at := time.Now()
	d.Record("a", "hi", at)
	last := d.Last("a")
	require.NotNil(t, last)
	assert.Equal(t, "hi", last.Utterance)
	assert.True(t, last.Suppresses("hi", 10, at.Add(9*time.Second)))
	assert.False(t, last.Suppresses("hi", 10, at.Add(10*time.Second)))
	assert.Equal(t, 1, d.Len())
}
