// Package ignore decides whether a notification should be spoken.
//
// Evaluation happens in two passes. The content pass runs once when the
// notification arrives and only looks at the record itself, the app and the
// dedup history. The environment pass runs right before dispatch and looks at
// the device: quiet hours, ringer, calls, screen and headset. Both passes
// append to the record's reason set; reasons are never removed.
package ignore

import (
	"strings"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// Evaluator runs both passes against a preference store and device state.
// It holds no mutable state of its own and is safe for concurrent use.
type Evaluator struct {
	prefs  domain.Preferences
	device domain.DeviceState
	log    *logger.Logger
}

// New creates an evaluator.
func New(p domain.Preferences, d domain.DeviceState, log *logger.Logger) *Evaluator {
	return &Evaluator{prefs: p, device: d, log: log}
}

// Content appends every content reason that applies to info and reports
// whether the record is still clear. last is the app's dedup entry, if any.
func (e *Evaluator) Content(info *domain.NotificationInfo, suspended bool, last *LastMessage, now time.Time) bool {
	if suspended {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonSuspended))
	}
	if !info.App.Enabled {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonAppDisabled))
	}

	msg := strings.ToLower(info.Utterance)
	if required := splitList(e.prefs.String(prefs.KeyRequireStrings, "")); len(required) > 0 {
		if !containsAny(msg, required) {
			info.IgnoreReasons.Add(domain.Reason(domain.ReasonStringRequired))
		}
	}
	if containsAny(msg, splitList(e.prefs.String(prefs.KeyIgnoreStrings, ""))) {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonStringFilter))
	}

	if e.prefs.Bool(prefs.KeyIgnoreEmpty, prefs.DefaultIgnoreEmpty) && info.IsEmpty() {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonEmptyMessage))
	}

	window := e.prefs.Int(prefs.KeyIgnoreRepeat, prefs.DefaultIgnoreRepeat)
	if last.Suppresses(info.Utterance, window, now) {
		info.IgnoreReasons.Add(domain.IdenticalRepeat(window))
	}

	return info.IgnoreReasons.Empty()
}

// Environment appends the device-dependent reasons that currently apply and
// returns them. An empty result means the environment allows speech.
func (e *Evaluator) Environment(info *domain.NotificationInfo, suspended bool, now time.Time) []domain.IgnoreReason {
	found := e.EnvironmentReasons(suspended, now)
	if info != nil {
		info.IgnoreReasons.AddAll(found)
	}
	return found
}

// EnvironmentReasons evaluates the environment pass without a record.
// The device reactor uses it to decide whether queued speech must stop.
func (e *Evaluator) EnvironmentReasons(suspended bool, now time.Time) []domain.IgnoreReason {
	var found []domain.IgnoreReason
	add := func(kind domain.ReasonKind) {
		found = append(found, domain.Reason(kind))
	}

	if suspended {
		add(domain.ReasonSuspended)
	}

	start := e.prefs.Int(prefs.KeyQuietStart, prefs.DefaultQuietTime)
	end := e.prefs.Int(prefs.KeyQuietEnd, prefs.DefaultQuietTime)
	if InQuietHours(start, end, MinuteOfDay(now)) {
		add(domain.ReasonQuietHours)
	}

	switch e.device.RingerMode() {
	case domain.RingerSilent, domain.RingerVibrate:
		if !e.prefs.Bool(prefs.KeySpeakSilentOn, prefs.DefaultSpeakSilentOn) {
			add(domain.ReasonSilentRinger)
		}
	}

	if e.device.InCall() {
		add(domain.ReasonActiveCall)
	}

	if e.device.ScreenOn() {
		if !e.prefs.Bool(prefs.KeySpeakScreenOn, prefs.DefaultSpeakScreenOn) {
			add(domain.ReasonScreenOn)
		}
	} else if !e.prefs.Bool(prefs.KeySpeakScreenOff, prefs.DefaultSpeakScreenOff) {
		add(domain.ReasonScreenOff)
	}

	if e.device.HeadsetOn() {
		if !e.prefs.Bool(prefs.KeySpeakHeadsetOn, prefs.DefaultSpeakHeadset) {
			add(domain.ReasonHeadsetOn)
		}
	} else if !e.prefs.Bool(prefs.KeySpeakHeadsetOff, prefs.DefaultSpeakHeadset) {
		add(domain.ReasonHeadsetOff)
	}

	if len(found) > 0 && e.log != nil {
		e.log.Debug("environment pass: %s", domain.JoinReasons(found))
	}
	return found
}

// InQuietHours reports whether now falls in the [start, end) window. All
// values are minutes since midnight; start > end wraps past midnight and
// start == end disables the window.
func InQuietHours(start, end, now int) bool {
	if start < end {
		return start <= now && now < end
	}
	if end < start {
		return now >= start || now < end
	}
	return false
}

// MinuteOfDay converts t to minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// splitList splits a newline-delimited preference into lower-cased,
// non-blank entries.
func splitList(stored string) []string {
	if stored == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(stored, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, strings.ToLower(line))
		}
	}
	return out
}

func containsAny(msg string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
