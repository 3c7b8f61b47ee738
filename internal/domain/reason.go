package domain

import (
	"fmt"
	"strings"
)

// ReasonKind classifies why a notification was not spoken, or why its speech
// was cut short.
type ReasonKind int

const (
	ReasonSuspended ReasonKind = iota
	ReasonAppDisabled
	ReasonStringRequired
	ReasonStringFilter
	ReasonEmptyMessage
	ReasonIdenticalRepeat
	ReasonQuietHours
	ReasonSilentRinger
	ReasonActiveCall
	ReasonScreenOff
	ReasonScreenOn
	ReasonHeadsetOff
	ReasonHeadsetOn
	ReasonMotionInterrupt
	ReasonServiceStopped
	ReasonSpeechFailed
	ReasonSpeechInterrupted
)

// String returns a stable snake_case name for the kind, used in logs.
func (k ReasonKind) String() string {
	switch k {
	case ReasonSuspended:
		return "suspended"
	case ReasonAppDisabled:
		return "app_disabled"
	case ReasonStringRequired:
		return "string_required"
	case ReasonStringFilter:
		return "string_filter"
	case ReasonEmptyMessage:
		return "empty_message"
	case ReasonIdenticalRepeat:
		return "identical_repeat"
	case ReasonQuietHours:
		return "quiet_hours"
	case ReasonSilentRinger:
		return "silent_ringer"
	case ReasonActiveCall:
		return "active_call"
	case ReasonScreenOff:
		return "screen_off"
	case ReasonScreenOn:
		return "screen_on"
	case ReasonHeadsetOff:
		return "headset_off"
	case ReasonHeadsetOn:
		return "headset_on"
	case ReasonMotionInterrupt:
		return "motion_interrupt"
	case ReasonServiceStopped:
		return "service_stopped"
	case ReasonSpeechFailed:
		return "speech_failed"
	case ReasonSpeechInterrupted:
		return "speech_interrupted"
	default:
		return "unknown"
	}
}

// IgnoreReason is a tagged cause. Only IdenticalRepeat uses WindowSeconds.
type IgnoreReason struct {
	Kind          ReasonKind
	WindowSeconds int
}

// Reason returns a parameterless reason of the given kind.
func Reason(kind ReasonKind) IgnoreReason {
	return IgnoreReason{Kind: kind}
}

// IdenticalRepeat returns the identical-repeat reason for the configured
// window. A window of zero or less means identical messages are never repeated.
func IdenticalRepeat(windowSeconds int) IgnoreReason {
	return IgnoreReason{Kind: ReasonIdenticalRepeat, WindowSeconds: windowSeconds}
}

// String renders the reason as user-facing text.
func (r IgnoreReason) String() string {
	switch r.Kind {
	case ReasonSuspended:
		return "Suspended"
	case ReasonAppDisabled:
		return "App is ignored"
	case ReasonStringRequired:
		return "Does not contain a required string"
	case ReasonStringFilter:
		return "Contains an ignored string"
	case ReasonEmptyMessage:
		return "Empty message"
	case ReasonIdenticalRepeat:
		if r.WindowSeconds <= 0 {
			return "Identical to the previous message"
		}
		return fmt.Sprintf("Identical to a message within %d seconds", r.WindowSeconds)
	case ReasonQuietHours:
		return "Quiet time"
	case ReasonSilentRinger:
		return "Silent or vibrate mode"
	case ReasonActiveCall:
		return "Phone call active"
	case ReasonScreenOff:
		return "Screen off"
	case ReasonScreenOn:
		return "Screen on"
	case ReasonHeadsetOff:
		return "Headset off"
	case ReasonHeadsetOn:
		return "Headset on"
	case ReasonMotionInterrupt:
		return "Shake"
	case ReasonServiceStopped:
		return "Service stopped"
	case ReasonSpeechFailed:
		return "Speech engine failed to accept the message"
	case ReasonSpeechInterrupted:
		return "Speech interrupted"
	default:
		return "Unknown"
	}
}

// IgnoreReasons is an insertion-ordered set keyed by kind. The zero value is
// ready to use. Reasons are only ever added.
type IgnoreReasons struct {
	items []IgnoreReason
}

// Add inserts r unless a reason of the same kind is already present.
// It reports whether the set changed.
func (s *IgnoreReasons) Add(r IgnoreReason) bool {
	if s.Has(r.Kind) {
		return false
	}
	s.items = append(s.items, r)
	return true
}

// AddAll inserts every reason of other, keeping order.
func (s *IgnoreReasons) AddAll(other []IgnoreReason) {
	for _, r := range other {
		s.Add(r)
	}
}

// Has reports whether a reason of the given kind is present.
func (s IgnoreReasons) Has(kind ReasonKind) bool {
	for _, r := range s.items {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Len returns the number of reasons.
func (s IgnoreReasons) Len() int { return len(s.items) }

// Empty reports whether no reason has been recorded.
func (s IgnoreReasons) Empty() bool { return len(s.items) == 0 }

// List returns a copy of the reasons in insertion order.
func (s IgnoreReasons) List() []IgnoreReason {
	out := make([]IgnoreReason, len(s.items))
	copy(out, s.items)
	return out
}

// String joins the rendered reasons with ", ".
func (s IgnoreReasons) String() string {
	return JoinReasons(s.items)
}

// JoinReasons renders a list of reasons as a comma separated string.
func JoinReasons(reasons []IgnoreReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
