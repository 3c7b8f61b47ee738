package domain

import "context"

// AppRegistry resolves notification sources to apps. Implementations can be
// in-memory, SQLite, or anything else that remembers the enabled flag.
type AppRegistry interface {
	LookupOrCreate(ctx context.Context, id string) (App, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	List(ctx context.Context) ([]App, error)
}

// Preferences exposes named configuration values. Reads are synchronous and
// must be cheap; a value that is missing or cannot be parsed yields def.
type Preferences interface {
	String(key, def string) string
	Int(key string, def int) int
	Float(key string, def float64) float64
	Bool(key string, def bool) bool
}

// SpeechListener receives the outcome of every utterance handed to a
// SpeechEngine. Calls may arrive on any goroutine.
type SpeechListener interface {
	OnCompleted(id string)
	OnInterrupted(id string)
	OnError(id string, err error)
}

// SpeechEngine speaks utterances. Speak only queues; the outcome is reported
// through the listener. StopAll interrupts the utterance in progress (which
// is reported as interrupted) and discards everything queued behind it.
type SpeechEngine interface {
	Ready() bool
	Speak(utterance, id string, stream Stream) error
	StopAll()
	SetListener(l SpeechListener)
}

// DeviceState answers current-value queries about the device.
type DeviceState interface {
	ScreenOn() bool
	HeadsetOn() bool
	RingerMode() RingerMode
	InCall() bool
}

// InterruptDetector reports "stop talking" requests (shake, voice). It is
// only armed while something is queued for speech.
type InterruptDetector interface {
	Enable()
	Disable()
	SetHandler(fn func())
}

// AudioFocus asks other audio to duck while an announcement plays.
type AudioFocus interface {
	Request()
	Abandon()
}

// History receives finished or updated records for display. Publishing the
// same ID again replaces the earlier entry.
type History interface {
	Publish(info NotificationInfo)
}

// StatusObserver is told whenever the running or suspended flag changes.
type StatusObserver interface {
	OnStatusChanged(status Status)
}

// StatusObserverFunc adapts a plain function to StatusObserver.
type StatusObserverFunc func(status Status)

// OnStatusChanged calls f.
func (f StatusObserverFunc) OnStatusChanged(status Status) { f(status) }
