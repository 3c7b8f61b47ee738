// Package device holds the current device state and reports changes as
// signals.
package device

import (
	"sync"

	"github.com/hammamikhairi/voicenotify/internal/domain"
)

// Compile-time interface check.
var _ domain.DeviceState = (*State)(nil)

// State is an in-process device state holder. Setters fire the registered
// handler only when a value actually changes. Safe for concurrent use.
type State struct {
	mu        sync.RWMutex
	screen    bool
	headset   bool
	bluetooth bool
	ringer    domain.RingerMode
	inCall    bool
	handler   func(domain.DeviceSignal)
}

// New returns a state with the screen on, no headset, normal ringer and no
// call.
func New() *State {
	return &State{screen: true}
}

// OnChange registers the signal handler. It is called outside the lock.
func (s *State) OnChange(fn func(domain.DeviceSignal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

func (s *State) ScreenOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// HeadsetOn reports a wired headset or bluetooth audio device.
func (s *State) HeadsetOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headset || s.bluetooth
}

func (s *State) RingerMode() domain.RingerMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ringer
}

func (s *State) InCall() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inCall
}

// SetScreen records the screen state.
func (s *State) SetScreen(on bool) {
	sig := domain.SignalScreenOff
	if on {
		sig = domain.SignalScreenOn
	}
	s.update(func() bool {
		changed := s.screen != on
		s.screen = on
		return changed
	}, sig)
}

// SetHeadset records a wired headset plug or unplug.
func (s *State) SetHeadset(on bool) {
	sig := domain.SignalHeadsetDisconnected
	if on {
		sig = domain.SignalHeadsetConnected
	}
	s.update(func() bool {
		changed := s.headset != on
		s.headset = on
		return changed
	}, sig)
}

// SetBluetooth records a bluetooth audio connect or disconnect.
func (s *State) SetBluetooth(on bool) {
	sig := domain.SignalBluetoothDisconnected
	if on {
		sig = domain.SignalBluetoothConnected
	}
	s.update(func() bool {
		changed := s.bluetooth != on
		s.bluetooth = on
		return changed
	}, sig)
}

// SetRinger records the ringer mode.
func (s *State) SetRinger(mode domain.RingerMode) {
	s.update(func() bool {
		changed := s.ringer != mode
		s.ringer = mode
		return changed
	}, domain.SignalRingerModeChanged)
}

// SetInCall records whether a call is active.
func (s *State) SetInCall(active bool) {
	s.update(func() bool {
		changed := s.inCall != active
		s.inCall = active
		return changed
	}, domain.SignalCallStateChanged)
}

func (s *State) update(apply func() bool, sig domain.DeviceSignal) {
	s.mu.Lock()
	changed := apply()
	fn := s.handler
	s.mu.Unlock()

	if changed && fn != nil {
		fn(sig)
	}
}
