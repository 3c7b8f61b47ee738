// Package interrupt provides "stop talking" detectors. They are armed by
// the engine only while speech is queued and call their handler when the
// user asks for silence.
package interrupt

import (
	"math"
	"sync"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// shakeCount is the number of consecutive over-threshold samples that make
// a shake.
const shakeCount = 2

// Compile-time interface check.
var _ domain.InterruptDetector = (*Shake)(nil)

// Shake detects a shake from a stream of accelerometer samples. Samples are
// pushed with Feed; they are ignored while the detector is disabled.
type Shake struct {
	prefs domain.Preferences
	log   *logger.Logger

	mu        sync.Mutex
	enabled   bool
	threshold float64
	last      float64
	over      int
	handler   func()
}

// NewShake creates a disabled shake detector. The sensitivity is read from
// the shake_threshold preference each time it is enabled.
func NewShake(p domain.Preferences, log *logger.Logger) *Shake {
	return &Shake{prefs: p, log: log.With("shake")}
}

// SetHandler installs the function called on each detected shake.
func (s *Shake) SetHandler(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Enable arms the detector. A non-positive threshold leaves it disarmed.
func (s *Shake) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler == nil {
		return
	}
	threshold := s.prefs.Float(prefs.KeyShakeThreshold, prefs.DefaultShakeThreshold)
	if threshold <= 0 {
		s.log.Debug("shake disabled by threshold %v", threshold)
		return
	}
	s.threshold = threshold / 10
	s.enabled = true
}

// Disable disarms the detector and forgets the previous sample.
func (s *Shake) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.last = 0
	s.over = 0
}

// Enabled reports whether the detector is armed.
func (s *Shake) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Feed pushes one accelerometer sample in m/s². It returns true when the
// sample completed a shake and the handler was called.
func (s *Shake) Feed(x, y, z float64) bool {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return false
	}

	current := math.Sqrt(x*x + y*y + z*z)
	delta := current - s.last
	fire := false
	if s.last != 0 && math.Abs(delta) > s.threshold {
		s.over++
		fire = s.over >= shakeCount
	} else {
		s.over = 0
	}
	s.last = current
	fn := s.handler
	s.mu.Unlock()

	if fire {
		s.log.Debug("shake detected (delta=%.2f)", delta)
		fn()
	}
	return fire
}
