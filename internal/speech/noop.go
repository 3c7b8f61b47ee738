// Package speech implements speech engines: an Azure-backed voice that plays
// through the system audio device, and a silent engine for headless runs.
package speech

import (
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// Compile-time interface check.
var _ domain.SpeechEngine = (*NoOp)(nil)

// NoOp is a speech engine that speaks nothing. Each utterance "plays" for
// a duration proportional to its length and is then reported completed.
type NoOp struct {
	log      *logger.Logger
	perRune  time.Duration
	mu       sync.Mutex
	pending  map[string]*time.Timer
	order    []string
	listener domain.SpeechListener
}

// NewNoOp creates a silent engine. perRune is the simulated speaking time
// per character; zero completes utterances immediately.
func NewNoOp(log *logger.Logger, perRune time.Duration) *NoOp {
	return &NoOp{
		log:     log.With("speech"),
		perRune: perRune,
		pending: make(map[string]*time.Timer),
	}
}

// Ready is always true.
func (n *NoOp) Ready() bool { return true }

// SetListener installs the outcome listener.
func (n *NoOp) SetListener(l domain.SpeechListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listener = l
}

// Speak schedules a completion callback for id.
func (n *NoOp) Speak(text, id string, _ domain.Stream) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyUtterance
	}
	n.log.Debug("would say %s: %q", id, text)

	n.mu.Lock()
	defer n.mu.Unlock()
	d := time.Duration(len([]rune(text))) * n.perRune
	n.pending[id] = time.AfterFunc(d, func() { n.complete(id) })
	n.order = append(n.order, id)
	return nil
}

func (n *NoOp) complete(id string) {
	n.mu.Lock()
	if _, ok := n.pending[id]; !ok {
		n.mu.Unlock()
		return
	}
	n.forgetLocked(id)
	l := n.listener
	n.mu.Unlock()

	if l != nil {
		l.OnCompleted(id)
	}
}

// StopAll cancels every pending utterance and reports the oldest one as
// interrupted.
func (n *NoOp) StopAll() {
	n.mu.Lock()
	var head string
	if len(n.order) > 0 {
		head = n.order[0]
	}
	for _, t := range n.pending {
		t.Stop()
	}
	clear(n.pending)
	n.order = nil
	l := n.listener
	n.mu.Unlock()

	if head != "" && l != nil {
		l.OnInterrupted(head)
	}
}

// forgetLocked removes id from the pending set. Caller holds n.mu.
func (n *NoOp) forgetLocked(id string) {
	delete(n.pending, id)
	for i, o := range n.order {
		if o == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}
