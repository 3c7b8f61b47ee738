package engine

import (
	"sort"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// dispatch hands info to the speech engine and tracks it until the engine
// reports an outcome. Actor only.
func (e *Engine) dispatch(info *domain.NotificationInfo) {
	if !e.speech.Ready() {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonServiceStopped))
		e.log.Warn("speech engine not ready, dropping %s", info.ID)
		e.publish(info)
		return
	}

	if len(e.queue) == 0 {
		e.onQueueFilled()
	}

	id := e.nextUtteranceID()
	e.queue[id] = info
	stream := domain.Stream(e.prefs.Int(prefs.KeyTTSStream, int(domain.StreamMusic)))

	if err := e.speech.Speak(info.Utterance, formatUtteranceID(id), stream); err != nil {
		e.log.Error("speaking %s: %v", info.ID, err)
		e.remove(id)
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonSpeechFailed))
		e.publish(info)
		return
	}
	e.log.Debug("queued utterance %d for %s", id, info.App.Label)
}

// remove drops a queue entry and runs the empty transition if it was the
// last one. Actor only.
func (e *Engine) remove(id int64) (*domain.NotificationInfo, bool) {
	info, ok := e.queue[id]
	if !ok {
		return nil, false
	}
	delete(e.queue, id)
	if len(e.queue) == 0 {
		e.onQueueEmpty()
	}
	return info, true
}

// onQueueFilled arms the interrupt detector and grabs audio focus.
func (e *Engine) onQueueFilled() {
	e.detector.Enable()
	if e.prefs.Bool(prefs.KeyAudioFocus, prefs.DefaultAudioFocus) {
		e.focus.Request()
		e.focusHeld = true
	}
}

// onQueueEmpty undoes onQueueFilled.
func (e *Engine) onQueueEmpty() {
	e.detector.Disable()
	if e.focusHeld {
		e.focus.Abandon()
		e.focusHeld = false
	}
}

func (e *Engine) handleCompleted(rawID string) {
	id, ok := parseUtteranceID(rawID)
	if !ok {
		e.log.Warn("completion for unknown utterance %q", rawID)
		return
	}
	if _, ok := e.remove(id); !ok {
		e.log.Debug("completion for untracked utterance %d", id)
	}
}

// stopAll asks the speech engine to flush and remembers what it held at
// that moment. Actor only.
func (e *Engine) stopAll() {
	e.stopWatermark = e.lastUtteranceID
	e.speech.StopAll()
}

// handleInterrupted surfaces the reason that stopped speech. When the
// utterance was flushed by our own StopAll, every entry dispatched up to
// that call went with it and is cleared too. Entries dispatched after the
// stop are still being spoken and stay queued.
func (e *Engine) handleInterrupted(rawID string) {
	id, ok := parseUtteranceID(rawID)
	if !ok {
		return
	}
	info, ok := e.queue[id]
	if !ok {
		e.log.Debug("interruption for untracked utterance %d", id)
		return
	}
	e.silence(info)

	if id <= e.stopWatermark {
		for _, other := range e.queuedIDs() {
			if other == id || other > e.stopWatermark {
				continue
			}
			e.silence(e.queue[other])
			delete(e.queue, other)
		}
	}
	e.remove(id)
}

func (e *Engine) silence(info *domain.NotificationInfo) {
	info.Silenced = true
	if info.IgnoreReasons.Empty() {
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonSpeechInterrupted))
	}
	e.log.Info("%s silenced: %s", info.App.Label, info.ReasonsText())
	e.publish(info)
}

func (e *Engine) handleError(rawID string, err error) {
	e.log.Error("speech engine error on utterance %s: %v", rawID, err)
	e.handleCompleted(rawID)
}

// markQueued adds reasons to every queued entry, in dispatch order.
func (e *Engine) markQueued(reasons ...domain.IgnoreReason) {
	for _, id := range e.queuedIDs() {
		e.queue[id].IgnoreReasons.AddAll(reasons)
	}
}

func (e *Engine) queuedIDs() []int64 {
	ids := make([]int64, 0, len(e.queue))
	for id := range e.queue {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// listener adapts speech callbacks to actor commands.
type listener struct{ e *Engine }

var _ domain.SpeechListener = listener{}

func (l listener) OnCompleted(id string)   { l.deliver(ttsCompleted{id: id}) }
func (l listener) OnInterrupted(id string) { l.deliver(ttsInterrupted{id: id}) }
func (l listener) OnError(id string, err error) {
	l.deliver(ttsError{id: id, err: err})
}

// deliver never blocks the caller. Speech engines may report from inside
// StopAll, which the actor calls itself, so a full buffer falls back to a
// goroutine.
func (l listener) deliver(cmd command) {
	r := l.e.current()
	if r == nil {
		return
	}
	select {
	case r.cmds <- cmd:
	default:
		go r.post(cmd)
	}
}
