package engine

import "github.com/hammamikhairi/voicenotify/internal/domain"

// handleSuspend sets or flips the suspended flag. Entering suspend marks
// everything queued and stops speech once. Persisting the flag is left to
// status observers. Actor only.
func (e *Engine) handleSuspend(value *bool) {
	next := !e.suspended
	if value != nil {
		next = *value
	}
	if next == e.suspended {
		return
	}
	e.suspended = next
	e.log.Info("suspended=%t", next)

	if next {
		e.stopQueued(domain.Reason(domain.ReasonSuspended))
	}
	e.broadcast(true)
}

// handleDeviceSignal reacts to device changes. Screen on ends the repeat
// schedule; screen off changes nothing until the next delivery. Any other
// signal re-runs the environment pass against speech in flight. Actor only.
func (e *Engine) handleDeviceSignal(sig domain.DeviceSignal) {
	e.log.Debug("device signal %s", sig)

	switch sig {
	case domain.SignalScreenOn:
		if e.device.ScreenOn() {
			e.teardownRepeat()
		}
	case domain.SignalScreenOff:
	default:
		if len(e.queue) == 0 {
			return
		}
		if reasons := e.eval.EnvironmentReasons(e.suspended, e.now()); len(reasons) > 0 {
			e.stopQueued(reasons...)
		}
	}
}

// handleMotionInterrupt silences whatever is being spoken. Actor only.
func (e *Engine) handleMotionInterrupt() {
	if len(e.queue) == 0 {
		return
	}
	e.log.Info("motion interrupt, stopping %d utterances", len(e.queue))
	for _, id := range e.queuedIDs() {
		info := e.queue[id]
		info.IgnoreReasons.Add(domain.Reason(domain.ReasonMotionInterrupt))
		info.Silenced = true
		e.publish(info)
	}
	e.stopAll()
}

// stopQueued tags every queued entry and asks the speech engine to stop.
// The entries are cleared when the interruption is reported back.
func (e *Engine) stopQueued(reasons ...domain.IgnoreReason) {
	if len(e.queue) == 0 {
		return
	}
	e.markQueued(reasons...)
	e.stopAll()
}
