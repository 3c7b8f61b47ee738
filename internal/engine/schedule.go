package engine

import (
	"context"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// repeatSchedule re-announces pending records while the screen stays off.
type repeatSchedule struct {
	interval   time.Duration
	pending    []*domain.NotificationInfo
	generation uint64
	cancel     context.CancelFunc
}

// maxWait caps delay and repeat preferences so the conversion to a
// Duration cannot overflow.
const maxWait = 24 * time.Hour

// scaled converts a preference in units of unit to a duration in
// [0, maxWait]. Non-positive and NaN values give zero.
func scaled(value float64, unit time.Duration) time.Duration {
	if !(value > 0) || unit <= 0 {
		return 0
	}
	if value >= float64(maxWait)/float64(unit) {
		return maxWait
	}
	return time.Duration(value * float64(unit))
}

// repeatInterval reads the repeat preference. Zero or less disables it.
func (e *Engine) repeatInterval() time.Duration {
	return scaled(e.prefs.Float(prefs.KeyTTSRepeat, 0), e.repeatUnit)
}

// addRepeat appends info to the schedule, starting it if needed. Actor only.
func (e *Engine) addRepeat(r *run, info *domain.NotificationInfo, interval time.Duration) {
	if e.repeat == nil {
		e.generation++
		ctx, cancel := context.WithCancel(r.ctx)
		e.repeat = &repeatSchedule{
			interval:   interval,
			generation: e.generation,
			cancel:     cancel,
		}
		go e.repeatLoop(ctx, r, interval, e.generation)
		e.log.Info("repeat schedule started (interval=%s)", interval)
	}
	e.repeat.pending = append(e.repeat.pending, info)
}

// repeatLoop ticks until cancelled. It only sends commands.
func (e *Engine) repeatLoop(ctx context.Context, r *run, interval time.Duration, generation uint64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.post(repeatTick{generation: generation}) {
				return
			}
		}
	}
}

// handleRepeatTick runs the environment pass once for the whole pending
// list. Ticks from a torn down schedule are ignored. Actor only.
func (e *Engine) handleRepeatTick(generation uint64) {
	if e.repeat == nil || e.repeat.generation != generation {
		return
	}
	if e.repeatInterval() <= 0 {
		e.log.Info("repeat disabled, tearing down schedule")
		e.teardownRepeat()
		return
	}

	reasons := e.eval.EnvironmentReasons(e.suspended, e.now())
	if len(reasons) > 0 {
		for _, info := range e.repeat.pending {
			info.IgnoreReasons.AddAll(reasons)
			info.Silenced = true
			e.publish(info)
		}
		return
	}

	e.log.Debug("repeating %d notifications", len(e.repeat.pending))
	for _, info := range e.repeat.pending {
		e.dispatch(info)
	}
}

// teardownRepeat cancels the ticker and forgets the pending list. Actor only.
func (e *Engine) teardownRepeat() {
	if e.repeat == nil {
		return
	}
	e.repeat.cancel()
	e.repeat = nil
	e.generation++
}
