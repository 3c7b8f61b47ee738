package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/format"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// OnNotificationPosted is the entry point for notification sources. Group
// summaries are dropped without a record when ignore_groups is on. Otherwise
// the app is resolved, the utterance formatted and the record handed to the
// actor. The returned record is a snapshot taken before any decision is
// made; nil means the event was dropped.
func (e *Engine) OnNotificationPosted(ctx context.Context, n domain.Notification) (*domain.NotificationInfo, error) {
	if !e.Running() {
		return nil, domain.ErrEngineStopped
	}
	if n.IsSummary && e.prefs.Bool(prefs.KeyIgnoreGroups, prefs.DefaultIgnoreGroups) {
		e.log.Debug("dropping group summary from %s", n.Package)
		return nil, nil
	}

	app, err := e.registry.LookupOrCreate(ctx, n.Package)
	if err != nil {
		return nil, fmt.Errorf("looking up app %s: %w", n.Package, err)
	}

	info := domain.NewNotificationInfo(newRecordID(), app, n, e.now())
	info.Utterance = format.Utterance(format.Fields{
		Label:    app.Label,
		Ticker:   n.Ticker,
		Subtext:  n.Subtext,
		Title:    n.Title,
		Body:     n.Body,
		InfoText: n.InfoText,
	}, e.formatOptions())

	snap := info.Snapshot()
	if err := e.send(ctx, notify{info: info}); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (e *Engine) formatOptions() format.Options {
	return format.Options{
		Template:     e.prefs.String(prefs.KeyTTSString, format.DefaultTemplate),
		Replacements: format.ParseReplacements(e.prefs.String(prefs.KeyTTSTextReplace, "")),
		MaxLength:    max(e.prefs.Int(prefs.KeyMaxLength, 0), 0),
	}
}

// handleNotify runs the content pass, records the event, and schedules
// delivery when it is clear. Actor only.
func (e *Engine) handleNotify(r *run, info *domain.NotificationInfo) {
	now := e.now()
	ok := e.eval.Content(info, e.suspended, e.dedup.Last(info.App.ID), now)
	e.publish(info)

	if !ok {
		e.log.Info("%s ignored: %s", info.App.Label, info.ReasonsText())
		return
	}

	e.dedup.Record(info.App.ID, info.Utterance, now)
	e.scheduleDelivery(r, info)

	if !e.device.ScreenOn() {
		if interval := e.repeatInterval(); interval > 0 {
			e.addRepeat(r, info, interval)
		}
	}
}

// scheduleDelivery arms the one-shot delay timer for info. A zero delay
// delivers inline. Actor only.
func (e *Engine) scheduleDelivery(r *run, info *domain.NotificationInfo) {
	d := scaled(e.prefs.Float(prefs.KeyTTSDelay, 0), time.Second)
	if d <= 0 {
		e.deliver(info)
		return
	}

	e.log.Debug("delaying %s by %s", info.ID, d)
	e.delays[info.ID] = time.AfterFunc(d, func() {
		r.post(timerFired{info: info})
	})
}

// handleTimerFired delivers a record whose delay has elapsed. Actor only.
func (e *Engine) handleTimerFired(info *domain.NotificationInfo) {
	delete(e.delays, info.ID)
	e.deliver(info)
}

// deliver runs the environment pass and dispatches on a clear result.
// Actor only.
func (e *Engine) deliver(info *domain.NotificationInfo) {
	if reasons := e.eval.Environment(info, e.suspended, e.now()); len(reasons) > 0 {
		e.log.Info("%s held back: %s", info.App.Label, domain.JoinReasons(reasons))
		e.publish(info)
		return
	}
	e.dispatch(info)
}
