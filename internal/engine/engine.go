// Package engine turns posted notifications into speech.
//
// All decision state (the per-app dedup table, the queue of utterances
// handed to the speech engine, the repeat schedule and the suspended flag)
// is owned by a single goroutine that drains a command channel. Timers,
// speech callbacks, device signals and the interrupt detector never touch
// that state directly; they only send commands.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/ignore"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRepeatUnit sets the duration of one unit of the repeat preference.
// The preference is in minutes; tests shrink it.
func WithRepeatUnit(d time.Duration) Option {
	return func(e *Engine) {
		e.repeatUnit = d
	}
}

// WithCommandBuffer sets the capacity of the command channel.
func WithCommandBuffer(n int) Option {
	return func(e *Engine) {
		e.bufferSize = n
	}
}

// WithHistory sets where records are published.
func WithHistory(h domain.History) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithAudioFocus sets the audio focus handle.
func WithAudioFocus(f domain.AudioFocus) Option {
	return func(e *Engine) {
		e.focus = f
	}
}

// WithInterruptDetector sets the detector armed while speech is queued.
func WithInterruptDetector(d domain.InterruptDetector) Option {
	return func(e *Engine) {
		e.detector = d
	}
}

// WithObserver registers a status observer.
func WithObserver(o domain.StatusObserver) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// Engine is the notification-to-speech actor. Create it with New, then call
// Start. It depends only on interfaces and is fully testable with fakes.
type Engine struct {
	registry domain.AppRegistry
	prefs    domain.Preferences
	speech   domain.SpeechEngine
	device   domain.DeviceState
	history  domain.History
	detector domain.InterruptDetector
	focus    domain.AudioFocus
	eval     *ignore.Evaluator
	log      *logger.Logger

	now        func() time.Time
	repeatUnit time.Duration
	bufferSize int

	mu        sync.Mutex
	run       *run
	observers []domain.StatusObserver

	// Actor state. Only the loop goroutine reads or writes these.
	suspended       bool
	dedup           *ignore.Dedup
	queue           map[int64]*domain.NotificationInfo
	lastUtteranceID int64
	stopWatermark   int64 // last utterance id handed out before the latest StopAll
	focusHeld       bool
	delays          map[string]*time.Timer
	repeat          *repeatSchedule
	generation      uint64
}

// run is one Start..Stop lifetime.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan command
	done   chan struct{}
}

// post delivers cmd unless the run has ended. Used by timers and tickers
// that belong to this run.
func (r *run) post(cmd command) bool {
	select {
	case r.cmds <- cmd:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// New creates an engine with the given dependencies and options.
func New(
	registry domain.AppRegistry,
	p domain.Preferences,
	speech domain.SpeechEngine,
	device domain.DeviceState,
	log *logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		registry:   registry,
		prefs:      p,
		speech:     speech,
		device:     device,
		history:    noopHistory{},
		detector:   noopDetector{},
		focus:      noopFocus{},
		log:        log.With("engine"),
		now:        time.Now,
		repeatUnit: time.Minute,
		bufferSize: 64,
		dedup:      ignore.NewDedup(),
		queue:      make(map[int64]*domain.NotificationInfo),
		delays:     make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.eval = ignore.New(p, device, e.log)

	e.speech.SetListener(listener{e})
	e.detector.SetHandler(e.MotionInterrupt)
	return e
}

// AddObserver registers a status observer. It is called on its own
// goroutine with a snapshot each time the running or suspended flag changes.
func (e *Engine) AddObserver(o domain.StatusObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Start launches the actor loop. Non-blocking. The initial suspended flag
// is read from the preference store.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.run != nil {
		e.log.Warn("engine already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	r := &run{
		ctx:    childCtx,
		cancel: cancel,
		cmds:   make(chan command, e.bufferSize),
		done:   make(chan struct{}),
	}
	e.run = r
	e.suspended = e.prefs.Bool(prefs.KeyIsSuspended, prefs.DefaultIsSuspended)

	go e.loop(r)
	e.log.Info("engine started (suspended=%t)", e.suspended)
}

// Stop cancels the actor loop and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	r := e.run
	e.run = nil
	e.mu.Unlock()

	if r == nil {
		return
	}
	r.cancel()
	<-r.done
	e.log.Info("engine stopped")
}

func (e *Engine) current() *run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run
}

// Running reports whether Start has been called without a matching Stop.
func (e *Engine) Running() bool {
	return e.current() != nil
}

// Status returns a snapshot of the engine flags and queue sizes.
func (e *Engine) Status(ctx context.Context) (domain.Status, error) {
	r := e.current()
	if r == nil {
		return domain.Status{}, domain.ErrEngineStopped
	}
	reply := make(chan domain.Status, 1)
	if err := e.send(ctx, statusQuery{reply: reply}); err != nil {
		return domain.Status{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return domain.Status{}, domain.ErrEngineStopped
	case <-ctx.Done():
		return domain.Status{}, ctx.Err()
	}
}

// Suspended reports the suspended flag.
func (e *Engine) Suspended(ctx context.Context) (bool, error) {
	s, err := e.Status(ctx)
	return s.Suspended, err
}

// ToggleSuspend flips the suspended flag.
func (e *Engine) ToggleSuspend(ctx context.Context) error {
	return e.send(ctx, suspendToggled{})
}

// SetSuspended sets the suspended flag.
func (e *Engine) SetSuspended(ctx context.Context, suspended bool) error {
	return e.send(ctx, suspendToggled{value: &suspended})
}

// DeviceChanged reports a device state change. Safe to call from any
// goroutine; it is dropped if the engine is not running.
func (e *Engine) DeviceChanged(signal domain.DeviceSignal) {
	e.trySend(deviceStateChanged{signal: signal})
}

// MotionInterrupt stops everything queued for speech. It is installed as
// the interrupt detector's handler.
func (e *Engine) MotionInterrupt() {
	e.trySend(motionInterrupt{})
}

// send delivers cmd to the current run. It fails with ErrEngineStopped if
// the engine is not running or stops while waiting.
func (e *Engine) send(ctx context.Context, cmd command) error {
	r := e.current()
	if r == nil {
		return domain.ErrEngineStopped
	}

	select {
	case r.cmds <- cmd:
		return nil
	case <-r.ctx.Done():
		return domain.ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// trySend is send for callbacks with no caller context.
func (e *Engine) trySend(cmd command) {
	if err := e.send(context.Background(), cmd); err != nil {
		e.log.Debug("dropping %T: %v", cmd, err)
	}
}

// loop is the actor. It owns all decision state until r is cancelled.
func (e *Engine) loop(r *run) {
	defer close(r.done)

	e.broadcast(true)
	defer e.shutdown()

	for {
		select {
		case <-r.ctx.Done():
			return
		case cmd := <-r.cmds:
			e.handle(r, cmd)
		}
	}
}

func (e *Engine) handle(r *run, cmd command) {
	switch c := cmd.(type) {
	case notify:
		e.handleNotify(r, c.info)
	case timerFired:
		e.handleTimerFired(c.info)
	case repeatTick:
		e.handleRepeatTick(c.generation)
	case ttsCompleted:
		e.handleCompleted(c.id)
	case ttsInterrupted:
		e.handleInterrupted(c.id)
	case ttsError:
		e.handleError(c.id, c.err)
	case deviceStateChanged:
		e.handleDeviceSignal(c.signal)
	case suspendToggled:
		e.handleSuspend(c.value)
	case motionInterrupt:
		e.handleMotionInterrupt()
	case statusQuery:
		c.reply <- e.status(true)
	default:
		e.log.Warn("unknown command %T", cmd)
	}
}

// shutdown releases everything the actor holds. Runs on the loop goroutine
// after the run context is cancelled.
func (e *Engine) shutdown() {
	for id, t := range e.delays {
		t.Stop()
		delete(e.delays, id)
	}
	e.teardownRepeat()

	if len(e.queue) > 0 {
		for _, info := range e.queue {
			info.IgnoreReasons.Add(domain.Reason(domain.ReasonServiceStopped))
			info.Silenced = true
			e.publish(info)
		}
		e.stopAll()
		clear(e.queue)
		e.onQueueEmpty()
	}

	e.broadcast(false)
}

// status snapshots the actor state. Actor only.
func (e *Engine) status(running bool) domain.Status {
	s := domain.Status{
		Running:   running,
		Suspended: e.suspended,
		Queued:    len(e.queue),
		Delayed:   len(e.delays),
	}
	if e.repeat != nil {
		s.Repeating = len(e.repeat.pending)
	}
	return s
}

// broadcast fans the current status out to observers, each on its own
// goroutine. Actor only.
func (e *Engine) broadcast(running bool) {
	snap := e.status(running)

	e.mu.Lock()
	observers := make([]domain.StatusObserver, len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, o := range observers {
		go o.OnStatusChanged(snap)
	}
}

// publish hands a snapshot of info to the history log. Actor only.
func (e *Engine) publish(info *domain.NotificationInfo) {
	e.history.Publish(info.Snapshot())
}

type noopHistory struct{}

func (noopHistory) Publish(domain.NotificationInfo) {}

type noopDetector struct{}

func (noopDetector) Enable()           {}
func (noopDetector) Disable()          {}
func (noopDetector) SetHandler(func()) {}

type noopFocus struct{}

func (noopFocus) Request() {}
func (noopFocus) Abandon() {}
