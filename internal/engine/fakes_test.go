package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
	"github.com/hammamikhairi/voicenotify/internal/registry"
)

// --- speech ------------------------------------------------------------

type spoken struct {
	text string
	id   string
}

type fakeSpeech struct {
	mu       sync.Mutex
	ready    bool
	failNext error
	spoken   []spoken
	active   []string // ids not yet reported
	stops    int
	listener domain.SpeechListener
}

func newFakeSpeech() *fakeSpeech { return &fakeSpeech{ready: true} }

func (s *fakeSpeech) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *fakeSpeech) Speak(text, id string, _ domain.Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	s.spoken = append(s.spoken, spoken{text: text, id: id})
	s.active = append(s.active, id)
	return nil
}

// StopAll reports the utterance in progress as interrupted and drops the
// rest, like a real engine flushing its queue.
func (s *fakeSpeech) StopAll() {
	s.mu.Lock()
	s.stops++
	active := s.active
	s.active = nil
	l := s.listener
	s.mu.Unlock()

	if len(active) > 0 && l != nil {
		l.OnInterrupted(active[0])
	}
}

func (s *fakeSpeech) SetListener(l domain.SpeechListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *fakeSpeech) spokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spoken)
}

func (s *fakeSpeech) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// finish reports every active utterance as completed.
func (s *fakeSpeech) finish() {
	s.mu.Lock()
	active := s.active
	s.active = nil
	l := s.listener
	s.mu.Unlock()

	for _, id := range active {
		l.OnCompleted(id)
	}
}

func (s *fakeSpeech) fail(err error) {
	s.mu.Lock()
	active := s.active
	s.active = nil
	l := s.listener
	s.mu.Unlock()

	for _, id := range active {
		l.OnError(id, err)
	}
}

// --- detector & focus --------------------------------------------------

type fakeDetector struct {
	mu       sync.Mutex
	enabled  bool
	enables  int
	disables int
	handler  func()
}

func (d *fakeDetector) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = true
	d.enables++
}

func (d *fakeDetector) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = false
	d.disables++
}

func (d *fakeDetector) SetHandler(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = fn
}

func (d *fakeDetector) fire() {
	d.mu.Lock()
	fn := d.handler
	d.mu.Unlock()
	fn()
}

func (d *fakeDetector) counts() (enables, disables int, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enables, d.disables, d.enabled
}

type fakeFocus struct {
	mu       sync.Mutex
	requests int
	abandons int
}

func (f *fakeFocus) Request() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
}

func (f *fakeFocus) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandons++
}

func (f *fakeFocus) counts() (requests, abandons int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.abandons
}

// --- history -----------------------------------------------------------

type fakeHistory struct {
	mu      sync.Mutex
	latest  map[string]domain.NotificationInfo
	publish int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{latest: make(map[string]domain.NotificationInfo)}
}

func (h *fakeHistory) Publish(info domain.NotificationInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[info.ID] = info
	h.publish++
}

func (h *fakeHistory) get(id string) (domain.NotificationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	info, ok := h.latest[id]
	return info, ok
}

func (h *fakeHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.latest)
}

// --- device & clock ----------------------------------------------------

type fakeDevice struct {
	mu      sync.Mutex
	screen  bool
	headset bool
	ringer  domain.RingerMode
	call    bool
}

func (d *fakeDevice) ScreenOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

func (d *fakeDevice) HeadsetOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headset
}

func (d *fakeDevice) RingerMode() domain.RingerMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ringer
}

func (d *fakeDevice) InCall() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.call
}

func (d *fakeDevice) set(fn func(d *fakeDevice)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- harness -----------------------------------------------------------

type harness struct {
	eng      *Engine
	speech   *fakeSpeech
	detector *fakeDetector
	focus    *fakeFocus
	history  *fakeHistory
	device   *fakeDevice
	clock    *fakeClock
	prefs    *prefs.Store
	registry *registry.Memory
	ctx      context.Context
}

// newHarness builds a running engine at noon with the screen on. setup may
// adjust preferences before the engine starts.
func newHarness(t *testing.T, setup func(p *prefs.Store), opts ...Option) *harness {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	h := &harness{
		speech:   newFakeSpeech(),
		detector: &fakeDetector{},
		focus:    &fakeFocus{},
		history:  newFakeHistory(),
		device:   &fakeDevice{screen: true},
		clock:    &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)},
		prefs:    prefs.New(prefs.Defaults()),
		registry: registry.NewMemory(log),
		ctx:      context.Background(),
	}
	if setup != nil {
		setup(h.prefs)
	}

	all := append([]Option{
		WithClock(h.clock.Now),
		WithHistory(h.history),
		WithInterruptDetector(h.detector),
		WithAudioFocus(h.focus),
	}, opts...)
	h.eng = New(h.registry, h.prefs, h.speech, h.device, log, all...)
	h.eng.Start(h.ctx)
	t.Cleanup(h.eng.Stop)
	return h
}

func (h *harness) post(t *testing.T, pkg, body string) *domain.NotificationInfo {
	t.Helper()
	info, err := h.eng.OnNotificationPosted(h.ctx, domain.Notification{Package: pkg, Body: body})
	require.NoError(t, err)
	require.NotNil(t, info)
	return info
}

// sync waits until every command sent so far has been handled. The command
// channel is FIFO, so a status round trip is a barrier.
func (h *harness) sync(t *testing.T) domain.Status {
	t.Helper()
	s, err := h.eng.Status(h.ctx)
	require.NoError(t, err)
	return s
}

func (h *harness) record(t *testing.T, id string) domain.NotificationInfo {
	t.Helper()
	info, ok := h.history.get(id)
	require.True(t, ok, "record %s not published", id)
	return info
}
