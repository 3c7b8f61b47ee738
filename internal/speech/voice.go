package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// ErrEmptyUtterance is returned by Speak for blank text.
var ErrEmptyUtterance = errors.New("empty utterance")

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// Sink plays WAV audio. Play blocks until playback finishes or Stop is
// called.
type Sink interface {
	Play(wav []byte, volume float64) error
	Stop()
}

// VoiceOption configures the Voice.
type VoiceOption func(*Voice)

// WithQueueSize sets the internal notification channel capacity.
func WithQueueSize(n int) VoiceOption {
	return func(v *Voice) {
		v.notify = make(chan struct{}, n)
	}
}

// WithChunkSize sets the approximate max character count per TTS chunk.
// Longer text is split at sentence boundaries and synthesized in parallel
// so playback doesn't stall between sentences.
func WithChunkSize(n int) VoiceOption {
	return func(v *Voice) {
		v.chunkSize = n
	}
}

// WithCacheDir sets the filesystem directory used for persistent audio
// caching. If empty, the disk layer is disabled.
func WithCacheDir(dir string) VoiceOption {
	return func(v *Voice) {
		v.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Even when false, existing on-disk entries are still read.
func WithDiskWrite(enabled bool) VoiceOption {
	return func(v *Voice) {
		v.diskWrite = enabled
	}
}

// WithCacheEntries bounds the in-memory cache.
func WithCacheEntries(n int) VoiceOption {
	return func(v *Voice) {
		v.cacheEntries = n
	}
}

// Compile-time interface check.
var _ domain.SpeechEngine = (*Voice)(nil)

// request is one utterance waiting to be spoken.
type request struct {
	text     string
	id       string
	stream   domain.Stream
	queuedAt time.Time
}

// Voice speaks utterances one at a time through a single pipeline:
// queue -> chunk -> synthesize (parallel) -> play (sequential). Every
// utterance handed to Speak ends in exactly one listener callback, except
// those discarded from the queue by StopAll.
type Voice struct {
	tts   Synthesizer
	sink  Sink
	log   *logger.Logger
	cache *AudioCache

	mu          sync.Mutex
	queue       []request
	notify      chan struct{}
	current     string // id being spoken, empty when idle
	interrupted bool   // set by StopAll, checked between chunks
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	listener    domain.SpeechListener

	chunkSize    int
	cacheDir     string
	diskWrite    bool
	cacheEntries int
}

// NewVoice creates a speech engine with the given synthesizer and sink.
func NewVoice(tts Synthesizer, sink Sink, log *logger.Logger, opts ...VoiceOption) *Voice {
	v := &Voice{
		tts:          tts,
		sink:         sink,
		log:          log.With("voice"),
		notify:       make(chan struct{}, 32),
		chunkSize:    200,
		diskWrite:    true,
		cacheEntries: DefaultCacheEntries,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.cache = NewAudioCache(tts.Voice(), v.cacheDir, v.diskWrite, v.cacheEntries, v.log)
	return v
}

// SetListener installs the outcome listener.
func (v *Voice) SetListener(l domain.SpeechListener) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listener = l
}

// Ready reports whether the engine has been started and not stopped.
func (v *Voice) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Speak queues text under id. Non-blocking.
func (v *Voice) Speak(text, id string, stream domain.Stream) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyUtterance
	}

	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		return domain.ErrEngineUnavailable
	}
	v.queue = append(v.queue, request{
		text:     text,
		id:       id,
		stream:   stream,
		queuedAt: time.Now(),
	})
	qLen := len(v.queue)
	v.mu.Unlock()

	v.log.Debug("queued %s (queue_len=%d): %s", id, qLen, truncate(text, 60))

	select {
	case v.notify <- struct{}{}:
	default: // already signaled
	}
	return nil
}

// StopAll interrupts the utterance being spoken and discards the queue.
// The interrupted utterance is reported through OnInterrupted. When nothing
// is playing yet but the queue is not empty, the head of the queue is
// reported instead so the caller always learns that its queue was flushed.
func (v *Voice) StopAll() {
	v.mu.Lock()
	dropped := v.queue
	v.queue = nil
	report := ""
	if v.current != "" {
		v.interrupted = true
	} else if len(dropped) > 0 {
		report = dropped[0].id
	}
	l := v.listener
	v.mu.Unlock()

	v.sink.Stop()
	v.log.Debug("stop all: %d queued dropped", len(dropped))

	if report != "" && l != nil {
		l.OnInterrupted(report)
	}
}

// Start begins the processing goroutine. Non-blocking.
func (v *Voice) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan struct{})
	v.running = true
	go v.processLoop(ctx, v.done)
	v.log.Info("voice started (%s)", v.tts.Voice())
}

// Stop halts playback and waits for the processing goroutine to exit.
func (v *Voice) Stop() {
	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		return
	}
	v.running = false
	cancel, done := v.cancel, v.done
	v.mu.Unlock()

	v.StopAll()
	cancel()
	<-done
	v.log.Info("voice stopped")
}

// Cache returns the audio cache. Useful for stats.
func (v *Voice) Cache() *AudioCache { return v.cache }

func (v *Voice) processLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.notify:
			v.drain(ctx)
		}
	}
}

// drain speaks queued items in FIFO order until the queue is empty.
func (v *Voice) drain(ctx context.Context) {
	for ctx.Err() == nil {
		req, ok := v.dequeue()
		if !ok {
			return
		}

		err := v.process(ctx, req)

		v.mu.Lock()
		interrupted := v.interrupted
		v.current = ""
		v.interrupted = false
		l := v.listener
		v.mu.Unlock()

		if l == nil {
			continue
		}
		switch {
		case interrupted || ctx.Err() != nil:
			l.OnInterrupted(req.id)
		case err != nil:
			l.OnError(req.id, err)
		default:
			l.OnCompleted(req.id)
		}
	}
}

// dequeue pops the head of the queue and marks it current.
func (v *Voice) dequeue() (request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.queue) == 0 {
		return request{}, false
	}
	req := v.queue[0]
	v.queue = v.queue[1:]
	v.current = req.id
	v.interrupted = false
	return req, true
}

func (v *Voice) aborted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.interrupted
}

// process synthesizes and plays one request. Chunks that fail to synthesize
// are skipped; the request fails only when nothing could be played.
func (v *Voice) process(ctx context.Context, req request) error {
	waited := time.Since(req.queuedAt).Round(time.Millisecond)
	v.log.Debug("speaking %s (waited=%s): %s", req.id, waited, truncate(req.text, 60))

	chunks := splitChunks(req.text, v.chunkSize)
	slots := v.synthesizeAll(ctx, chunks)

	volume := StreamVolume(req.stream)
	played := 0
	var firstErr error
	for i, audio := range slots {
		if audio.err != nil {
			if firstErr == nil {
				firstErr = audio.err
			}
			v.log.Debug("skipping chunk %d: %v", i, audio.err)
			continue
		}
		if ctx.Err() != nil || v.aborted() {
			return nil
		}
		if err := v.sink.Play(audio.wav, volume); err != nil {
			return fmt.Errorf("playback: %w", err)
		}
		played++
	}

	if played == 0 && firstErr != nil {
		return fmt.Errorf("synthesis: %w", firstErr)
	}
	return nil
}

type synthResult struct {
	wav []byte
	err error
}

// synthesizeAll synthesizes every chunk in parallel and returns the results
// in order.
func (v *Voice) synthesizeAll(ctx context.Context, chunks []string) []synthResult {
	slots := make([]synthResult, len(chunks))
	if len(chunks) == 1 {
		wav, err := v.synthesizeWithCache(ctx, chunks[0])
		slots[0] = synthResult{wav: wav, err: err}
		return slots
	}

	v.log.Debug("split into %d chunks for parallel synthesis", len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			wav, err := v.synthesizeWithCache(ctx, text)
			slots[idx] = synthResult{wav: wav, err: err}
		}(i, chunk)
	}
	wg.Wait()
	return slots
}

// synthesizeWithCache checks the cache first, otherwise calls the
// synthesizer and stores the result.
func (v *Voice) synthesizeWithCache(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := v.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	v.cache.Put(text, audio)
	return audio, nil
}

// splitChunks breaks text into sentence-boundary chunks of approximately
// size characters. A size of 0 or short text yields a single chunk.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if c := strings.TrimSpace(current.String()); c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
	}

	for _, s := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(s) > size {
			flush()
		}
		current.WriteString(s)
	}
	flush()
	return chunks
}

// splitSentences splits text at sentence boundaries (. ! ?) keeping the
// punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
