package interrupt

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// Default stop phrases. Any of these anywhere in a transcription
// (case-insensitive, whole words) fires the interrupt.
var defaultStopPhrases = []string{
	"stop",
	"quiet",
	"shut up",
	"be quiet",
	"silence",
	"enough",
}

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)" or "[laughter]".
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z_][a-zA-Z_\s]*[\)\]]`)

var nonWord = regexp.MustCompile(`[^a-z0-9']+`)

// Recorder records for d and returns the transcription, or "" on failure
// or cancellation.
type Recorder func(ctx context.Context, d time.Duration) string

// VoiceOption configures the Voice detector.
type VoiceOption func(*Voice)

// WithClipDuration sets how long each probe recording lasts. Shorter is
// more responsive but costs more CPU.
func WithClipDuration(d time.Duration) VoiceOption {
	return func(v *Voice) { v.clip = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) VoiceOption {
	return func(v *Voice) { v.tempDir = dir }
}

// WithStopPhrases overrides the default stop phrases.
func WithStopPhrases(phrases ...string) VoiceOption {
	return func(v *Voice) { v.phrases = phrases }
}

// WithRecorder replaces the whisper recorder.
func WithRecorder(r Recorder) VoiceOption {
	return func(v *Voice) { v.record = r }
}

// Compile-time interface check.
var _ domain.InterruptDetector = (*Voice)(nil)

// Voice listens to the microphone with a local Whisper model while armed
// and fires its handler when a stop phrase is heard.
type Voice struct {
	whisperBin string
	modelPath  string
	tempDir    string
	clip       time.Duration
	phrases    []string
	record     Recorder
	log        *logger.Logger

	mu      sync.Mutex
	handler func()
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewVoice creates a disarmed voice detector.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewVoice(whisperBin, modelPath string, log *logger.Logger, opts ...VoiceOption) *Voice {
	v := &Voice{
		whisperBin: whisperBin,
		modelPath:  modelPath,
		tempDir:    ".voicenotify-stt",
		clip:       2 * time.Second,
		phrases:    defaultStopPhrases,
		log:        log.With("ear"),
	}
	v.record = v.recordClip
	for _, opt := range opts {
		opt(v)
	}

	if _, err := exec.LookPath(v.whisperBin); err != nil {
		v.log.Error("whisper binary %q not found in PATH: %v", v.whisperBin, err)
	}
	return v
}

// SetHandler installs the function called when a stop phrase is heard.
func (v *Voice) SetHandler(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handler = fn
}

// Enable starts the listening loop. It is a no-op when already armed or
// when no handler is set.
func (v *Voice) Enable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil || v.handler == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.listen(ctx, v.done, v.handler)
	v.log.Debug("listening for stop phrases")
}

// Disable stops the listening loop. It does not wait for the current clip
// to finish transcribing.
func (v *Voice) Disable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel == nil {
		return
	}
	v.cancel()
	v.cancel = nil
	v.log.Debug("stopped listening")
}

// Wait blocks until the last listening loop has exited.
func (v *Voice) Wait() {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (v *Voice) listen(ctx context.Context, done chan struct{}, fire func()) {
	defer close(done)
	for ctx.Err() == nil {
		text := cleanTranscription(v.record(ctx, v.clip))
		if text == "" || ctx.Err() != nil {
			continue
		}
		v.log.Debug("heard %q", text)
		if matchesStopPhrase(text, v.phrases) {
			v.log.Info("stop phrase in %q", text)
			fire()
			return
		}
	}
}

// recordClip does one whisper recording cycle.
func (v *Voice) recordClip(ctx context.Context, d time.Duration) string {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := v.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(v.whisperBin, v.modelPath, v.tempDir, "wav", callback, verbose)
	if err != nil {
		v.log.Error("transcriber init failed: %v", err)
		sleep(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		v.log.Error("recording start failed: %v", err)
		sleep(ctx, 2*time.Second)
		return ""
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	t.Stop()
	wg.Wait()

	if ctx.Err() != nil {
		return ""
	}
	return result
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// matchesStopPhrase reports whether text contains any phrase as whole
// words.
func matchesStopPhrase(text string, phrases []string) bool {
	words := " " + strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(text), " ")) + " "
	for _, p := range phrases {
		p = strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(p), " "))
		if p != "" && strings.Contains(words, " "+p+" ") {
			return true
		}
	}
	return false
}

// hallucinations are transcriptions whisper produces from silence.
var hallucinations = []string{
	"...",
	"you",
	"thank you.",
	"thanks for watching!",
	"thank you for watching.",
	"bye.",
	"the end.",
}

// cleanTranscription normalizes whitespace, strips whisper annotations such
// as "[BLANK_AUDIO]" and timestamp prefixes, and drops known
// hallucinations.
func cleanTranscription(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 && strings.Contains(s[:idx], "-->") {
			s = strings.TrimSpace(s[idx+1:])
		}
	}

	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}
	return s
}
