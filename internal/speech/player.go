package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/voicenotify/internal/logger"
)

var _ Sink = (*Player)(nil)

// ErrInvalidWAV is returned for audio that is not RIFF/WAVE PCM.
var ErrInvalidWAV = errors.New("not a valid WAV file")

// wavFormat is the part of the fmt chunk playback cares about.
type wavFormat struct {
	channels   int
	sampleRate int
	bitDepth   int
}

// Player is a Sink on the system audio output. One clip plays at a time.
type Player struct {
	otoCtx *oto.Context
	log    *logger.Logger

	mu      sync.Mutex
	current *oto.Player
	stopped chan struct{} // closed by Stop to end the current clip
}

// NewPlayer opens the audio device. It fails when none is available.
func NewPlayer(log *logger.Logger) (*Player, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	log = log.With("player")
	log.Debug("audio device ready (%d Hz, %d ch)", SampleRate, ChannelCount)
	return &Player{otoCtx: otoCtx, log: log}, nil
}

// Play blocks until the clip ends or Stop is called. The clip must match
// the device format.
func (p *Player) Play(wav []byte, volume float64) error {
	pcm, format, err := extractPCM(wav)
	if err != nil {
		return err
	}
	if format != (wavFormat{}) && format != deviceFormat() {
		return fmt.Errorf("%w: %d Hz %d ch %d bit", ErrInvalidWAV, format.sampleRate, format.channels, format.bitDepth)
	}

	clip := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	clip.SetVolume(volume)
	stopped := make(chan struct{})

	p.mu.Lock()
	p.current, p.stopped = clip, stopped
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.current, p.stopped = nil, nil
		p.mu.Unlock()
	}()

	clip.Play()
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	for clip.IsPlaying() {
		select {
		case <-stopped:
			clip.Pause()
			return clip.Close()
		case <-poll.C:
		}
	}
	return clip.Close()
}

// Stop ends the clip in progress, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped == nil {
		return
	}
	select {
	case <-p.stopped:
	default:
		close(p.stopped)
		p.log.Debug("playback interrupted")
	}
}

func deviceFormat() wavFormat {
	return wavFormat{channels: ChannelCount, sampleRate: SampleRate, bitDepth: BitDepth}
}

// extractPCM walks the RIFF chunks and returns the data chunk together
// with the fmt chunk fields. A missing fmt chunk yields a zero format.
func extractPCM(wav []byte) ([]byte, wavFormat, error) {
	var format wavFormat
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, format, ErrInvalidWAV
	}

	for rest := wav[12:]; len(rest) >= 8; {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		body := rest[8:]
		if size > len(body) {
			size = len(body)
		}

		switch id {
		case "fmt ":
			if size >= 16 {
				format = wavFormat{
					channels:   int(binary.LittleEndian.Uint16(body[2:4])),
					sampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
					bitDepth:   int(binary.LittleEndian.Uint16(body[14:16])),
				}
			}
		case "data":
			return body[:size], format, nil
		}

		// Chunks are word aligned.
		next := size + size%2
		if next > len(body) {
			break
		}
		rest = body[next:]
	}
	return nil, format, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}
