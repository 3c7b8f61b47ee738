// Package source reads input events as JSON lines. Each line is validated
// against an embedded JSON schema before it is decoded.
//
//	{"type":"notification","package":"com.mail","title":"Ann","body":"Lunch?"}
//	{"type":"screen","on":false}
//	{"type":"ringer","mode":"silent"}
//	{"type":"suspend"}
//	{"type":"shake","x":0.1,"y":9.6,"z":14.2}
package source

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kaptinlin/jsonschema"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

//go:embed schema/event.schema.json
var eventSchema []byte

// Kind names an event type.
type Kind string

const (
	KindNotification Kind = "notification"
	KindScreen       Kind = "screen"
	KindHeadset      Kind = "headset"
	KindBluetooth    Kind = "bluetooth"
	KindRinger       Kind = "ringer"
	KindCall         Kind = "call"
	KindSuspend      Kind = "suspend"
	KindShake        Kind = "shake"
	KindStatus       Kind = "status"
)

// Event is one decoded input line. Only the fields of its kind are set.
type Event struct {
	Kind    Kind    `json:"type"`
	Package string  `json:"package,omitempty"`
	Ticker  string  `json:"ticker,omitempty"`
	Subtext string  `json:"subtext,omitempty"`
	Title   string  `json:"title,omitempty"`
	Body    string  `json:"body,omitempty"`
	Info    string  `json:"info,omitempty"`
	Summary bool    `json:"summary,omitempty"`
	On      *bool   `json:"on,omitempty"` // nil on suspend means toggle
	Mode    string  `json:"mode,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Z       float64 `json:"z,omitempty"`
}

// Notification converts a notification event.
func (e Event) Notification() domain.Notification {
	return domain.Notification{
		Package:   e.Package,
		Ticker:    e.Ticker,
		Subtext:   e.Subtext,
		Title:     e.Title,
		Body:      e.Body,
		InfoText:  e.Info,
		IsSummary: e.Summary,
	}
}

// Ringer converts the mode of a ringer event.
func (e Event) Ringer() domain.RingerMode {
	switch e.Mode {
	case "vibrate":
		return domain.RingerVibrate
	case "silent":
		return domain.RingerSilent
	default:
		return domain.RingerNormal
	}
}

// Handler applies one event. An error is logged and does not stop the
// reader.
type Handler func(ctx context.Context, ev Event) error

// Reader decodes event lines.
type Reader struct {
	schema *jsonschema.Schema
	log    *logger.Logger
}

// NewReader compiles the event schema.
func NewReader(log *logger.Logger) (*Reader, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(eventSchema)
	if err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	return &Reader{schema: schema, log: log.With("source")}, nil
}

// Decode validates and decodes one line.
func (r *Reader) Decode(line []byte) (Event, error) {
	result := r.schema.ValidateJSON(line)
	if !result.IsValid() {
		return Event{}, fmt.Errorf("invalid event: %v", result.Errors)
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Run reads in until EOF or ctx is cancelled, handing each valid event to
// h. Blank lines and lines starting with '#' are skipped. It returns the
// number of events handled.
func (r *Reader) Run(ctx context.Context, in io.Reader, h Handler) (int, error) {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := append([]byte(nil), bytes.TrimSpace(scanner.Bytes())...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	handled, lineNo := 0, 0
	for {
		select {
		case <-ctx.Done():
			return handled, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return handled, fmt.Errorf("read events: %w", err)
					}
				default:
				}
				return handled, nil
			}
			lineNo++
			if len(line) == 0 || line[0] == '#' {
				continue
			}

			ev, err := r.Decode(line)
			if err != nil {
				r.log.Warn("line %d: %v", lineNo, err)
				continue
			}
			if err := h(ctx, ev); err != nil {
				r.log.Warn("line %d (%s): %v", lineNo, ev.Kind, err)
				continue
			}
			handled++
		}
	}
}
