// Package display prints the notification history and engine status to the
// terminal.
//
// Records are coloured by outcome: plain when spoken, red when never
// attempted, yellow when speech was attempted and then cut short.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	spokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	ignoredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	silencedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	reasonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#27272a")).
			Foreground(lipgloss.Color("#a1a1aa")).
			Padding(0, 1)
)

// ── Printer ──────────────────────────────────────────────────────

// Printer writes history records and status changes as styled lines.
// Safe for concurrent use; writes never interleave.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	log *logger.Logger
}

// NewPrinter creates a printer. If out is nil, os.Stdout is used.
func NewPrinter(out io.Writer, log *logger.Logger) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, log: log}
}

// Println writes a raw line.
func (p *Printer) Println(a ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

// Banner writes the startup banner.
func (p *Printer) Banner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, RenderBanner(p.out))
}

// Record writes one history entry. updated marks a re-publish of an entry
// already shown.
func (p *Printer) Record(info domain.NotificationInfo, updated bool) {
	line := FormatRecord(info, updated)
	p.log.Debug("history %s: %s", info.ID, info.LogMessage())

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// OnStatusChanged writes a status bar line.
func (p *Printer) OnStatusChanged(s domain.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, statusStyle.Render(FormatStatus(s)))
}

// FormatRecord renders a record as a single line.
func FormatRecord(info domain.NotificationInfo, updated bool) string {
	style := spokenStyle
	switch {
	case info.Silenced:
		style = silencedStyle
	case info.Ignored():
		style = ignoredStyle
	}

	text := info.Utterance
	if text == "" {
		text = strings.ReplaceAll(info.LogMessage(), "\n", " · ")
	}

	var b strings.Builder
	b.WriteString(timeStyle.Render(info.Time()))
	b.WriteByte(' ')
	if updated {
		b.WriteString(timeStyle.Render("↻ "))
	}
	b.WriteString(labelStyle.Render(info.App.Label))
	b.WriteString(" ")
	b.WriteString(style.Render(text))
	if info.Ignored() {
		b.WriteString(" ")
		b.WriteString(reasonStyle.Render("(" + info.ReasonsText() + ")"))
	}
	return b.String()
}

// FormatStatus renders the engine flags as short text.
func FormatStatus(s domain.Status) string {
	state := "stopped"
	switch {
	case s.Running && s.Suspended:
		state = "suspended"
	case s.Running:
		state = "listening"
	}
	return fmt.Sprintf("%s · queued %d · repeating %d", state, s.Queued, s.Repeating)
}

var (
	onStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#86efac"))
	offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
)

// FormatApp renders one registry entry.
func FormatApp(app domain.App) string {
	state := onStyle.Render("on ")
	if !app.Enabled {
		state = offStyle.Render("off")
	}
	return fmt.Sprintf("%s  %s %s", state, labelStyle.Render(app.Label), timeStyle.Render(app.ID))
}

// Apps writes one line per app.
func (p *Printer) Apps(apps []domain.App) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(apps) == 0 {
		fmt.Fprintln(p.out, timeStyle.Render("no apps"))
		return
	}
	for _, a := range apps {
		fmt.Fprintln(p.out, FormatApp(a))
	}
}
