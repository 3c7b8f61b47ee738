// Package format builds the spoken utterance for a notification from the
// user's template, replacement list and length limit.
package format

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultTemplate speaks the app label, title and body.
const DefaultTemplate = "#a. #c. #m."

// ErrMalformedTemplate is returned by Expand for a stray '%' directive.
var ErrMalformedTemplate = errors.New("malformed template")

// tickerJunk matches characters that TTS engines read out literally.
var tickerJunk = regexp.MustCompile(`[|\[\]{}*<>]+`)

// Fields are the raw notification texts a template can reference.
type Fields struct {
	Label    string // #a
	Ticker   string // #t
	Subtext  string // #s
	Title    string // #c
	Body     string // #m
	InfoText string // #i
}

// Replacement is a case-insensitive literal substitution.
type Replacement struct {
	From string
	To   string
}

// Options controls Utterance.
type Options struct {
	Template     string
	Replacements []Replacement
	MaxLength    int // in runes, 0 = unlimited
}

// Utterance formats f according to opts. It never fails: a malformed
// template, or one that produces nothing beyond the bare label, degrades to
// Fallback.
func Utterance(f Fields, opts Options) string {
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}

	msg, err := Expand(tmpl, f)
	if err != nil || strings.TrimSpace(msg) == "" || msg == f.Label {
		msg = Fallback(f.Label)
	}

	msg = Replace(msg, opts.Replacements)
	return Truncate(msg, opts.MaxLength)
}

// Fallback is spoken when the template yields nothing useful.
func Fallback(label string) string {
	return "Notification from " + label + "."
}

// Expand substitutes the #a #t #s #c #m #i placeholders. A '#' not followed
// by a known letter is kept as is. "%%" renders '%', "%n" a newline, and any
// other '%' directive makes the template malformed.
func Expand(tmpl string, f Fields) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl) + len(f.Title) + len(f.Body))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '#':
			if i+1 < len(tmpl) {
				if v, ok := placeholder(tmpl[i+1], f); ok {
					b.WriteString(v)
					i++
					continue
				}
			}
			b.WriteByte(c)
		case '%':
			if i+1 >= len(tmpl) {
				return "", ErrMalformedTemplate
			}
			switch tmpl[i+1] {
			case '%':
				b.WriteByte('%')
			case 'n':
				b.WriteByte('\n')
			default:
				return "", ErrMalformedTemplate
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func placeholder(c byte, f Fields) (string, bool) {
	switch c {
	case 'a':
		return f.Label, true
	case 't':
		return tickerJunk.ReplaceAllString(f.Ticker, " "), true
	case 's':
		return f.Subtext, true
	case 'c':
		return f.Title, true
	case 'm':
		return f.Body, true
	case 'i':
		return f.InfoText, true
	default:
		return "", false
	}
}

// Replace applies each replacement in order, matching From literally and
// case-insensitively. Empty patterns are skipped.
func Replace(msg string, reps []Replacement) string {
	for _, r := range reps {
		if r.From == "" {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(r.From))
		msg = re.ReplaceAllLiteralString(msg, r.To)
	}
	return msg
}

// Truncate cuts msg to at most max runes. max <= 0 leaves it untouched.
func Truncate(msg string, max int) string {
	if max <= 0 {
		return msg
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max])
}

// ParseReplacements decodes the stored replacement list: alternating
// pattern and replacement lines. Trailing empty lines are dropped and an
// unpaired last line is ignored.
func ParseReplacements(stored string) []Replacement {
	if stored == "" {
		return nil
	}
	lines := strings.Split(stored, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var out []Replacement
	for i := 0; i+1 < len(lines); i += 2 {
		out = append(out, Replacement{From: lines[i], To: lines[i+1]})
	}
	return out
}

// EncodeReplacements is the inverse of ParseReplacements.
func EncodeReplacements(reps []Replacement) string {
	lines := make([]string, 0, len(reps)*2)
	for _, r := range reps {
		lines = append(lines, r.From, r.To)
	}
	return strings.Join(lines, "\n")
}
