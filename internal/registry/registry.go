// Package registry keeps track of notification sources and whether each one
// may speak.
package registry

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Option configures a registry.
type Option func(*options)

type options struct {
	defaultEnabled func() bool
	labeler        func(id string) string
}

// WithDefaultEnabled sets how the enabled flag of a newly seen app is chosen.
// It is consulted on every creation so a preference change applies to the
// next new app.
func WithDefaultEnabled(fn func() bool) Option {
	return func(o *options) { o.defaultEnabled = fn }
}

// WithLabeler overrides how a label is derived from an app ID.
func WithLabeler(fn func(id string) string) Option {
	return func(o *options) { o.labeler = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		defaultEnabled: func() bool { return true },
		labeler:        LabelFor,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// LabelFor derives a display label from a package-style ID by taking the
// last dotted segment and capitalising it: "com.example.mail" -> "Mail".
func LabelFor(id string) string {
	seg := id
	if i := strings.LastIndexByte(id, '.'); i >= 0 && i < len(id)-1 {
		seg = id[i+1:]
	}
	if seg == "" {
		return id
	}
	r, size := utf8.DecodeRuneInString(seg)
	return string(unicode.ToUpper(r)) + seg[size:]
}
