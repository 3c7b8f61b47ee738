package domain

import (
	"strings"
	"time"
)

// Notification is a raw notification-posted event as delivered by a source.
type Notification struct {
	Package   string
	Ticker    string
	Subtext   string
	Title     string
	Body      string
	InfoText  string
	IsSummary bool // group summary; dropped before any record is created
}

// NotificationInfo is the per-event record. It is created once per posted
// notification and owned by the engine while pending; the history log only
// ever receives snapshots.
type NotificationInfo struct {
	ID        string
	App       App
	Ticker    string
	Subtext   string
	Title     string
	Body      string
	InfoText  string
	CreatedAt time.Time
	Utterance string

	// IgnoreReasons accumulates suppression causes across both passes.
	IgnoreReasons IgnoreReasons

	// Silenced is true when speech was attempted and then cut short or
	// withheld on a later cycle, false when it was never attempted.
	Silenced bool
}

// NewNotificationInfo builds a record for the given app and event.
func NewNotificationInfo(id string, app App, n Notification, createdAt time.Time) *NotificationInfo {
	return &NotificationInfo{
		ID:        id,
		App:       app,
		Ticker:    n.Ticker,
		Subtext:   n.Subtext,
		Title:     n.Title,
		Body:      n.Body,
		InfoText:  n.InfoText,
		CreatedAt: createdAt,
	}
}

// IsEmpty reports whether the notification carried no text at all.
func (n *NotificationInfo) IsEmpty() bool {
	for _, s := range n.texts() {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// LogMessage joins the non-empty text fields with newlines for display.
func (n *NotificationInfo) LogMessage() string {
	var parts []string
	for _, s := range n.texts() {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Time returns the creation time formatted as HH:MM:SS.
func (n *NotificationInfo) Time() string {
	return n.CreatedAt.Format("15:04:05")
}

// Ignored reports whether any reason was recorded.
func (n *NotificationInfo) Ignored() bool {
	return !n.IgnoreReasons.Empty()
}

// ReasonsText renders the recorded reasons for display.
func (n *NotificationInfo) ReasonsText() string {
	return n.IgnoreReasons.String()
}

// Snapshot returns a deep copy safe to hand to another goroutine.
func (n *NotificationInfo) Snapshot() NotificationInfo {
	cp := *n
	cp.IgnoreReasons = IgnoreReasons{items: n.IgnoreReasons.List()}
	return cp
}

func (n *NotificationInfo) texts() []string {
	return []string{n.Ticker, n.Subtext, n.Title, n.Body, n.InfoText}
}
