package ignore

import "time"

// LastMessage is what was last let through for one app.
type LastMessage struct {
	Utterance string
	At        time.Time
}

// Suppresses reports whether utterance repeats l within window seconds.
// A window of zero or less suppresses identical text forever. A nil
// receiver never suppresses.
func (l *LastMessage) Suppresses(utterance string, window int, now time.Time) bool {
	if l == nil || l.Utterance != utterance {
		return false
	}
	if window <= 0 {
		return true
	}
	return now.Sub(l.At) < time.Duration(window)*time.Second
}

// Dedup maps app IDs to their last message. It is not safe for concurrent
// use; the engine actor owns it.
type Dedup struct {
	last map[string]LastMessage
}

// NewDedup returns an empty table.
func NewDedup() *Dedup {
	return &Dedup{last: make(map[string]LastMessage)}
}

// Last returns the entry for appID, or nil.
func (d *Dedup) Last(appID string) *LastMessage {
	l, ok := d.last[appID]
	if !ok {
		return nil
	}
	return &l
}

// Record stores utterance as the latest for appID.
func (d *Dedup) Record(appID, utterance string, at time.Time) {
	d.last[appID] = LastMessage{Utterance: utterance, At: at}
}

// Len returns the number of apps tracked.
func (d *Dedup) Len() int { return len(d.last) }
