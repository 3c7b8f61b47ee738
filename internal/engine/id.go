package engine

import (
	"strconv"

	"github.com/google/uuid"
)

// newRecordID returns the ID given to a history record.
func newRecordID() string {
	return uuid.NewString()
}

// nextUtteranceID returns a dispatch id derived from the current time,
// bumped past the last one handed out so ids stay unique and increasing.
// Actor only.
func (e *Engine) nextUtteranceID() int64 {
	id := e.now().UnixMilli()
	if id <= e.lastUtteranceID {
		id = e.lastUtteranceID + 1
	}
	e.lastUtteranceID = id
	return id
}

func formatUtteranceID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseUtteranceID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}
