package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

func TestNoOpCompletes(t *testing.T) {
	n := NewNoOp(logger.New(logger.LevelOff, nil), 0)
	rec := newRecorder()
	n.SetListener(rec)

	assert.True(t, n.Ready())
	require.NoError(t, n.Speak("hello", "1", domain.StreamMusic))
	assert.Equal(t, event{kind: "completed", id: "1"}, rec.next(t))
}

func TestNoOpStopAllReportsOldest(t *testing.T) {
	n := NewNoOp(logger.New(logger.LevelOff, nil), time.Second)
	rec := newRecorder()
	n.SetListener(rec)

	require.NoError(t, n.Speak("one", "1", domain.StreamMusic))
	require.NoError(t, n.Speak("two", "2", domain.StreamMusic))
	n.StopAll()

	assert.Equal(t, event{kind: "interrupted", id: "1"}, rec.next(t))
	select {
	case ev := <-rec.ch:
		t.Fatalf("unexpected callback: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
