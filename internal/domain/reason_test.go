package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreReasonsOrderedAndUnique(t *testing.T) {
	info := NewNotificationInfo("1", App{ID: "com.a"}, Notification{}, time.Time{})
	assert.True(t, info.IgnoreReasons.Add(Reason(ReasonScreenOn)))
	assert.False(t, info.IgnoreReasons.Add(Reason(ReasonScreenOn)))
	info.IgnoreReasons.AddAll([]IgnoreReason{Reason(ReasonSuspended), Reason(ReasonScreenOn)})

	assert.Equal(t, []IgnoreReason{Reason(ReasonScreenOn), Reason(ReasonSuspended)}, info.IgnoreReasons.List())
}

func TestIgnoreReasonsReadableFromSnapshots(t *testing.T) {
	info := NewNotificationInfo("1", App{ID: "com.a"}, Notification{}, time.Time{})
	info.IgnoreReasons.Add(Reason(ReasonSuspended))

	// Snapshot returns a value; the read methods must work on it directly.
	assert.True(t, info.Snapshot().IgnoreReasons.Has(ReasonSuspended))
	assert.False(t, info.Snapshot().IgnoreReasons.Empty())
	assert.Equal(t, 1, info.Snapshot().IgnoreReasons.Len())
	assert.Equal(t, "Suspended", info.Snapshot().IgnoreReasons.String())
}
