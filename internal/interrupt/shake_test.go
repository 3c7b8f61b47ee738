package interrupt

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/voicenotify/internal/logger"
	"github.com/hammamikhairi/voicenotify/internal/prefs"
)

func newShake(threshold any) (*Shake, *atomic.Int32) {
	p := prefs.New(prefs.Defaults())
	if threshold != nil {
		p.Set(prefs.KeyShakeThreshold, threshold)
	}
	s := NewShake(p, logger.New(logger.LevelOff, nil))
	var fired atomic.Int32
	s.SetHandler(func() { fired.Add(1) })
	return s, &fired
}

func TestShakeNeedsTwoConsecutiveJolts(t *testing.T) {
	s, fired := newShake(nil) // default 100 -> 10 m/s²
	s.Enable()

	assert.False(t, s.Feed(0, 0, 9.8)) // first sample only primes
	assert.False(t, s.Feed(0, 0, 25))  // one jolt
	assert.False(t, s.Feed(0, 0, 24))  // calm resets the count
	assert.False(t, s.Feed(0, 0, 5))   // jolt
	assert.True(t, s.Feed(0, 0, 20))   // second consecutive jolt
	assert.Equal(t, int32(1), fired.Load())
}

func TestShakeIgnoredWhileDisabled(t *testing.T) {
	s, fired := newShake(nil)

	for _, z := range []float64{1, 30, 1, 30} {
		s.Feed(0, 0, z)
	}
	assert.Zero(t, fired.Load())
	assert.False(t, s.Enabled())
}

func TestShakeDisableResets(t *testing.T) {
	s, fired := newShake(nil)
	s.Enable()
	s.Feed(0, 0, 1)
	s.Feed(0, 0, 30)

	s.Disable()
	s.Enable()
	assert.False(t, s.Feed(0, 0, 1)) // primes again
	assert.False(t, s.Feed(0, 0, 30))
	assert.Zero(t, fired.Load())
}

func TestShakeThreshold(t *testing.T) {
	t.Run("sensitive", func(t *testing.T) {
		s, _ := newShake(20) // 2 m/s²
		s.Enable()
		s.Feed(0, 0, 10)
		s.Feed(0, 0, 13)
		assert.True(t, s.Feed(0, 0, 10))
	})
	t.Run("zero disarms", func(t *testing.T) {
		s, _ := newShake(0)
		s.Enable()
		assert.False(t, s.Enabled())
	})
	t.Run("no handler stays disarmed", func(t *testing.T) {
		s := NewShake(prefs.New(prefs.Defaults()), logger.New(logger.LevelOff, nil))
		s.Enable()
		assert.False(t, s.Enabled())
	})
}

func TestGroupFansOut(t *testing.T) {
	a, _ := newShake(nil)
	b, _ := newShake(nil)
	g := Group{a, b}

	var fired atomic.Int32
	g.SetHandler(func() { fired.Add(1) })
	g.Enable()
	assert.True(t, a.Enabled())
	assert.True(t, b.Enabled())

	b.Feed(0, 0, 1)
	b.Feed(0, 0, 30)
	b.Feed(0, 0, 1)
	assert.Equal(t, int32(1), fired.Load())

	g.Disable()
	assert.False(t, a.Enabled())
	assert.False(t, b.Enabled())
}
