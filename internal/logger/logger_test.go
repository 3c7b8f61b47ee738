package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{"off", LevelOff, false, false},
		{"normal", LevelNormal, false, true},
		{"verbose", LevelVerbose, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level, &buf)

			log.Debug("debug %d", 1)
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug 1")))

			log.Info("info %s", "two")
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info two")))
		})
	}
}

func TestWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(LevelOff, &buf)
	child := root.With("engine")

	child.Warn("hidden")
	assert.Zero(t, buf.Len())

	root.SetLevel(LevelNormal)
	child.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "engine")
	assert.Equal(t, LevelNormal, child.GetLevel())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LevelVerbose, lvl)

	lvl, err = ParseLevel("off")
	require.NoError(t, err)
	assert.Equal(t, LevelOff, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
