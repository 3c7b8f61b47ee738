package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/voicenotify/internal/domain"
)

func TestSignalsOnlyOnChange(t *testing.T) {
	s := New()
	var got []domain.DeviceSignal
	s.OnChange(func(sig domain.DeviceSignal) { got = append(got, sig) })

	s.SetScreen(true) // already on
	s.SetScreen(false)
	s.SetHeadset(true)
	s.SetHeadset(true)
	s.SetBluetooth(true)
	s.SetRinger(domain.RingerSilent)
	s.SetInCall(true)
	s.SetInCall(false)

	assert.Equal(t, []domain.DeviceSignal{
		domain.SignalScreenOff,
		domain.SignalHeadsetConnected,
		domain.SignalBluetoothConnected,
		domain.SignalRingerModeChanged,
		domain.SignalCallStateChanged,
		domain.SignalCallStateChanged,
	}, got)

	assert.False(t, s.ScreenOn())
	assert.Equal(t, domain.RingerSilent, s.RingerMode())
	assert.False(t, s.InCall())
}

func TestHeadsetIncludesBluetooth(t *testing.T) {
	s := New()
	assert.False(t, s.HeadsetOn())
	s.SetBluetooth(true)
	assert.True(t, s.HeadsetOn())
	s.SetBluetooth(false)
	s.SetHeadset(true)
	assert.True(t, s.HeadsetOn())
}
