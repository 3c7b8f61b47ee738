package domain

// DeviceSignal is a device-state change the engine reacts to.
type DeviceSignal int

const (
	SignalScreenOn DeviceSignal = iota
	SignalScreenOff
	SignalHeadsetConnected
	SignalHeadsetDisconnected
	SignalBluetoothConnected
	SignalBluetoothDisconnected
	SignalCallStateChanged
	SignalRingerModeChanged
)

// String returns a human-readable signal name.
func (s DeviceSignal) String() string {
	switch s {
	case SignalScreenOn:
		return "screen_on"
	case SignalScreenOff:
		return "screen_off"
	case SignalHeadsetConnected:
		return "headset_connected"
	case SignalHeadsetDisconnected:
		return "headset_disconnected"
	case SignalBluetoothConnected:
		return "bluetooth_connected"
	case SignalBluetoothDisconnected:
		return "bluetooth_disconnected"
	case SignalCallStateChanged:
		return "call_state_changed"
	case SignalRingerModeChanged:
		return "ringer_mode_changed"
	default:
		return "unknown"
	}
}

// RingerMode mirrors the phone ringer switch.
type RingerMode int

const (
	RingerNormal RingerMode = iota
	RingerVibrate
	RingerSilent
)

// String returns a human-readable ringer mode.
func (m RingerMode) String() string {
	switch m {
	case RingerNormal:
		return "normal"
	case RingerVibrate:
		return "vibrate"
	case RingerSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// Stream is the audio stream hint passed along with each utterance.
type Stream int

const (
	StreamMusic Stream = iota
	StreamNotification
	StreamAlarm
	StreamVoiceCall
)

// Status is a snapshot of the engine's global flags.
type Status struct {
	Running   bool
	Suspended bool
	Queued    int // utterances handed to the speech engine and not finished
	Repeating int // notifications waiting on the repeat schedule
	Delayed   int // notifications waiting out the speech delay
}
