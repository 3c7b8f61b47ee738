package speech

import "github.com/hammamikhairi/voicenotify/internal/domain"

// DefaultVoice is the Azure neural voice used unless overridden.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AvaNeural"

// DefaultAudioFormat is the format requested from Azure and expected by the
// player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// StreamVolume maps the stream hint to a playback volume in [0, 1].
func StreamVolume(s domain.Stream) float64 {
	switch s {
	case domain.StreamNotification:
		return 0.8
	case domain.StreamVoiceCall:
		return 0.6
	default:
		return 1.0
	}
}
