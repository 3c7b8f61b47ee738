package prefs

// Preference keys. Names match the ones the settings screens write.
const (
	KeyQuietStart      = "quietStart" // minutes since midnight
	KeyQuietEnd        = "quietEnd"   // minutes since midnight
	KeySpeakScreenOff  = "speakScreenOff"
	KeySpeakScreenOn   = "speakScreenOn"
	KeySpeakHeadsetOff = "speakHeadsetOff"
	KeySpeakHeadsetOn  = "speakHeadsetOn"
	KeySpeakSilentOn   = "speakSilentOn"
	KeyIgnoreEmpty     = "ignore_empty"
	KeyIgnoreGroups    = "ignore_groups"
	KeyIgnoreStrings   = "ignore_strings"  // newline separated
	KeyRequireStrings  = "require_strings" // newline separated
	KeyIgnoreRepeat    = "ignore_repeat"   // seconds, absent or <= 0 = unlimited
	KeyTTSDelay        = "ttsDelay"        // seconds
	KeyTTSRepeat       = "tts_repeat"      // minutes, screen off only
	KeyMaxLength       = "key_max_length"
	KeyAudioFocus      = "audio_focus"
	KeyTTSString       = "ttsString"
	KeyTTSTextReplace  = "ttsTextReplace"
	KeyTTSStream       = "ttsStream"
	KeyShakeThreshold  = "shake_threshold"
	KeyIsSuspended     = "isSuspended"
	KeyAppDefaultOn    = "defEnable"
)

// Defaults used when a key is absent.
const (
	DefaultQuietTime      = 0
	DefaultSpeakScreenOff = true
	DefaultSpeakScreenOn  = true
	DefaultSpeakHeadset   = true
	DefaultSpeakSilentOn  = false
	DefaultIgnoreEmpty    = true
	DefaultIgnoreGroups   = true
	DefaultIgnoreRepeat   = -1
	DefaultMaxLength      = 100
	DefaultAudioFocus     = true
	DefaultShakeThreshold = 100.0
	DefaultIsSuspended    = false
	DefaultAppDefaultOn   = true
)

// Defaults returns the seed values written into a fresh store.
func Defaults() map[string]any {
	return map[string]any{
		KeyAudioFocus:     DefaultAudioFocus,
		KeyShakeThreshold: DefaultShakeThreshold,
		KeyIgnoreEmpty:    DefaultIgnoreEmpty,
		KeyIgnoreGroups:   DefaultIgnoreGroups,
		KeyTTSString:      "#a. #c. #m.",
		KeyMaxLength:      DefaultMaxLength,
		KeyTTSStream:      0,
	}
}
