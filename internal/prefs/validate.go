package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

var boolKeys = []string{
	KeySpeakScreenOff,
	KeySpeakScreenOn,
	KeySpeakHeadsetOff,
	KeySpeakHeadsetOn,
	KeySpeakSilentOn,
	KeyIgnoreEmpty,
	KeyIgnoreGroups,
	KeyAudioFocus,
	KeyIsSuspended,
	KeyAppDefaultOn,
}

// numberRule bounds a numeric key. max < min means no upper bound.
type numberRule struct {
	key      string
	min, max float64
}

var numberRules = []numberRule{
	{KeyQuietStart, 0, 1439},
	{KeyQuietEnd, 0, 1439},
	{KeyIgnoreRepeat, -1, -2},
	{KeyTTSDelay, 0, -1},
	{KeyTTSRepeat, 0, -1},
	{KeyMaxLength, 0, -1},
	{KeyShakeThreshold, 0, -1},
	{KeyTTSStream, 0, 3},
}

// Validate reports values that the typed getters would silently replace
// with their defaults. Absent keys are fine. The returned error is a
// criterio.FieldErrors keyed by preference name.
func (s *Store) Validate() error {
	var errs criterio.FieldErrorsBuilder

	for _, key := range boolKeys {
		v, ok := s.get(key)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
		case string:
			if _, err := strconv.ParseBool(strings.TrimSpace(t)); err != nil {
				errs = errs.Append(key, fmt.Errorf("not a boolean: %q", t))
			}
		default:
			errs = errs.Append(key, fmt.Errorf("not a boolean: %v", t))
		}
	}

	for _, r := range numberRules {
		if _, ok := s.get(r.key); !ok {
			continue
		}
		f, ok := s.number(r.key)
		if !ok {
			errs = errs.Append(r.key, errors.New("not a number"))
			continue
		}
		if f < r.min || (r.max >= r.min && f > r.max) {
			errs = errs.Append(r.key, fmt.Errorf("%v out of range", f))
		}
	}

	for _, key := range []string{KeyTTSString, KeyTTSTextReplace, KeyIgnoreStrings, KeyRequireStrings} {
		if v, ok := s.get(key); ok {
			if _, isString := v.(string); !isString {
				errs = errs.Append(key, fmt.Errorf("not text: %v", v))
			}
		}
	}

	return errs.ToError()
}
