package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrEngineStopped     = errors.New("engine is not running")
	ErrEngineUnavailable = errors.New("speech engine unavailable")
)
