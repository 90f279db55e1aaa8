package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session has not been initialized.
	ErrSessionNotFound = errors.New("assembly session not found")
	// ErrPartNotFound indicates an unknown part ID reached the engine (programmer error).
	ErrPartNotFound = errors.New("part not found")
	// ErrZoneNotFound indicates an unknown zone key reached the registry (programmer error).
	ErrZoneNotFound = errors.New("zone not found")
	// ErrEventNotFound indicates an answer referenced a lock event that was never created.
	ErrEventNotFound = errors.New("lock event not found")
	// ErrPackNotFound indicates the lesson pack could not be loaded.
	ErrPackNotFound = errors.New("lesson pack not found")
	// ErrKindUnknown indicates a part-kind tag outside the closed enumeration.
	ErrKindUnknown = errors.New("unknown part kind")
)
