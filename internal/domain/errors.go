package domain

import "errors"

var (
	// ErrSourceUnavailable means the journal source could not be read.
	ErrSourceUnavailable = errors.New("journal source unavailable")

	// ErrGenerationFailure means the text generator failed or timed out.
	ErrGenerationFailure = errors.New("text generation failed")

	ErrInvalidTriggerConfig = errors.New("invalid trigger config")

	// ErrPersistence means a computed session could not be written.
	ErrPersistence = errors.New("session persistence failed")

	ErrSessionNotFound = errors.New("session not found")
)
