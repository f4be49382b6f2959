package util

import "errors"

var (
	ErrNoActiveSession      = errors.New("no active quiz session")
	ErrNoSavedSession       = errors.New("no saved session")
	ErrGenerationFailed     = errors.New("question generation failed")
	ErrGenerationInProgress = errors.New("question generation already in progress")
	ErrPersistenceFailed    = errors.New("session persistence failed")
	ErrInvalidMode          = errors.New("invalid quiz mode")
	ErrInvalidCount         = errors.New("question count out of range")
	ErrEmptyTopic           = errors.New("topic is required")
	ErrInvalidAnswer        = errors.New("answer needs option, or statement and value")
)
