package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrClassification      = errors.New("classification failed")
	ErrProviderFailure     = errors.New("provider failure")
	ErrGenerationExhausted = errors.New("generation exhausted")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
