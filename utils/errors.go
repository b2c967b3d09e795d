package utils

import "errors"

// Error kinds surfaced by the assessment engine. Handlers translate these to
// HTTP status codes in the central fiber error handler; nothing below is ever
// swallowed or retried automatically.
var (
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrGenerationFailed     = errors.New("question generation failed")
	ErrIncompleteGeneration = errors.New("generator returned fewer questions than requested")
	ErrAlreadySaved         = errors.New("draft has already been saved")
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAssessmentLocked     = errors.New("assessment is completed and locked")
	ErrIncompleteAnswers    = errors.New("not every question has been answered")
	ErrStorage              = errors.New("storage failure")
)
