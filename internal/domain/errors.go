package domain

import "errors"

var (
	// ErrGenerationFailed is returned when the text-generation collaborator failed.
	ErrGenerationFailed = errors.New("quiz generation failed")
	// ErrEmptyQuiz indicates generation succeeded but no question matched the grammar.
	ErrEmptyQuiz = errors.New("no quiz could be built")
	// ErrPersistence hides record-store failures behind a renderable condition.
	ErrPersistence = errors.New("attempt storage unavailable")
	// ErrQuizNotFound indicates the generated quiz is unknown or expired.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidRequest indicates missing or malformed input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDeliveryFailed is returned by delivery collaborators; it is logged, never surfaced.
	ErrDeliveryFailed = errors.New("report delivery failed")
)
