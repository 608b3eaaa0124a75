package domain

import "errors"

var (
	// ErrQuizUnavailable indicates the quiz document could not be fetched.
	ErrQuizUnavailable = errors.New("quiz unavailable")
	// ErrInvalidDocument indicates the fetched document failed validation.
	ErrInvalidDocument = errors.New("invalid quiz document")
	// ErrDocumentNotReady is returned when a session is started before a
	// quiz document has been loaded into it.
	ErrDocumentNotReady = errors.New("quiz document not ready")
	// ErrInvalidTransition is returned when a command is issued in a phase
	// that forbids it.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrUnknownQuestion indicates a submitted question ID is not the
	// current question.
	ErrUnknownQuestion = errors.New("question is not current")
	// ErrUnknownOption indicates a submitted option ID does not belong to
	// the current question.
	ErrUnknownOption = errors.New("option not found")
	// ErrPersistence wraps badge ledger write failures. The claim is still
	// held in memory; callers may retry the write.
	ErrPersistence = errors.New("persistence failure")
)
