package interview

import "errors"

var (
	// ErrAlreadyActive is returned by Start when the patient already has a
	// session that has not been ended.
	ErrAlreadyActive = errors.New("interview session already active")

	// ErrNoActiveSession is returned by Answer and End when no in-progress
	// session exists for the patient.
	ErrNoActiveSession = errors.New("no active interview session")

	// ErrQuestionGeneration wraps failures of the question source. The call
	// that hit it left the session unchanged and can be retried.
	ErrQuestionGeneration = errors.New("question generation failed")

	// ErrPersistence wraps transcript write failures on End. The session
	// stays in progress so End can be retried.
	ErrPersistence = errors.New("transcript persistence failed")
)
