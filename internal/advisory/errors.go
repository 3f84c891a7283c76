package advisory

import "errors"

var (
	// ErrTranscriptNotFound means there is no stored transcript to advise on.
	ErrTranscriptNotFound = errors.New("transcript not found")

	// ErrRetrievalUnavailable wraps transport or service failures of the
	// vector retrieval collaborator.
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")

	// ErrRetrievalTimeout means the retrieval call exceeded its deadline.
	// It is never degraded into an empty evidence result.
	ErrRetrievalTimeout = errors.New("retrieval timed out")

	// ErrSynthesis means the evidence input was malformed. Weak or absent
	// matches are not an error; they just yield fewer suggestions.
	ErrSynthesis = errors.New("suggestion synthesis failed")
)
