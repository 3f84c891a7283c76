package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clinical-intake/internal/transcript"
)

// TranscriptReader is the read side of the transcript store the pipeline
// depends on.
type TranscriptReader interface {
	Read(ctx context.Context, patientID string) (string, error)
}

// DefaultMaxItems caps how many suggestions one advisory run returns unless
// the caller asks for a different limit.
const DefaultMaxItems = 3

// maxQueryLen bounds the retrieval query built from a transcript.
const maxQueryLen = 2000

// Service runs the advisory pipeline: load stored transcript, build the
// retrieval query, fetch evidence, synthesize suggestions. Collaborator
// failures propagate unchanged; retry policy lives with the caller.
type Service struct {
	transcripts TranscriptReader
	retriever   Retriever
	synth       *Synthesizer
	log         *slog.Logger
}

func NewService(transcripts TranscriptReader, retriever Retriever, synth *Synthesizer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		transcripts: transcripts,
		retriever:   retriever,
		synth:       synth,
		log:         log,
	}
}

// Advise produces at most maxItems ranked suggestions for the patient's
// stored transcript. Zero suggestions with a nil error means the evidence
// base had nothing relevant; that is a result, not a failure.
func (s *Service) Advise(ctx context.Context, patientID string, maxItems int) ([]Suggestion, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	text, err := s.transcripts.Read(ctx, patientID)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			return nil, fmt.Errorf("advisory for patient %s: %w", patientID, ErrTranscriptNotFound)
		}
		return nil, fmt.Errorf("advisory for patient %s: read transcript: %w", patientID, err)
	}

	query := text
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}

	topK := 5
	if 2*maxItems > topK {
		topK = 2 * maxItems
	}

	snippets, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("advisory for patient %s: %w", patientID, err)
	}

	suggestions, err := s.synth.Synthesize(text, snippets)
	if err != nil {
		return nil, fmt.Errorf("advisory for patient %s: %w", patientID, err)
	}
	if len(suggestions) > maxItems {
		suggestions = suggestions[:maxItems]
	}

	s.log.Info("advisory completed", "patient_id", patientID, "evidence", len(snippets), "suggestions", len(suggestions))
	return suggestions, nil
}
