package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// TranscriptSink persists finalized transcripts. The engine only knows the
// write side; reading stored transcripts belongs to the advisory pipeline.
type TranscriptSink interface {
	Write(ctx context.Context, patientID, content string) error
}

// PairingMode decides how a submitted answer is matched against the pending
// question batch.
type PairingMode string

const (
	// PairJointly pairs one answer with the whole pending batch: batched
	// questions are answered together in a single turn.
	PairJointly PairingMode = "joint"
	// PairPerQuestion pairs each answer with exactly one pending question;
	// the next questions are only generated once the batch is drained.
	PairPerQuestion PairingMode = "per_question"
)

// Engine is the interview session state machine. One live session per
// patient; all session access goes through the store's per-patient lock.
type Engine struct {
	store    *SessionStore
	strategy Strategy
	sink     TranscriptSink
	pairing  PairingMode
	now      func() time.Time
	log      *slog.Logger
}

func NewEngine(store *SessionStore, strategy Strategy, sink TranscriptSink, pairing PairingMode, log *slog.Logger) *Engine {
	if pairing == "" {
		pairing = PairJointly
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		strategy: strategy,
		sink:     sink,
		pairing:  pairing,
		now:      time.Now,
		log:      log,
	}
}

// Start opens a new session for the patient and returns the opening question
// batch. A patient with a session still in progress gets ErrAlreadyActive.
func (e *Engine) Start(ctx context.Context, patientID, chiefComplaint, extra string) ([]string, error) {
	var batch []string
	err := e.store.WithSession(patientID, func(s *Session) (*Session, error) {
		if s != nil && s.Phase == PhaseInProgress {
			return s, fmt.Errorf("start interview for patient %s: %w", patientID, ErrAlreadyActive)
		}

		qs, err := e.strategy.NextQuestions(ctx, chiefComplaint, extra, nil)
		if err != nil {
			return s, fmt.Errorf("start interview for patient %s: %w: %v", patientID, ErrQuestionGeneration, err)
		}
		if len(qs) == 0 {
			// An interview must open with at least one question.
			return s, fmt.Errorf("start interview for patient %s: %w: empty opening batch", patientID, ErrQuestionGeneration)
		}

		now := e.now()
		next := &Session{
			PatientID:      patientID,
			ChiefComplaint: strings.TrimSpace(chiefComplaint),
			Context:        extra,
			Phase:          PhaseInProgress,
			Pending:        qs,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		batch = qs
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("interview started", "patient_id", patientID, "questions", len(batch))
	return batch, nil
}

// Answer records the patient's reply, pairs it with the pending question(s)
// according to the pairing mode, and returns the next batch. An empty batch
// means the strategy is done; the session stays in progress until End is
// called. On a question source failure the session is left untouched and the
// same call can be retried.
func (e *Engine) Answer(ctx context.Context, patientID, answerText string) ([]string, error) {
	var batch []string
	err := e.store.WithSession(patientID, func(s *Session) (*Session, error) {
		if s == nil || s.Phase != PhaseInProgress {
			return s, fmt.Errorf("answer for patient %s: %w", patientID, ErrNoActiveSession)
		}

		now := e.now()

		paired := s.Pending
		remaining := []string(nil)
		if e.pairing == PairPerQuestion && len(s.Pending) > 1 {
			paired = s.Pending[:1]
			remaining = s.Pending[1:]
		}

		staged := Turn{
			Seq:        len(s.Turns),
			Questions:  paired,
			Answer:     answerText,
			AskedAt:    s.UpdatedAt,
			AnsweredAt: now,
		}
		history := make([]Turn, len(s.Turns), len(s.Turns)+1)
		copy(history, s.Turns)
		history = append(history, staged)

		next := remaining
		if len(remaining) == 0 {
			qs, err := e.strategy.NextQuestions(ctx, s.ChiefComplaint, s.Context, history)
			if err != nil {
				return s, fmt.Errorf("answer for patient %s: %w: %v", patientID, ErrQuestionGeneration, err)
			}
			next = dropAsked(qs, history)
		}

		// Commit only after every step succeeded.
		s.Turns = history
		s.Pending = next
		s.UpdatedAt = now
		batch = next
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("answer recorded", "patient_id", patientID, "next_questions", len(batch))
	return batch, nil
}

// End finalizes the session, writes the transcript through the sink and
// removes the session. If the write fails the session stays in progress so
// End can be retried.
func (e *Engine) End(ctx context.Context, patientID string) (Transcript, error) {
	var tr Transcript
	err := e.store.WithSession(patientID, func(s *Session) (*Session, error) {
		if s == nil || s.Phase != PhaseInProgress {
			return s, fmt.Errorf("end interview for patient %s: %w", patientID, ErrNoActiveSession)
		}

		candidate := Transcript{
			PatientID:      s.PatientID,
			ChiefComplaint: s.ChiefComplaint,
			Context:        s.Context,
			Turns:          s.Turns,
			CreatedAt:      s.CreatedAt,
			EndedAt:        e.now(),
		}
		if err := e.sink.Write(ctx, patientID, candidate.Text()); err != nil {
			return s, fmt.Errorf("end interview for patient %s: %w: %v", patientID, ErrPersistence, err)
		}

		s.Phase = PhaseEnded
		tr = candidate
		return nil, nil
	})
	if err != nil {
		return Transcript{}, err
	}
	e.log.Info("interview ended", "patient_id", patientID, "turns", len(tr.Turns))
	return tr, nil
}

// dropAsked filters out any question the session has already seen, no matter
// what the strategy returned. Repeats across a session are never issued.
func dropAsked(qs []string, turns []Turn) []string {
	seen := make(map[string]bool)
	for _, t := range turns {
		for _, q := range t.Questions {
			seen[normalizeQuestion(q)] = true
		}
	}
	var out []string
	for _, q := range qs {
		key := normalizeQuestion(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
