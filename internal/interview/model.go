package interview

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the lifecycle state of a patient's interview session.
// Transitions only move forward: NotStarted -> InProgress -> Ended.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

// Turn is one question/answer exchange unit. The engine issues a batch of
// questions, the patient replies, and the pairing becomes one Turn with a
// contiguous sequence index starting at 0.
type Turn struct {
	Seq        int       `json:"seq"`
	Questions  []string  `json:"questions"`
	Answer     string    `json:"answer"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session holds the mutable state of one in-progress interview. It is owned
// by the session store entry for its patient and must only be touched while
// that entry is held.
type Session struct {
	PatientID      string    `json:"patient_id"`
	ChiefComplaint string    `json:"chief_complaint,omitempty"`
	Context        string    `json:"context,omitempty"`
	Phase          Phase     `json:"phase"`
	Turns          []Turn    `json:"turns"`
	Pending        []string  `json:"pending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AskedQuestions returns every question issued so far, committed turns first,
// then the still-pending batch.
func (s *Session) AskedQuestions() []string {
	var out []string
	for _, t := range s.Turns {
		out = append(out, t.Questions...)
	}
	out = append(out, s.Pending...)
	return out
}

// Transcript is the finalized, immutable record of an ended session.
type Transcript struct {
	PatientID      string    `json:"patient_id"`
	ChiefComplaint string    `json:"chief_complaint,omitempty"`
	Context        string    `json:"context,omitempty"`
	Turns          []Turn    `json:"turns"`
	CreatedAt      time.Time `json:"created_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// Text renders the transcript in the plain-text layout stored on disk:
// a header block followed by one [timestamp] ROLE: line per utterance.
func (t Transcript) Text() string {
	var b strings.Builder
	b.WriteString("Patient Interview Transcript\n")
	fmt.Fprintf(&b, "Patient ID: %s\n", t.PatientID)
	fmt.Fprintf(&b, "Chief Complaint: %s\n", t.ChiefComplaint)
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Ended: %s\n", t.EndedAt.UTC().Format(time.RFC3339))
	b.WriteString(strings.Repeat("-", 60))
	b.WriteString("\n")
	for _, turn := range t.Turns {
		for _, q := range turn.Questions {
			fmt.Fprintf(&b, "[%s] QUESTION: %s\n", turn.AskedAt.UTC().Format(time.RFC3339), q)
		}
		fmt.Fprintf(&b, "[%s] ANSWER: %s\n", turn.AnsweredAt.UTC().Format(time.RFC3339), turn.Answer)
	}
	return b.String()
}
