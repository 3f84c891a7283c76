package interview

import (
	"context"
	"fmt"
	"strings"
)

// Strategy produces the next batch of questions for a session. An empty
// batch signals that the interview has collected enough and should be ended
// by the caller.
type Strategy interface {
	NextQuestions(ctx context.Context, chiefComplaint, extra string, turns []Turn) ([]string, error)
}

// DefaultMaxTurns bounds an interview when no explicit limit is configured.
// Interviews must always terminate.
const DefaultMaxTurns = 8

// DefaultBatchSize is how many questions a template round issues at most.
const DefaultBatchSize = 2

type topic struct {
	name     string
	question string
	// hints mark the topic as already covered when they appear in a
	// patient answer, so the interview skips ground the patient volunteered.
	hints []string
}

var intakeTopics = []topic{
	{"duration", "How long have you been experiencing this issue?", []string{"day", "week", "month", "year", "since", "started"}},
	{"severity", "How severe are your symptoms on a scale from 1 to 10?", []string{"out of 10", "scale", "/10"}},
	{"triggers", "Have you noticed any triggers or patterns that make it better or worse?", []string{"worse when", "better when", "trigger"}},
	{"medications", "Are you currently taking any medications, and at what dose?", []string{"taking", "medication", "pill", "tablet", "mg"}},
	{"history", "Do you have any relevant medical history, surgeries, or allergies?", []string{"allergy", "allergic", "surgery", "diagnosed"}},
	{"other", "Do you have any other symptoms or concerns you'd like to share?", nil},
}

// followUps are single-shot probes chosen from the most recent answer.
var followUps = []struct {
	trigger  string
	question string
}{
	{"pain", "Where exactly is the pain located, and does it spread anywhere?"},
	{"fever", "Have you measured your temperature, and how high has it been?"},
	{"cough", "Is the cough dry, or are you bringing anything up?"},
	{"dizzy", "Does the dizziness come on when you stand up, or at random?"},
	{"sleep", "Has the problem been affecting your sleep?"},
}

// TemplateStrategy is the deterministic question source: topic templates
// seeded from the chief complaint, keyword follow-ups from the latest
// answer, and normalized-text de-duplication. Same inputs produce the same
// batch, which keeps the engine testable without a model behind it.
type TemplateStrategy struct {
	MaxTurns  int
	BatchSize int
}

func NewTemplateStrategy() *TemplateStrategy {
	return &TemplateStrategy{MaxTurns: DefaultMaxTurns, BatchSize: DefaultBatchSize}
}

func (s *TemplateStrategy) NextQuestions(ctx context.Context, chiefComplaint, extra string, turns []Turn) ([]string, error) {
	maxTurns := s.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if len(turns) >= maxTurns {
		return nil, nil
	}

	asked := make(map[string]bool)
	var answers []string
	for _, t := range turns {
		for _, q := range t.Questions {
			asked[normalizeQuestion(q)] = true
		}
		answers = append(answers, strings.ToLower(t.Answer))
	}
	answerText := strings.Join(answers, " ")

	var batch []string
	add := func(q string) {
		if len(batch) >= batchSize {
			return
		}
		key := normalizeQuestion(q)
		if asked[key] {
			return
		}
		asked[key] = true
		batch = append(batch, q)
	}

	// Opening round anchors on the chief complaint.
	if len(turns) == 0 && chiefComplaint != "" {
		add(fmt.Sprintf("Can you describe in more detail: %s?", chiefComplaint))
	}

	// One probe informed by the latest answer.
	if len(turns) > 0 {
		last := strings.ToLower(turns[len(turns)-1].Answer)
		for _, f := range followUps {
			if strings.Contains(last, f.trigger) {
				add(f.question)
				break
			}
		}
	}

	for _, tp := range intakeTopics {
		if topicCovered(tp, asked, answerText) {
			continue
		}
		add(tp.question)
	}

	return batch, nil
}

func topicCovered(tp topic, asked map[string]bool, answerText string) bool {
	if asked[normalizeQuestion(tp.question)] {
		return true
	}
	for _, h := range tp.hints {
		if strings.Contains(answerText, h) {
			return true
		}
	}
	return false
}

// normalizeQuestion folds case, punctuation and spacing so rephrasings of
// the same question collide.
func normalizeQuestion(q string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(q)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
