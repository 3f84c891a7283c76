package advisory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"clinical-intake/internal/transcript"
)

type fakeReader struct {
	texts map[string]string
}

func (f *fakeReader) Read(_ context.Context, patientID string) (string, error) {
	text, ok := f.texts[patientID]
	if !ok {
		return "", fmt.Errorf("read transcript for patient %s: %w", patientID, transcript.ErrNotFound)
	}
	return text, nil
}

type fakeRetriever struct {
	snippets []Snippet
	err      error
	lastTopK int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int) ([]Snippet, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.snippets) {
		return f.snippets[:topK], nil
	}
	return f.snippets, nil
}

func newTestService(reader *fakeReader, retriever *fakeRetriever) *Service {
	return NewService(reader, retriever, NewSynthesizer(), nil)
}

func TestAdviseTranscriptNotFound(t *testing.T) {
	svc := newTestService(&fakeReader{texts: map[string]string{}}, &fakeRetriever{})
	if _, err := svc.Advise(context.Background(), "ghost", 3); !errors.Is(err, ErrTranscriptNotFound) {
		t.Fatalf("expected ErrTranscriptNotFound, got %v", err)
	}
}

func TestAdviseEmptyEvidence(t *testing.T) {
	reader := &fakeReader{texts: map[string]string{"P1": "patient reports cough"}}
	svc := newTestService(reader, &fakeRetriever{})

	out, err := svc.Advise(context.Background(), "P1", 3)
	if err != nil {
		t.Fatalf("zero evidence must not be an error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected zero suggestions, got %d", len(out))
	}
}

func TestAdvisePropagatesRetrievalErrors(t *testing.T) {
	reader := &fakeReader{texts: map[string]string{"P1": "text"}}
	for _, sentinel := range []error{ErrRetrievalUnavailable, ErrRetrievalTimeout} {
		retriever := &fakeRetriever{err: fmt.Errorf("%w: boom", sentinel)}
		svc := newTestService(reader, retriever)
		if _, err := svc.Advise(context.Background(), "P1", 3); !errors.Is(err, sentinel) {
			t.Fatalf("expected %v to propagate unchanged, got %v", sentinel, err)
		}
	}
}

func TestAdviseIdempotent(t *testing.T) {
	reader := &fakeReader{texts: map[string]string{"P1": "cough and fever for three days"}}
	retriever := &fakeRetriever{snippets: []Snippet{
		{Source: "a", Text: "cough evaluation guidance", Score: 0.9},
		{Source: "b", Text: "fever care guidance", Score: 0.6},
	}}
	svc := newTestService(reader, retriever)

	first, err := svc.Advise(context.Background(), "P1", 3)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	second, err := svc.Advise(context.Background(), "P1", 3)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical stored transcript must yield identical suggestions")
	}
}

func TestAdviseCapsAndOverfetches(t *testing.T) {
	reader := &fakeReader{texts: map[string]string{"P1": "transcript"}}
	var snippets []Snippet
	for i := 0; i < 10; i++ {
		snippets = append(snippets, Snippet{
			Source: fmt.Sprintf("src-%d", i),
			Text:   fmt.Sprintf("evidence item %d", i),
			Score:  1.0 - float64(i)*0.05,
		})
	}
	retriever := &fakeRetriever{snippets: snippets}
	svc := newTestService(reader, retriever)

	out, err := svc.Advise(context.Background(), "P1", 4)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if len(out) > 4 {
		t.Fatalf("maxItems=4 but got %d suggestions", len(out))
	}
	// The pipeline fetches more evidence than it will return.
	if retriever.lastTopK != 8 {
		t.Fatalf("expected topK=8 for maxItems=4, got %d", retriever.lastTopK)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Confidence > out[i-1].Confidence {
			t.Fatalf("ranking not monotone at %d", i)
		}
	}
}

func TestAdviseDefaultsMaxItems(t *testing.T) {
	reader := &fakeReader{texts: map[string]string{"P1": "transcript"}}
	retriever := &fakeRetriever{}
	svc := newTestService(reader, retriever)

	if _, err := svc.Advise(context.Background(), "P1", 0); err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if retriever.lastTopK != 2*DefaultMaxItems {
		t.Fatalf("expected default overfetch %d, got %d", 2*DefaultMaxItems, retriever.lastTopK)
	}
}
