package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"clinical-intake/internal/interview"
	"clinical-intake/internal/transcript"
)

// Full flow: conduct an interview, persist the transcript through the file
// store, then run the advisory pipeline against a stubbed vector service.
func TestInterviewToAdvisoryFlow(t *testing.T) {
	ctx := context.Background()

	store := transcript.NewFileStore(t.TempDir())
	engine := interview.NewEngine(interview.NewSessionStore(), interview.NewTemplateStrategy(), store, interview.PairJointly, nil)

	batch, err := engine.Start(ctx, "P1", "cough", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(batch) == 0 {
		t.Fatal("expected opening questions")
	}

	answers := 0
	for len(batch) > 0 {
		batch, err = engine.Answer(ctx, "P1", fmt.Sprintf("cough answer %d", answers))
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		answers++
		if answers > 50 {
			t.Fatal("interview did not terminate")
		}
	}

	tr, err := engine.End(ctx, "P1")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(tr.Turns) != answers {
		t.Fatalf("transcript has %d turns, submitted %d answers", len(tr.Turns), answers)
	}

	var served []Snippet
	vectorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = []Snippet{
			{Source: "guideline-cough", Text: "persistent cough guidance for adults", Score: 0.88},
			{Source: "guideline-general", Text: "general intake assessment notes", Score: 0.45},
		}
		json.NewEncoder(w).Encode(map[string]any{"results": served})
	}))
	defer vectorSrv.Close()

	svc := NewService(store, NewVectorClient(vectorSrv.URL, "", 5*time.Second), NewSynthesizer(), nil)

	suggestions, err := svc.Advise(ctx, "P1", 3)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions from retrieved evidence")
	}

	sources := make(map[string]bool)
	for _, sn := range served {
		sources[sn.Source] = true
	}
	for i, sg := range suggestions {
		if len(sg.Citations) == 0 {
			t.Fatalf("suggestion %d cites nothing", i)
		}
		for _, c := range sg.Citations {
			if !sources[c.Source] {
				t.Fatalf("suggestion %d cites %q which was never retrieved", i, c.Source)
			}
		}
		if i > 0 && sg.Confidence > suggestions[i-1].Confidence {
			t.Fatalf("confidence increased at rank %d", i)
		}
	}

	// Same stored transcript, same configuration: identical output.
	again, err := svc.Advise(ctx, "P1", 3)
	if err != nil {
		t.Fatalf("Advise again: %v", err)
	}
	if !reflect.DeepEqual(suggestions, again) {
		t.Fatal("advisory is not idempotent over an unchanged transcript")
	}
}
