package advisory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type fakeReporter struct {
	sent []string
}

func (f *fakeReporter) SendAdvisoryReport(_ context.Context, patientID string, _ []Suggestion) error {
	f.sent = append(f.sent, patientID)
	return nil
}

func newHandlerServer(t *testing.T, svc *Service, reporter Reporter) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc, reporter))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandlerAdviseNotFound(t *testing.T) {
	svc := newTestService(&fakeReader{texts: map[string]string{}}, &fakeRetriever{})
	srv := newHandlerServer(t, svc, nil)

	resp, err := http.Post(srv.URL+"/interviews/ghost/advisory", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandlerAdviseEmptyEvidence(t *testing.T) {
	svc := newTestService(&fakeReader{texts: map[string]string{"P1": "transcript"}}, &fakeRetriever{})
	srv := newHandlerServer(t, svc, nil)

	resp, err := http.Post(srv.URL+"/interviews/P1/advisory", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty evidence must be 200, got %d", resp.StatusCode)
	}
	var out AdviseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Suggestions == nil || len(out.Suggestions) != 0 {
		t.Fatalf("expected empty suggestion list, got %v", out.Suggestions)
	}
}

func TestHandlerSendReport(t *testing.T) {
	svc := newTestService(
		&fakeReader{texts: map[string]string{"P1": "cough transcript"}},
		&fakeRetriever{snippets: []Snippet{{Source: "g", Text: "cough guidance", Score: 0.9}}},
	)
	reporter := &fakeReporter{}
	srv := newHandlerServer(t, svc, reporter)

	resp, err := http.Post(srv.URL+"/interviews/P1/advisory/report", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status %d", resp.StatusCode)
	}
	if len(reporter.sent) != 1 || reporter.sent[0] != "P1" {
		t.Fatalf("report not delivered: %v", reporter.sent)
	}
}

func TestHandlerSendReportUnconfigured(t *testing.T) {
	svc := newTestService(&fakeReader{texts: map[string]string{"P1": "t"}}, &fakeRetriever{})
	srv := newHandlerServer(t, svc, nil)

	resp, err := http.Post(srv.URL+"/interviews/P1/advisory/report", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when delivery is unconfigured, got %d", resp.StatusCode)
	}
}
