package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
)

func TestDispatchRendersTemplateAndSucceeds(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newFakeStore()
	rl := newTestRelay(f, srv.Client())

	partner := models.Partner{
		Name:   "Test Partner",
		URL:    srv.URL + "/postback?click_id=[CLICK_ID]&amount=[REWARD]",
		Status: models.PartnerActive,
	}
	event := models.ConversionEvent{
		EventID: "ev-1",
		ClickID: "abc123",
		Payout:  "5.50",
	}

	attempt := rl.Dispatch(context.Background(), partner, event)

	if want := "click_id=abc123&amount=5.50"; gotQuery != want {
		t.Errorf("partner received query %q, want %q", gotQuery, want)
	}
	if !attempt.Success {
		t.Errorf("attempt = %+v, want success", attempt)
	}
	if attempt.ResponseCode == nil || *attempt.ResponseCode != http.StatusOK {
		t.Errorf("response code = %v, want 200", attempt.ResponseCode)
	}
	if want := srv.URL + "/postback?click_id=abc123&amount=5.50"; attempt.URL != want {
		t.Errorf("attempt URL = %q, want fully rendered %q", attempt.URL, want)
	}
	if len(f.outbound) != 1 {
		t.Fatalf("got %d log rows, want exactly one per dispatch", len(f.outbound))
	}
}

func TestDispatchNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newFakeStore()
	rl := newTestRelay(f, srv.Client())

	attempt := rl.Dispatch(context.Background(), models.Partner{Name: "P", URL: srv.URL}, models.ConversionEvent{EventID: "ev-1", ClickID: "abc"})

	if attempt.Success {
		t.Error("5xx from partner must record a failed attempt")
	}
	if attempt.ResponseCode == nil || *attempt.ResponseCode != http.StatusInternalServerError {
		t.Errorf("response code = %v, want 500", attempt.ResponseCode)
	}
	if len(f.outbound) != 1 {
		t.Fatalf("got %d log rows, want 1", len(f.outbound))
	}
}

func TestDispatchTimeoutRecordsFailureWithNilCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	f := newFakeStore()
	client := &http.Client{Timeout: 50 * time.Millisecond}
	rl := newTestRelay(f, client)

	attempt := rl.Dispatch(context.Background(), models.Partner{Name: "Slow Partner", URL: srv.URL}, models.ConversionEvent{EventID: "ev-1", ClickID: "abc"})

	if attempt.Success {
		t.Error("timeout must record a failed attempt")
	}
	if attempt.ResponseCode != nil {
		t.Errorf("response code = %v, want nil on transport failure", *attempt.ResponseCode)
	}
	if len(f.outbound) != 1 {
		t.Fatalf("got %d log rows, want 1 even on timeout", len(f.outbound))
	}
}

func TestDispatchUnreachableHostRecordsFailure(t *testing.T) {
	f := newFakeStore()
	client := &http.Client{Timeout: 200 * time.Millisecond}
	rl := newTestRelay(f, client)

	// Closed port on loopback: connection refused, no HTTP status.
	attempt := rl.Dispatch(context.Background(), models.Partner{Name: "Dead Partner", URL: "http://127.0.0.1:1/cb"}, models.ConversionEvent{EventID: "ev-1", ClickID: "abc"})

	if attempt.Success || attempt.ResponseCode != nil {
		t.Errorf("attempt = %+v, want failure with nil code", attempt)
	}
	if len(f.outbound) != 1 {
		t.Fatalf("got %d log rows, want 1", len(f.outbound))
	}
}
