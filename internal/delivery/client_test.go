package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	"github.com/Mid-D-Man/SubashaVentures-sub003/pkg/id"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Options{
		IngestURL: url,
		Timeout:   2 * time.Second,
		Logger:    logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard))),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func testBatch(t *testing.T, n int) interaction.Batch {
	t.Helper()
	gen := id.NewGenerator()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := make([]interaction.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, interaction.New(gen.Next(), int64(i+1), "u1", interaction.KindView, t0.Add(time.Duration(i)*time.Second)))
	}
	return interaction.NewBatch(events, t0.Add(time.Minute))
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error for missing URL")
	}
}

func TestDeliverWireShape(t *testing.T) {
	type captured struct {
		method string
		auth   string
		ctype  string
		body   []byte
	}
	var got captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			method: r.Method,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
			body:   body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	batch := testBatch(t, 3)
	if err := newTestClient(t, srv.URL).Deliver(context.Background(), batch, "tok-123"); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if got.method != http.MethodPost {
		t.Fatalf("method = %s", got.method)
	}
	if got.auth != "Bearer tok-123" {
		t.Fatalf("authorization = %q", got.auth)
	}
	if got.ctype != "application/json" {
		t.Fatalf("content type = %q", got.ctype)
	}

	var wire struct {
		Interactions []struct {
			SubjectID  int64  `json:"subjectId"`
			ActorID    string `json:"actorId"`
			Kind       string `json:"kind"`
			OccurredAt string `json:"occurredAt"`
		} `json:"interactions"`
		BatchTimestamp string `json:"batchTimestamp"`
		BatchID        string `json:"batchId"`
	}
	if err := json.Unmarshal(got.body, &wire); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(wire.Interactions) != 3 {
		t.Fatalf("interactions = %d, want 3", len(wire.Interactions))
	}
	if wire.BatchID != batch.ID {
		t.Fatalf("batchId = %q, want %q", wire.BatchID, batch.ID)
	}
	if wire.BatchTimestamp == "" {
		t.Fatalf("batchTimestamp missing")
	}
	first := wire.Interactions[0]
	if first.SubjectID != 1 || first.ActorID != "u1" || first.Kind != "view" || first.OccurredAt == "" {
		t.Fatalf("first interaction = %+v", first)
	}
}

func TestDeliverAcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	if err := newTestClient(t, srv.URL).Deliver(context.Background(), testBatch(t, 1), "tok"); err != nil {
		t.Fatalf("deliver: %v", err)
	}
}

func TestDeliverNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "ingest backlog, retry later")
	}))
	t.Cleanup(srv.Close)

	err := newTestClient(t, srv.URL).Deliver(context.Background(), testBatch(t, 1), "tok")
	if err == nil {
		t.Fatalf("expected error for 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error %q does not carry the status", err)
	}
	if !strings.Contains(err.Error(), "retry later") {
		t.Fatalf("error %q does not carry the response excerpt", err)
	}
}

func TestDeliverDiagnosticIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, strings.Repeat("x", 8<<10))
	}))
	t.Cleanup(srv.Close)

	err := newTestClient(t, srv.URL).Deliver(context.Background(), testBatch(t, 1), "tok")
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	if len(err.Error()) > maxDiagnosticBytes+128 {
		t.Fatalf("diagnostic not bounded: %d bytes", len(err.Error()))
	}
}

func TestDeliverTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if err := newTestClient(t, srv.URL).Deliver(context.Background(), testBatch(t, 1), "tok"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestDeliverHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Options{
		IngestURL: srv.URL,
		Timeout:   30 * time.Millisecond,
		Logger:    logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard))),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Deliver(context.Background(), testBatch(t, 1), "tok"); err == nil {
		t.Fatalf("expected deadline error")
	}
}

func TestDeliverHonorsCallerContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestClient(t, srv.URL).Deliver(ctx, testBatch(t, 1), "tok")
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected cancellation error")
		}
	case <-time.After(time.Second):
		t.Fatalf("deliver did not return after cancellation")
	}
}
