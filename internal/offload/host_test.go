package offload

import (
	"context"
	"testing"
	"time"

	"github.com/mgearhart/foliolab/internal/textindex"
)

func testChunks() []textindex.Chunk {
	return []textindex.Chunk{
		{ID: "skills:0", Section: "Skills", Text: "Go and Kubernetes tooling."},
		{ID: "exp:0", Section: "Experience", Text: "Shipped a billing platform."},
		{ID: "exp:1", Section: "Experience", Text: "Operated Kubernetes clusters."},
	}
}

func TestBuildThenTopK(t *testing.T) {
	t.Parallel()
	h := NewHost(2 * time.Second)
	defer h.Close()

	gen, err := h.Build(context.Background(), testChunks())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if gen == 0 {
		t.Fatalf("expected non-zero generation")
	}

	items, err := h.TopK(context.Background(), "kubernetes", 2)
	if err != nil {
		t.Fatalf("TopK error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Chunk.Text == "" {
		t.Fatalf("expected chunk payload on items")
	}
}

func TestTopKBeforeBuild(t *testing.T) {
	t.Parallel()
	h := NewHost(2 * time.Second)
	defer h.Close()

	items, err := h.TopK(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("TopK error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result before build, got %d", len(items))
	}
}

// TestRequestCorrelation issues two concurrent searches and verifies each
// wait channel receives exactly one response carrying its own request id.
func TestRequestCorrelation(t *testing.T) {
	t.Parallel()
	h := NewHost(2 * time.Second)
	defer h.Close()

	if _, err := h.Build(context.Background(), testChunks()); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	reqA, reqB := NewReqID(), NewReqID()
	if reqA == reqB {
		t.Fatalf("request ids collided")
	}
	chA, err := h.Send(Request{Type: TypeTopK, ReqID: reqA, Query: "billing", K: 1})
	if err != nil {
		t.Fatal(err)
	}
	chB, err := h.Send(Request{Type: TypeTopK, ReqID: reqB, Query: "kubernetes", K: 1})
	if err != nil {
		t.Fatal(err)
	}

	respA, respB := <-chA, <-chB
	if respA.ReqID != reqA || respA.Type != TypeTopKResult {
		t.Fatalf("response A miscorrelated: %+v", respA)
	}
	if respB.ReqID != reqB || respB.Type != TypeTopKResult {
		t.Fatalf("response B miscorrelated: %+v", respB)
	}

	select {
	case extra := <-chA:
		t.Fatalf("unexpected second response: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnknownTypeReportsError(t *testing.T) {
	t.Parallel()
	h := NewHost(2 * time.Second)
	defer h.Close()

	reqID := NewReqID()
	ch, err := h.Send(Request{Type: "bogus", ReqID: reqID})
	if err != nil {
		t.Fatal(err)
	}
	resp := <-ch
	if resp.Type != TypeError || resp.ReqID != reqID {
		t.Fatalf("expected correlated error response, got %+v", resp)
	}
	if resp.Message == "" {
		t.Fatalf("expected error message")
	}
}

func TestCSVThroughHost(t *testing.T) {
	t.Parallel()
	h := NewHost(2 * time.Second)
	defer h.Close()

	table, profile, err := h.ProfileCSV(context.Background(), "a,b\n1,2\n3,4\n")
	if err != nil {
		t.Fatalf("ProfileCSV error: %v", err)
	}
	if len(table.Headers) != 2 || len(table.Rows) != 2 {
		t.Fatalf("unexpected table shape: %+v", table)
	}
	if profile.Columns != 2 || profile.Rows != 2 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

// TestClosedHostFallsBack verifies the synchronous degraded path: a closed
// host still serves every operation in the caller's goroutine.
func TestClosedHostFallsBack(t *testing.T) {
	t.Parallel()
	h := NewHost(100 * time.Millisecond)
	h.Close()

	if _, err := h.Build(context.Background(), testChunks()); err != nil {
		t.Fatalf("Build fallback error: %v", err)
	}
	items, err := h.TopK(context.Background(), "kubernetes", 1)
	if err != nil {
		t.Fatalf("TopK fallback error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from fallback, got %d", len(items))
	}
	if _, _, err := h.ProfileCSV(context.Background(), "a\n1\n"); err != nil {
		t.Fatalf("ProfileCSV fallback error: %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()
	h := NewHost(5 * time.Second)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A pre-cancelled context still races request completion; accept either
	// a context error or a served result, but never a hang.
	done := make(chan struct{})
	go func() {
		_, _ = h.TopK(ctx, "q", 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("TopK hung on cancelled context")
	}
}
