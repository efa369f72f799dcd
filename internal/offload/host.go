// internal/offload/host.go
package offload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mgearhart/foliolab/internal/tabular"
	"github.com/mgearhart/foliolab/internal/textindex"
)

// DefaultTimeout is how long a caller waits for the host before falling back
// to synchronous execution.
const DefaultTimeout = 8 * time.Second

// ErrTimeout is returned by Send-level waits when the host does not answer
// within the deadline. The host may still finish and reply late; that reply
// is dropped unobserved.
var ErrTimeout = errors.New("worker timeout")

// Host owns one background goroutine, started lazily on first use, that
// serves all offloaded requests serially. The current index is a single
// shared slot: each build replaces it wholesale, and a search pins whichever
// immutable snapshot is current when the request is dequeued.
type Host struct {
	timeout  time.Duration
	requests chan Request
	quit     chan struct{}

	mu      sync.Mutex
	pending map[string]chan Response
	ready   map[uint64]chan Response
	nextKey uint64
	started bool
	closed  bool

	index atomic.Pointer[textindex.Index]
}

// NewHost creates a host with the given caller-side timeout; zero or
// negative means DefaultTimeout.
func NewHost(timeout time.Duration) *Host {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Host{
		timeout:  timeout,
		requests: make(chan Request, 16),
		quit:     make(chan struct{}),
		pending:  make(map[string]chan Response),
		ready:    make(map[uint64]chan Response),
	}
}

// Close stops accepting new requests. In-flight work finishes unobserved;
// subsequent calls take the synchronous path.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.quit)
}

// Send enqueues a request and returns a channel that receives exactly one
// matching response. The caller owns the wait; an abandoned wait leaves the
// late response to be discarded by the delivery side.
func (h *Host) Send(req Request) (<-chan Response, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, errors.New("offload host closed")
	}
	if !h.started {
		h.started = true
		go h.loop()
	}
	ch := make(chan Response, 1)
	if req.Type == TypeBuild {
		key := h.nextKey
		h.nextKey++
		h.ready[key] = ch
	} else {
		h.pending[req.ReqID] = ch
	}
	h.mu.Unlock()

	select {
	case h.requests <- req:
		return ch, nil
	case <-h.quit:
		h.abandon(req.ReqID)
		return nil, errors.New("offload host closed")
	}
}

func (h *Host) loop() {
	for {
		select {
		case req := <-h.requests:
			h.handle(req)
		case <-h.quit:
			return
		}
	}
}

// handle processes one request. Panics are converted into error responses so
// malformed input can never take the host down.
func (h *Host) handle(req Request) {
	defer func() {
		if r := recover(); r != nil {
			h.deliver(req, Response{Type: TypeError, ReqID: req.ReqID, Message: fmt.Sprint(r)})
		}
	}()

	switch req.Type {
	case TypeBuild:
		idx := textindex.Build(req.Chunks)
		h.index.Store(idx)
		h.deliver(req, Response{Type: TypeReady, Generation: idx.Generation()})
	case TypeTopK:
		var items []textindex.ScoredChunk
		if idx := h.index.Load(); idx != nil {
			items = idx.TopK(req.Query, req.K)
		}
		h.deliver(req, Response{Type: TypeTopKResult, ReqID: req.ReqID, Items: items})
	case TypeCSVParse:
		table := tabular.ParseCSV(req.Text)
		profile := tabular.ProfileTable(table)
		h.deliver(req, Response{
			Type:    TypeCSVResult,
			ReqID:   req.ReqID,
			Headers: table.Headers,
			Rows:    table.Rows,
			Profile: &profile,
		})
	default:
		h.deliver(req, Response{Type: TypeError, ReqID: req.ReqID, Message: fmt.Sprintf("unknown request type %q", req.Type)})
	}
}

// deliver routes a response to its waiter. Ready events fan out to every
// registered build waiter; everything else correlates by request id. A
// response whose waiter already gave up is dropped.
func (h *Host) deliver(req Request, resp Response) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if resp.Type == TypeReady || (resp.Type == TypeError && req.Type == TypeBuild) {
		for key, ch := range h.ready {
			select {
			case ch <- resp:
			default:
			}
			delete(h.ready, key)
		}
		return
	}
	if ch, ok := h.pending[resp.ReqID]; ok {
		delete(h.pending, resp.ReqID)
		select {
		case ch <- resp:
		default:
		}
	}
}

// await blocks for a response, the caller's context, or the host timeout.
func (h *Host) await(ctx context.Context, ch <-chan Response, reqID string) (Response, error) {
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		if resp.Type == TypeError {
			return resp, errors.New(resp.Message)
		}
		return resp, nil
	case <-timer.C:
		h.abandon(reqID)
		return Response{}, ErrTimeout
	case <-ctx.Done():
		h.abandon(reqID)
		return Response{}, ctx.Err()
	}
}

func (h *Host) abandon(reqID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, reqID)
}

// Build indexes the corpus on the host, falling back to an in-caller build
// when the host is unavailable or misses the deadline. Either way the shared
// index slot holds the result afterwards.
func (h *Host) Build(ctx context.Context, chunks []textindex.Chunk) (uint64, error) {
	ch, err := h.Send(Request{Type: TypeBuild, Chunks: chunks})
	if err == nil {
		resp, werr := h.await(ctx, ch, "")
		if werr == nil {
			return resp.Generation, nil
		}
		if errors.Is(werr, context.Canceled) || errors.Is(werr, context.DeadlineExceeded) {
			return 0, werr
		}
	}
	idx := textindex.Build(chunks)
	h.index.Store(idx)
	return idx.Generation(), nil
}

// TopK searches the current index on the host, computing synchronously on
// timeout or when the host is down. An empty result (never an error) is
// returned when no index has been built.
func (h *Host) TopK(ctx context.Context, query string, k int) ([]textindex.ScoredChunk, error) {
	reqID := NewReqID()
	ch, err := h.Send(Request{Type: TypeTopK, ReqID: reqID, Query: query, K: k})
	if err == nil {
		resp, werr := h.await(ctx, ch, reqID)
		if werr == nil {
			return resp.Items, nil
		}
		if errors.Is(werr, context.Canceled) || errors.Is(werr, context.DeadlineExceeded) {
			return nil, werr
		}
	}
	idx := h.index.Load()
	if idx == nil {
		return nil, nil
	}
	return idx.TopK(query, k), nil
}

// ProfileCSV parses and profiles delimited text on the host, with the same
// synchronous fallback policy as the other operations.
func (h *Host) ProfileCSV(ctx context.Context, text string) (tabular.Table, tabular.Profile, error) {
	reqID := NewReqID()
	ch, err := h.Send(Request{Type: TypeCSVParse, ReqID: reqID, Text: text})
	if err == nil {
		resp, werr := h.await(ctx, ch, reqID)
		if werr == nil {
			return tabular.Table{Headers: resp.Headers, Rows: resp.Rows}, *resp.Profile, nil
		}
		if errors.Is(werr, context.Canceled) || errors.Is(werr, context.DeadlineExceeded) {
			return tabular.Table{}, tabular.Profile{}, werr
		}
	}
	table := tabular.ParseCSV(text)
	return table, tabular.ProfileTable(table), nil
}

// Index exposes the current index snapshot, or nil before the first build.
func (h *Host) Index() *textindex.Index {
	return h.index.Load()
}
