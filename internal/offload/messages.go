// internal/offload/messages.go
// Package offload runs index builds, similarity searches, and CSV profiling
// on a background goroutine behind a request/response message protocol.
// Callers correlate replies by request id and enforce their own deadline;
// when the host is unavailable or too slow, the same computation runs
// synchronously in the caller as a degraded path.
package offload

import (
	"math/rand"
	"strconv"

	"github.com/mgearhart/foliolab/internal/tabular"
	"github.com/mgearhart/foliolab/internal/textindex"
)

// Request types understood by the host.
const (
	TypeBuild    = "tfidf_build"
	TypeTopK     = "tfidf_topk"
	TypeCSVParse = "csv_parse"
)

// Response types emitted by the host.
const (
	TypeReady      = "tfidf_ready"
	TypeTopKResult = "tfidf_topk_result"
	TypeCSVResult  = "csv_result"
	TypeError      = "error"
)

// Request is one message to the host. Which payload fields are meaningful
// depends on Type.
type Request struct {
	Type   string            `json:"type"`
	ReqID  string            `json:"reqId,omitempty"`
	Chunks []textindex.Chunk `json:"chunks,omitempty"`
	Query  string            `json:"query,omitempty"`
	K      int               `json:"k,omitempty"`
	Text   string            `json:"text,omitempty"`
}

// Response is one message from the host. TypeReady responses carry no ReqID:
// the index is host-global and the latest build wins, so readiness is a
// broadcast, not a correlated reply.
type Response struct {
	Type       string                  `json:"type"`
	ReqID      string                  `json:"reqId,omitempty"`
	Generation uint64                  `json:"generation,omitempty"`
	Items      []textindex.ScoredChunk `json:"items,omitempty"`
	Headers    []string                `json:"headers,omitempty"`
	Rows       [][]string              `json:"rows,omitempty"`
	Profile    *tabular.Profile        `json:"profile,omitempty"`
	Message    string                  `json:"message,omitempty"`
}

// NewReqID returns a short random correlation id. Collisions are accepted as
// negligible; this is not a cryptographic identifier.
func NewReqID() string {
	return strconv.FormatUint(rand.Uint64(), 36)
}
