// internal/textindex/index.go
package textindex

import (
	"math"
	"sort"
	"sync/atomic"
)

// Chunk is the atomic retrieval unit: a span of text tagged with the section
// it was harvested from.
type Chunk struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// ScoredChunk pairs a corpus chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Index int     `json:"index"`
	Chunk Chunk   `json:"-"`
	Score float64 `json:"score"`
}

// termVector maps term to TF-IDF weight. Absent terms are implicitly zero.
type termVector map[string]float64

// Index holds the per-corpus IDF table together with one weighted term
// vector per chunk. It is immutable after Build returns.
type Index struct {
	generation uint64
	chunks     []Chunk
	idf        map[string]float64
	docVecs    []termVector
	docNorms   []float64
}

var generationCounter atomic.Uint64

// Build tokenizes every chunk, computes smoothed IDF values over the corpus,
// and materializes a normalized TF-IDF vector per chunk. The whole index is
// replaced on every call; nothing is incremental.
//
// Chunks that tokenize to nothing get an empty vector rather than a NaN
// weight from the zero-length division.
func Build(chunks []Chunk) *Index {
	docs := make([][]string, len(chunks))
	for i, c := range chunks {
		docs[i] = Tokenize(c.Text)
	}

	df := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log((n+1)/(float64(d)+1)) + 1
	}

	idx := &Index{
		generation: generationCounter.Add(1),
		chunks:     append([]Chunk(nil), chunks...),
		idf:        idf,
		docVecs:    make([]termVector, len(docs)),
		docNorms:   make([]float64, len(docs)),
	}
	for i, tokens := range docs {
		idx.docVecs[i] = vectorize(tokens, idf)
		idx.docNorms[i] = norm(idx.docVecs[i])
	}
	return idx
}

// Generation identifies this build. Later builds always carry larger values.
func (x *Index) Generation() uint64 { return x.generation }

// Size returns the number of indexed chunks.
func (x *Index) Size() int { return len(x.chunks) }

// Chunk returns the chunk at position i in the original corpus order.
func (x *Index) Chunk(i int) Chunk { return x.chunks[i] }

// IDF returns the inverse document frequency for a term, or zero when the
// term was not observed during the build.
func (x *Index) IDF(term string) float64 { return x.idf[term] }

// TopK vectorizes the query against the build-time IDF table and returns the
// min(k, corpus size) highest-scoring chunks, non-increasing by score. Ties
// keep original corpus order. k <= 0 yields an empty result.
func (x *Index) TopK(query string, k int) []ScoredChunk {
	if k <= 0 || len(x.docVecs) == 0 {
		return nil
	}
	q := vectorize(Tokenize(query), x.idf)
	qNorm := norm(q)

	scored := make([]ScoredChunk, len(x.docVecs))
	for i, dv := range x.docVecs {
		scored[i] = ScoredChunk{
			Index: i,
			Chunk: x.chunks[i],
			Score: cosine(q, qNorm, dv, x.docNorms[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// vectorize turns a token sequence into a length-normalized TF-IDF vector.
// Terms missing from the IDF table contribute nothing, so queries cannot
// introduce vocabulary the build never saw.
func vectorize(tokens []string, idf map[string]float64) termVector {
	vec := make(termVector)
	if len(tokens) == 0 {
		return vec
	}
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	total := float64(len(tokens))
	for term, count := range tf {
		if w := (float64(count) / total) * idf[term]; w != 0 {
			vec[term] = w
		}
	}
	return vec
}

func norm(v termVector) float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// cosine computes dot(a,b) / (|a| * |b|), defined as zero when either norm
// is zero. Both vectors are non-negative, so the result stays in [0, 1].
func cosine(a termVector, aNorm float64, b termVector, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	dot := 0.0
	for term, av := range a {
		dot += av * b[term]
	}
	return dot / (aNorm * bNorm)
}
