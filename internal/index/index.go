package index

import (
	"math"
	"sort"
	"sync"
)

// Entry pairs a chunk's text with its embedding vector.
type Entry struct {
	Text   string
	Vector []float32
}

// Index is an in-memory vector store keyed by chunk text. It is rebuilt on
// every process start; writers are the ingestion workers, readers are
// request-time retrievals. Entries are immutable once inserted and the last
// write for a key wins.
type Index struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

func New() *Index {
	return &Index{entries: make(map[string][]float32)}
}

func (ix *Index) Insert(text string, vector []float32) {
	ix.mu.Lock()
	ix.entries[text] = vector
	ix.mu.Unlock()
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Snapshot returns the entries in deterministic (key) order, suitable for
// similarity scoring.
func (ix *Index) Snapshot() []Entry {
	ix.mu.RLock()
	entries := make([]Entry, 0, len(ix.entries))
	for text, vector := range ix.entries {
		entries = append(entries, Entry{Text: text, Vector: vector})
	}
	ix.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Text < entries[j].Text })
	return entries
}

// TopK scans every entry, ranks by cosine similarity to query and returns
// the texts of the k most similar chunks, most similar first. Ties keep
// snapshot order. Linear in index size, which stays at a few hundred chunks
// for a single reference document.
func (ix *Index) TopK(query []float32, k int) []string {
	if k <= 0 {
		return nil
	}

	entries := ix.Snapshot()
	if len(entries) == 0 {
		return nil
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, len(entries))
	for i, e := range entries {
		ranked[i] = scored{text: e.Text, score: Cosine(query, e.Vector)}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	texts := make([]string, k)
	for i := 0; i < k; i++ {
		texts[i] = ranked[i].text
	}
	return texts
}

// Cosine is the normalized dot product of a and b. A zero-norm vector on
// either side scores 0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
