// Package corpus supplies few-shot exemplars for the comment prompt.
// A built-in set of documented declarations ships with the binary; when an
// embedding endpoint is configured the exemplars are indexed in an HNSW
// graph and the one nearest to the target declaration is selected.
// Without embeddings the first exemplar of the target language is used.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/hnsw"

	defaults "github.com/autodoc-ai/autodoc/default"
)

// Exemplar is one documented declaration used as a few-shot example.
type Exemplar struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Comment  string `json:"comment"`
}

// Builtin returns the embedded exemplar set.
func Builtin() []Exemplar {
	var out []Exemplar
	if err := json.Unmarshal(defaults.ExemplarsJSON, &out); err != nil {
		panic("corpus: invalid embedded exemplars.json: " + err.Error())
	}
	return out
}

// Fallback returns the first exemplar of the given language.
func Fallback(exemplars []Exemplar, language string) (Exemplar, bool) {
	for _, ex := range exemplars {
		if ex.Language == language {
			return ex, true
		}
	}
	return Exemplar{}, false
}

// Index selects exemplars by vector similarity. A nil embedder disables
// similarity search; Nearest then behaves like Fallback.
type Index struct {
	embedder  *Embedder
	cachePath string
	exemplars []Exemplar

	mu     sync.RWMutex
	graph  *hnsw.Graph[string]
	byHash map[string]Exemplar
}

// NewIndex creates an exemplar index. cachePath may be empty to skip the
// on-disk embedding cache.
func NewIndex(embedder *Embedder, exemplars []Exemplar, cachePath string) *Index {
	return &Index{
		embedder:  embedder,
		cachePath: cachePath,
		exemplars: exemplars,
		graph:     hnsw.NewGraph[string](),
		byHash:    make(map[string]Exemplar),
	}
}

// Build embeds all exemplars and populates the graph. Vectors found in the
// disk cache are reused; newly embedded vectors are written back.
// Build is a no-op without an embedder.
func (ix *Index) Build(ctx context.Context) error {
	if ix.embedder == nil {
		return nil
	}

	cached := loadCache(ix.cachePath, ix.embedder.Model())

	var toEmbed []Exemplar
	var nodes []hnsw.Node[string]
	byHash := make(map[string]Exemplar, len(ix.exemplars))

	for _, ex := range ix.exemplars {
		h := hashExemplar(ex)
		byHash[h] = ex
		if vec, ok := cached[h]; ok {
			nodes = append(nodes, hnsw.MakeNode(h, vec))
			continue
		}
		toEmbed = append(toEmbed, ex)
	}

	if len(toEmbed) > 0 {
		texts := make([]string, len(toEmbed))
		for i, ex := range toEmbed {
			texts[i] = ex.Code
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(toEmbed) {
			return fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(toEmbed), len(vectors))
		}
		for i, ex := range toEmbed {
			h := hashExemplar(ex)
			nodes = append(nodes, hnsw.MakeNode(h, vectors[i]))
			cached[h] = vectors[i]
		}
		if err := saveCache(ix.cachePath, ix.embedder.Model(), cached); err != nil {
			slog.Warn("failed to save exemplar embedding cache", "path", ix.cachePath, "error", err)
		}
	}

	ix.mu.Lock()
	ix.graph.Add(nodes...)
	ix.byHash = byHash
	ix.mu.Unlock()

	return nil
}

// searchWidth is how many neighbors to pull before the language filter.
const searchWidth = 4

// Nearest returns the exemplar most similar to the given declaration body,
// restricted to the declaration's language. Retrieval failures degrade to
// the fixed fallback exemplar and never propagate.
func (ix *Index) Nearest(ctx context.Context, language, code string) (Exemplar, bool) {
	if ix.embedder == nil {
		return Fallback(ix.exemplars, language)
	}

	queryVec, err := ix.embedder.Embed(ctx, code)
	if err != nil {
		slog.Warn("exemplar embedding failed, using fallback", "error", err)
		return Fallback(ix.exemplars, language)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph.Len() == 0 {
		return Fallback(ix.exemplars, language)
	}

	neighbors := ix.graph.Search(queryVec, searchWidth)
	for _, n := range neighbors {
		ex, ok := ix.byHash[n.Key]
		if ok && ex.Language == language {
			return ex, true
		}
	}
	return Fallback(ix.exemplars, language)
}

func hashExemplar(ex Exemplar) string {
	h := sha256.Sum256([]byte(ex.Language + "\n" + ex.Code))
	return fmt.Sprintf("%x", h)
}
