package corpus

import (
	"encoding/json"
	"os"
)

type cacheFile struct {
	Model   string       `json:"model"`
	Entries []cacheEntry `json:"entries"`
}

type cacheEntry struct {
	Hash      string    `json:"hash"`
	Embedding []float32 `json:"embedding"`
}

// loadCache reads cached exemplar embeddings from disk. A missing file,
// unreadable content, or a model mismatch yields an empty map.
func loadCache(path, model string) map[string][]float32 {
	out := make(map[string][]float32)
	if path == "" {
		return out
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return out
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return out
	}
	if cf.Model != model {
		return out
	}

	for _, e := range cf.Entries {
		out[e.Hash] = e.Embedding
	}
	return out
}

// saveCache writes exemplar embeddings to disk.
func saveCache(path, model string, vectors map[string][]float32) error {
	if path == "" {
		return nil
	}

	entries := make([]cacheEntry, 0, len(vectors))
	for hash, vec := range vectors {
		entries = append(entries, cacheEntry{Hash: hash, Embedding: vec})
	}

	data, err := json.Marshal(cacheFile{Model: model, Entries: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
