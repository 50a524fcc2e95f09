// Package index maintains the in-memory inverted keyword index:
// normalized keyword -> set of capsule ids. The index is derived state,
// rebuilt from the capsules table on startup and never persisted.
package index

import (
	"sort"
	"sync"

	"github.com/kailabs/kapsel/internal/capsule"
)

// Seed carries the indexable fields of one stored capsule, used to
// rebuild the index on load.
type Seed struct {
	ID         string
	Domain     string
	Discipline string
	Tags       []string
}

// Index is safe for concurrent use. Writers hold the lock for the single
// map insert per keyword; there is no finer-grained partitioning to
// exploit.
type Index struct {
	mu       sync.RWMutex
	keywords map[string]map[string]struct{}
}

// New returns an empty index.
func New() *Index {
	return &Index{keywords: make(map[string]map[string]struct{})}
}

// Add registers the capsule id under each keyword. Keywords are assumed
// normalized (capsule.KeywordsOf output); empty keywords are ignored.
func (ix *Index) Add(id string, keywords []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, k := range keywords {
		if k == "" {
			continue
		}
		ids, ok := ix.keywords[k]
		if !ok {
			ids = make(map[string]struct{})
			ix.keywords[k] = ids
		}
		ids[id] = struct{}{}
	}
}

// Lookup returns the sorted capsule ids indexed under the keyword. An
// unknown keyword yields an empty slice, never an error.
func (ix *Index) Lookup(keyword string) []string {
	keyword = capsule.Normalize(keyword)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make([]string, 0, len(ix.keywords[keyword]))
	for id := range ix.keywords[keyword] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rebuild replaces the index contents from stored capsule rows.
func (ix *Index) Rebuild(seeds []Seed) {
	fresh := make(map[string]map[string]struct{})
	for _, s := range seeds {
		for _, k := range capsule.KeywordsOf(s.Domain, s.Discipline, s.Tags) {
			ids, ok := fresh[k]
			if !ok {
				ids = make(map[string]struct{})
				fresh[k] = ids
			}
			ids[s.ID] = struct{}{}
		}
	}

	ix.mu.Lock()
	ix.keywords = fresh
	ix.mu.Unlock()
}

// KeywordCount returns the number of distinct indexed keywords.
func (ix *Index) KeywordCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keywords)
}
