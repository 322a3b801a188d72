// Package search drives the discovery pipeline: query diversification,
// provider-chain fetching, continuation pagination, dedup, filtering, and
// the short-TTL result cache.
package search

import (
	"math/rand/v2"

	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
)

// maxExtraVariants caps diversification fan-out.
const maxExtraVariants = 3

// Diversifier expands one query into category-biased variants. Under
// default-deny the raw provider ranking is topic-agnostic and most of it
// gets filtered out downstream; steering the query itself toward allowed
// topics rescues yield. Randomness is intentional for variety across
// calls, but the source is injectable so tests get reproducible picks.
type Diversifier struct {
	rng *rand.Rand
}

// NewDiversifier uses a process-seeded random source.
func NewDiversifier() *Diversifier {
	return &Diversifier{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewDiversifierSeeded pins the random source for reproducible expansion.
func NewDiversifierSeeded(seed uint64) *Diversifier {
	return &Diversifier{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Expand returns the original query followed by at most three variants,
// each appending one random term from one random allowed category, picked
// without category replacement.
func (d *Diversifier) Expand(query string, allowedCategories []string) []string {
	out := []string{query}

	pool := make([]string, 0, len(allowedCategories))
	for _, id := range allowedCategories {
		if len(filter.TermsFor(id)) > 0 {
			pool = append(pool, id)
		}
	}
	d.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := min(len(pool), maxExtraVariants)
	for _, id := range pool[:n] {
		terms := filter.TermsFor(id)
		term := terms[d.rng.IntN(len(terms))]
		out = append(out, query+" "+term)
	}
	return out
}
