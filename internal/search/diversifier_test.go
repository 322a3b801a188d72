package search

import (
	"strings"
	"testing"

	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
)

func categoryIDs() []string {
	out := make([]string, 0, len(filter.DefaultCategories))
	for _, c := range filter.DefaultCategories {
		out = append(out, c.ID)
	}
	return out
}

func TestExpandShape(t *testing.T) {
	d := NewDiversifierSeeded(42)
	got := d.Expand("قصص اطفال", categoryIDs())

	if got[0] != "قصص اطفال" {
		t.Fatalf("first variant must be the original query, got %q", got[0])
	}
	if len(got) > 1+maxExtraVariants {
		t.Fatalf("variant count = %d, want at most %d", len(got), 1+maxExtraVariants)
	}
	for _, v := range got[1:] {
		if !strings.HasPrefix(v, "قصص اطفال ") {
			t.Errorf("variant %q must extend the original query", v)
		}
		if v == "قصص اطفال " {
			t.Errorf("variant must append a non-empty term")
		}
	}
}

func TestExpandNoCategories(t *testing.T) {
	d := NewDiversifierSeeded(1)
	got := d.Expand("cats", nil)
	if len(got) != 1 || got[0] != "cats" {
		t.Fatalf("no categories must yield only the original query, got %v", got)
	}
}

func TestExpandDeterministicWithSeed(t *testing.T) {
	a := NewDiversifierSeeded(7).Expand("space", categoryIDs())
	b := NewDiversifierSeeded(7).Expand("space", categoryIDs())
	if len(a) != len(b) {
		t.Fatalf("same seed, different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("variant %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestExpandDistinctCategories(t *testing.T) {
	// Each run picks categories without replacement, so the extra
	// variants never repeat a term from the same pick.
	d := NewDiversifierSeeded(99)
	got := d.Expand("x", categoryIDs())
	seen := make(map[string]struct{})
	for _, v := range got {
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate variant %q", v)
		}
		seen[v] = struct{}{}
	}
}
