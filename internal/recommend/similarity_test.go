package recommend_test

import (
	"fmt"
	"testing"

	"github.com/jonesrussell/book-discovery/internal/recommend"
)

func set(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    map[string]struct{}
		b    map[string]struct{}
		want float64
	}{
		{"both empty", set(), set(), 0},
		{"identical", set("b1", "b2", "b3"), set("b1", "b2", "b3"), 1},
		{"disjoint", set("b1", "b2"), set("b3", "b4"), 0},
		{"half overlap", set("b1", "b2", "b3"), set("b1", "b2", "b4"), 0.5},
		{"one empty", set("b1"), set(), 0},
		{"subset", set("b1"), set("b1", "b2", "b3", "b4"), 0.25},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := recommend.Jaccard(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Jaccard = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	t.Parallel()

	a := set("b1", "b2", "b3", "b4", "b5")
	b := set("b4", "b5", "b6")

	ab := recommend.Jaccard(a, b)
	ba := recommend.Jaccard(b, a)

	if ab != ba {
		t.Errorf("Jaccard not symmetric: Jaccard(a,b)=%v, Jaccard(b,a)=%v", ab, ba)
	}
}

func TestJaccard_BoundedUnitInterval(t *testing.T) {
	t.Parallel()

	// A spread of overlap ratios; every result must stay within [0, 1].
	for i := 0; i < 10; i++ {
		a := set("shared")
		b := set("shared")
		for j := 0; j < i; j++ {
			b[fmt.Sprintf("extra-%d", j)] = struct{}{}
		}

		got := recommend.Jaccard(a, b)
		if got < 0 || got > 1 {
			t.Errorf("Jaccard out of [0,1]: %v", got)
		}
	}
}
