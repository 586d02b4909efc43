package recommend_test

import (
	"fmt"
	"testing"

	"github.com/jonesrussell/book-discovery/internal/recommend"
)

func TestScorePeers_FiltersBelowThreshold(t *testing.T) {
	t.Parallel()

	target := set("b1", "b2", "b3")
	peers := map[string]map[string]struct{}{
		"R-0001": set("b1", "b2", "b4"), // jaccard 0.5
		"R-0002": set("b5"),             // jaccard 0
		"R-0003": set("b1"),             // jaccard 1/3
	}

	got := recommend.ScorePeers(target, peers, 0.1)

	if len(got) != 2 {
		t.Fatalf("expected 2 qualifying peers, got %d", len(got))
	}
	for _, p := range got {
		if p.Score < 0.1 {
			t.Errorf("peer %s returned with score %v below threshold", p.ReaderID, p.Score)
		}
	}
}

func TestScorePeers_SortedDescending(t *testing.T) {
	t.Parallel()

	target := set("b1", "b2", "b3", "b4")
	peers := map[string]map[string]struct{}{
		"R-0001": set("b1"),                   // 0.25
		"R-0002": set("b1", "b2", "b3", "b4"), // 1.0
		"R-0003": set("b1", "b2"),             // 0.5
	}

	got := recommend.ScorePeers(target, peers, 0.1)

	if len(got) != 3 {
		t.Fatalf("expected 3 peers, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("peers not sorted descending: %v before %v", got[i-1].Score, got[i].Score)
		}
	}
	if got[0].ReaderID != "R-0002" {
		t.Errorf("highest-similarity peer: got %s, want R-0002", got[0].ReaderID)
	}
}

func TestScorePeers_EmptyTarget(t *testing.T) {
	t.Parallel()

	peers := map[string]map[string]struct{}{
		"R-0001": set("b1", "b2"),
	}

	// Jaccard against an empty target is always 0; nothing qualifies.
	got := recommend.ScorePeers(set(), peers, 0.1)
	if len(got) != 0 {
		t.Fatalf("expected no qualifying peers for empty target, got %d", len(got))
	}
}

func TestScorePeers_KeepsPeerReadSets(t *testing.T) {
	t.Parallel()

	target := set("b1")
	peers := map[string]map[string]struct{}{
		"R-0001": set("b1", "b9"),
	}

	got := recommend.ScorePeers(target, peers, 0.1)
	if len(got) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(got))
	}
	if _, ok := got[0].Books["b9"]; !ok {
		t.Error("peer read set not carried through scoring")
	}
}

func TestScorePeers_ManyPeers(t *testing.T) {
	t.Parallel()

	target := set("b1", "b2")
	peers := make(map[string]map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		peers[fmt.Sprintf("R-%04d", i)] = set("b1", "b2")
	}

	got := recommend.ScorePeers(target, peers, 0.1)
	if len(got) != 100 {
		t.Fatalf("expected all 100 identical peers to qualify, got %d", len(got))
	}
}
