package recommend

import "sort"

// PeerScore is one peer's similarity to the target reader, together with the
// peer's read set. Request-scoped.
type PeerScore struct {
	ReaderID string
	Score    float64
	Books    map[string]struct{}
}

// ScorePeers computes the Jaccard similarity between the target read set and
// every peer's read set, keeps peers scoring at least minScore, and returns
// them sorted by score descending.
//
// Ties carry no guaranteed secondary order: downstream ranking breaks ties
// alphabetically by book title, not by peer position.
func ScorePeers(
	target map[string]struct{},
	peers map[string]map[string]struct{},
	minScore float64,
) []PeerScore {
	scored := make([]PeerScore, 0, len(peers))
	for readerID, books := range peers {
		score := Jaccard(target, books)
		if score < minScore {
			continue
		}
		scored = append(scored, PeerScore{
			ReaderID: readerID,
			Score:    score,
			Books:    books,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
