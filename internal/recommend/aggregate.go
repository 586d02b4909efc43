package recommend

// Candidate accumulates the weighted score for one unread book across
// contributing peers. Peers holds contributor ids in processing order, which
// is descending similarity when the input peers are pre-sorted.
type Candidate struct {
	Score float64
	Peers []string
}

// Aggregate builds the weighted candidate pool from ranked peers. For every
// book a peer has read that is not in exclude, the peer's similarity score is
// added to the book's weighted score and the peer is appended to its
// contributor list. A book recommended by several similar peers therefore
// outranks one recommended by a single peer.
func Aggregate(peers []PeerScore, exclude map[string]struct{}) map[string]*Candidate {
	candidates := make(map[string]*Candidate)

	for _, peer := range peers {
		for bookID := range peer.Books {
			if _, read := exclude[bookID]; read {
				continue
			}

			cand, ok := candidates[bookID]
			if !ok {
				cand = &Candidate{}
				candidates[bookID] = cand
			}
			cand.Score += peer.Score
			cand.Peers = append(cand.Peers, peer.ReaderID)
		}
	}

	return candidates
}
