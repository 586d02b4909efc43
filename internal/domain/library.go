// Package domain holds the core entities of the book-discovery service.
package domain

import "time"

// FallbackReason tags a recommendation produced by a fallback policy rather
// than peer matching.
type FallbackReason string

const (
	// FallbackGlobalPopularity marks recommendations drawn from the
	// most-borrowed books overall, used when the reader has no history.
	FallbackGlobalPopularity FallbackReason = "global_popularity"
	// FallbackCategoryPopularity marks recommendations drawn from popular
	// books in the reader's own categories, used when no peer clears the
	// similarity threshold.
	FallbackCategoryPopularity FallbackReason = "category_popularity"
)

// Book is the immutable catalog metadata for a single title.
type Book struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	CategoryCode string `json:"category_code"`
}

// PopularBook is a book together with its total historical borrow count,
// as returned by the popularity queries.
type PopularBook struct {
	Book
	BorrowCount int `json:"borrow_count"`
}

// Loan represents a single borrow event to be recorded.
type Loan struct {
	ID         string    `json:"id"`
	ReaderID   string    `json:"reader_id"`
	BookID     string    `json:"book_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

// Recommendation is a single recommended book with its provenance.
// Peer-derived entries carry a positive score and the contributing peer ids
// in descending-similarity order; fallback entries carry a zero score, no
// contributors, and a fallback tag.
type Recommendation struct {
	Book
	Score             float64        `json:"score"`
	ContributingPeers []string       `json:"contributing_peers"`
	Fallback          FallbackReason `json:"fallback,omitempty"`
}

// CategoryCount is one (category code, borrow count) pair from a reader's
// history.
type CategoryCount struct {
	CategoryCode string `json:"category_code"`
	Count        int    `json:"count"`
}

// CategoryHistogram is a reader's per-category borrow counts.
// An empty Counts slice means the reader is unknown or has no history; the
// two are not distinguished at this layer.
type CategoryHistogram struct {
	ReaderName string          `json:"reader_name"`
	Counts     []CategoryCount `json:"counts"`
}

// BreakdownEntry is one category's share of a reader's history.
type BreakdownEntry struct {
	Category     string `json:"category"`
	CategoryCode string `json:"category_code"`
	Count        int    `json:"count"`
	Percentage   string `json:"percentage"`
}

// ReadingProfile is the per-reader "Reading DNA" breakdown.
type ReadingProfile struct {
	ReaderID   string           `json:"reader_id"`
	ReaderName string           `json:"reader_name"`
	TotalBooks int              `json:"total_books"`
	Breakdown  []BreakdownEntry `json:"breakdown"`
	Summary    string           `json:"summary"`
}
