package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonesrussell/book-discovery/internal/category"
	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
)

// Store is the data access dependency of the discovery service. All derived
// state (read sets, peer scores, candidates) is computed fresh per request;
// the store is the single source of truth and may be mutated externally at
// any time.
type Store interface {
	// BooksBorrowedBy returns the set of distinct book ids the reader has
	// ever borrowed. Empty set means unknown reader or no history.
	BooksBorrowedBy(ctx context.Context, readerID string) (map[string]struct{}, error)
	// AllOtherReadersBooks returns every other reader's distinct book set.
	AllOtherReadersBooks(ctx context.Context, excludeReaderID string) (map[string]map[string]struct{}, error)
	// MetadataFor returns catalog metadata for the given book ids.
	MetadataFor(ctx context.Context, bookIDs []string) ([]domain.Book, error)
	// GlobalBorrowCounts returns the most-borrowed books overall.
	GlobalBorrowCounts(ctx context.Context, limit int) ([]domain.PopularBook, error)
	// CategoryPopularity returns the most-borrowed books in the given
	// categories, excluding the given book ids.
	CategoryPopularity(ctx context.Context, excludeBookIDs, categoryCodes []string, limit int) ([]domain.PopularBook, error)
	// CategoryHistogramFor returns the reader's per-category borrow counts.
	CategoryHistogramFor(ctx context.Context, readerID string) (domain.CategoryHistogram, error)
}

// Options holds the service-level tuning knobs.
type Options struct {
	// MinScore is the default similarity threshold for peers.
	MinScore float64
	// MaxPeers bounds how many qualifying peers feed aggregation. Beyond
	// this the long tail of low-similarity peers is ignored.
	MaxPeers int
	// DefaultLimit is the recommendation count when the request omits one.
	DefaultLimit int
	// MaxLimit is the hard cap on the recommendation count.
	MaxLimit int
	// FallbackSize is how many rows the popularity fallbacks fetch.
	FallbackSize int
}

// RequestOptions are per-request overrides. Zero values fall back to the
// service defaults.
type RequestOptions struct {
	Limit    int
	MinScore float64
}

// Service composes the similarity pipeline into the two public operations,
// Recommend and ReadingProfile. It holds no mutable state of its own.
type Service struct {
	store Store
	opts  Options
	log   logger.Logger
}

// NewService creates a discovery Service with the given store and options.
func NewService(store Store, opts Options, log logger.Logger) *Service {
	return &Service{
		store: store,
		opts:  opts,
		log:   log,
	}
}

// Recommend produces up to limit book recommendations for the reader. The
// returned reason is empty for peer-derived results and names the fallback
// policy otherwise, even when the policy yielded no rows.
//
// Readers with no history get the global-popularity fallback; readers whose
// peers all score below the threshold get the category-popularity fallback.
// Store failures abort the whole operation: no retries, no partial results.
func (s *Service) Recommend(
	ctx context.Context,
	readerID string,
	req RequestOptions,
) ([]domain.Recommendation, domain.FallbackReason, error) {
	limit := s.clampLimit(req.Limit)
	minScore := req.MinScore
	if minScore == 0 {
		minScore = s.opts.MinScore
	}

	readSet, err := s.store.BooksBorrowedBy(ctx, readerID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch read set: %w", err)
	}

	// Cold start: no history at all.
	if len(readSet) == 0 {
		s.log.Debug("No borrow history, using global popularity",
			logger.String("reader_id", readerID),
		)
		recs, err := s.globalFallback(ctx, limit)
		return recs, domain.FallbackGlobalPopularity, err
	}

	peerSets, err := s.store.AllOtherReadersBooks(ctx, readerID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch peer read sets: %w", err)
	}

	peers := ScorePeers(readSet, peerSets, minScore)
	if len(peers) == 0 {
		s.log.Debug("No peer cleared similarity threshold, using category popularity",
			logger.String("reader_id", readerID),
			logger.Float64("min_score", minScore),
		)
		recs, err := s.categoryFallback(ctx, readSet, limit)
		return recs, domain.FallbackCategoryPopularity, err
	}

	if len(peers) > s.opts.MaxPeers {
		peers = peers[:s.opts.MaxPeers]
	}

	candidates := Aggregate(peers, readSet)
	recs, err := s.enrichAndRank(ctx, candidates, limit)
	return recs, "", err
}

// clampLimit resolves the requested limit against the default and hard cap.
func (s *Service) clampLimit(requested int) int {
	if requested <= 0 {
		return s.opts.DefaultLimit
	}
	if requested > s.opts.MaxLimit {
		return s.opts.MaxLimit
	}
	return requested
}

// globalFallback returns the most-borrowed books overall, tagged.
func (s *Service) globalFallback(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	popular, err := s.store.GlobalBorrowCounts(ctx, s.opts.FallbackSize)
	if err != nil {
		return nil, fmt.Errorf("fetch global borrow counts: %w", err)
	}
	return fallbackRecommendations(popular, domain.FallbackGlobalPopularity, limit), nil
}

// categoryFallback returns popular unread books sharing a category with the
// reader's history, tagged.
func (s *Service) categoryFallback(
	ctx context.Context,
	readSet map[string]struct{},
	limit int,
) ([]domain.Recommendation, error) {
	readIDs := sortedIDs(readSet)

	books, err := s.store.MetadataFor(ctx, readIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch read book metadata: %w", err)
	}

	codes := distinctCategoryCodes(books)
	popular, err := s.store.CategoryPopularity(ctx, readIDs, codes, s.opts.FallbackSize)
	if err != nil {
		return nil, fmt.Errorf("fetch category popularity: %w", err)
	}
	return fallbackRecommendations(popular, domain.FallbackCategoryPopularity, limit), nil
}

// fallbackRecommendations shapes popularity rows into tagged recommendations
// with zero match score and no contributors.
func fallbackRecommendations(
	popular []domain.PopularBook,
	reason domain.FallbackReason,
	limit int,
) []domain.Recommendation {
	if len(popular) > limit {
		popular = popular[:limit]
	}

	recs := make([]domain.Recommendation, 0, len(popular))
	for _, p := range popular {
		recs = append(recs, domain.Recommendation{
			Book:              p.Book,
			Score:             0,
			ContributingPeers: []string{},
			Fallback:          reason,
		})
	}
	return recs
}

// enrichAndRank attaches metadata to the candidate pool, sorts by weighted
// score descending with ties broken by title ascending, and truncates.
func (s *Service) enrichAndRank(
	ctx context.Context,
	candidates map[string]*Candidate,
	limit int,
) ([]domain.Recommendation, error) {
	ids := make([]string, 0, len(candidates))
	for bookID := range candidates {
		ids = append(ids, bookID)
	}

	books, err := s.store.MetadataFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate metadata: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(books))
	for _, book := range books {
		cand, ok := candidates[book.ID]
		if !ok {
			continue
		}
		recs = append(recs, domain.Recommendation{
			Book:              book,
			Score:             cand.Score,
			ContributingPeers: cand.Peers,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Title < recs[j].Title
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// ReadingProfile computes the reader's per-category breakdown. A reader with
// no history (or an unknown reader, indistinguishable here) yields a
// zero-book profile with an empty breakdown, not an error.
func (s *Service) ReadingProfile(ctx context.Context, readerID string) (domain.ReadingProfile, error) {
	hist, err := s.store.CategoryHistogramFor(ctx, readerID)
	if err != nil {
		return domain.ReadingProfile{}, fmt.Errorf("fetch category histogram: %w", err)
	}

	profile := domain.ReadingProfile{
		ReaderID:   readerID,
		ReaderName: hist.ReaderName,
		Breakdown:  []domain.BreakdownEntry{},
	}

	if len(hist.Counts) == 0 {
		return profile, nil
	}

	total := 0
	for _, c := range hist.Counts {
		total += c.Count
	}
	profile.TotalBooks = total

	// Descending by count; ties broken by category code ascending so the
	// breakdown order is deterministic.
	counts := make([]domain.CategoryCount, len(hist.Counts))
	copy(counts, hist.Counts)
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].CategoryCode < counts[j].CategoryCode
	})

	summary := make([]string, 0, len(counts))
	for _, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		label := category.Classify(c.CategoryCode)

		profile.Breakdown = append(profile.Breakdown, domain.BreakdownEntry{
			Category:     label,
			CategoryCode: c.CategoryCode,
			Count:        c.Count,
			Percentage:   fmt.Sprintf("%.2f%%", pct),
		})
		summary = append(summary, fmt.Sprintf("%.2f%% %s", pct, label))
	}
	profile.Summary = strings.Join(summary, ", ")

	return profile, nil
}

// sortedIDs returns the set's ids in ascending order for deterministic
// query arguments.
func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// distinctCategoryCodes returns the distinct category codes of the given
// books, ascending.
func distinctCategoryCodes(books []domain.Book) []string {
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		seen[b.CategoryCode] = struct{}{}
	}
	return sortedIDs(seen)
}
