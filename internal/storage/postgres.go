// Package storage implements the Postgres-backed data access layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
)

// Store provides read access to readers, books, and loans. Read sets are
// computed fresh on every call; nothing is cached.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log,
	}
}

// Ping verifies the database connection. Used by the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// BooksBorrowedBy returns the set of distinct book ids the reader has ever
// borrowed. Repeat borrows of the same book collapse into one entry.
func (s *Store) BooksBorrowedBy(ctx context.Context, readerID string) (map[string]struct{}, error) {
	query := `
		SELECT DISTINCT book_id
		FROM loans
		WHERE reader_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, readerID)
	if err != nil {
		return nil, fmt.Errorf("query read set: %w", err)
	}
	defer rows.Close()

	readSet := make(map[string]struct{})
	for rows.Next() {
		var bookID string
		if scanErr := rows.Scan(&bookID); scanErr != nil {
			return nil, fmt.Errorf("scan read set row: %w", scanErr)
		}
		readSet[bookID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate read set: %w", err)
	}

	return readSet, nil
}

// AllOtherReadersBooks returns every other reader's distinct book set.
func (s *Store) AllOtherReadersBooks(
	ctx context.Context,
	excludeReaderID string,
) (map[string]map[string]struct{}, error) {
	query := `
		SELECT DISTINCT reader_id, book_id
		FROM loans
		WHERE reader_id <> $1
	`

	rows, err := s.db.QueryContext(ctx, query, excludeReaderID)
	if err != nil {
		return nil, fmt.Errorf("query peer read sets: %w", err)
	}
	defer rows.Close()

	peers := make(map[string]map[string]struct{})
	for rows.Next() {
		var readerID, bookID string
		if scanErr := rows.Scan(&readerID, &bookID); scanErr != nil {
			return nil, fmt.Errorf("scan peer row: %w", scanErr)
		}
		if peers[readerID] == nil {
			peers[readerID] = make(map[string]struct{})
		}
		peers[readerID][bookID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peer rows: %w", err)
	}

	return peers, nil
}

// MetadataFor returns catalog metadata for the given book ids. Unknown ids
// are silently absent from the result.
func (s *Store) MetadataFor(ctx context.Context, bookIDs []string) ([]domain.Book, error) {
	if len(bookIDs) == 0 {
		return []domain.Book{}, nil
	}

	query := `
		SELECT id, title, author, category_code
		FROM books
		WHERE id = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(bookIDs))
	if err != nil {
		return nil, fmt.Errorf("query book metadata: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0, len(bookIDs))
	for rows.Next() {
		var b domain.Book
		if scanErr := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CategoryCode); scanErr != nil {
			return nil, fmt.Errorf("scan book row: %w", scanErr)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, nil
}

// GlobalBorrowCounts returns the most-borrowed books overall, descending by
// total borrow count with title as a stable secondary order.
func (s *Store) GlobalBorrowCounts(ctx context.Context, limit int) ([]domain.PopularBook, error) {
	query := `
		SELECT b.id, b.title, b.author, b.category_code, COUNT(l.id) AS borrow_count
		FROM books b
		JOIN loans l ON l.book_id = b.id
		GROUP BY b.id, b.title, b.author, b.category_code
		ORDER BY borrow_count DESC, b.title ASC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query global borrow counts: %w", err)
	}
	defer rows.Close()

	return scanPopularRows(rows)
}

// CategoryPopularity returns the most-borrowed books in the given categories,
// excluding the given book ids.
func (s *Store) CategoryPopularity(
	ctx context.Context,
	excludeBookIDs, categoryCodes []string,
	limit int,
) ([]domain.PopularBook, error) {
	query := `
		SELECT b.id, b.title, b.author, b.category_code, COUNT(l.id) AS borrow_count
		FROM books b
		JOIN loans l ON l.book_id = b.id
		WHERE b.category_code = ANY($1)
		  AND b.id <> ALL($2)
		GROUP BY b.id, b.title, b.author, b.category_code
		ORDER BY borrow_count DESC, b.title ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query,
		pq.Array(categoryCodes), pq.Array(excludeBookIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("query category popularity: %w", err)
	}
	defer rows.Close()

	return scanPopularRows(rows)
}

// CategoryHistogramFor returns the reader's name and per-category borrow
// counts. An unknown reader yields an empty histogram, not an error.
func (s *Store) CategoryHistogramFor(
	ctx context.Context,
	readerID string,
) (domain.CategoryHistogram, error) {
	var hist domain.CategoryHistogram

	nameQuery := `SELECT name FROM readers WHERE id = $1`
	err := s.db.QueryRowContext(ctx, nameQuery, readerID).Scan(&hist.ReaderName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CategoryHistogram{Counts: []domain.CategoryCount{}}, nil
	}
	if err != nil {
		return domain.CategoryHistogram{}, fmt.Errorf("query reader name: %w", err)
	}

	countQuery := `
		SELECT b.category_code, COUNT(*) AS borrow_count
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.reader_id = $1
		GROUP BY b.category_code
		ORDER BY borrow_count DESC, b.category_code ASC
	`

	rows, err := s.db.QueryContext(ctx, countQuery, readerID)
	if err != nil {
		return domain.CategoryHistogram{}, fmt.Errorf("query category histogram: %w", err)
	}
	defer rows.Close()

	hist.Counts = make([]domain.CategoryCount, 0)
	for rows.Next() {
		var c domain.CategoryCount
		if scanErr := rows.Scan(&c.CategoryCode, &c.Count); scanErr != nil {
			return domain.CategoryHistogram{}, fmt.Errorf("scan histogram row: %w", scanErr)
		}
		hist.Counts = append(hist.Counts, c)
	}
	if err := rows.Err(); err != nil {
		return domain.CategoryHistogram{}, fmt.Errorf("iterate histogram rows: %w", err)
	}

	return hist, nil
}

// scanPopularRows scans popularity query results into PopularBook values.
func scanPopularRows(rows *sql.Rows) ([]domain.PopularBook, error) {
	books := make([]domain.PopularBook, 0)
	for rows.Next() {
		var p domain.PopularBook
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.CategoryCode, &p.BorrowCount); err != nil {
			return nil, fmt.Errorf("scan popularity row: %w", err)
		}
		books = append(books, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popularity rows: %w", err)
	}
	return books, nil
}
