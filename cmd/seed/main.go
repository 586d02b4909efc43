package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/book-discovery/internal/config"
	_ "github.com/lib/pq"
)

// Exit codes for the seed command.
const (
	exitSuccess = 0
	exitFailure = 1
)

const seedTimeout = 30 * time.Second

// loanEpoch anchors the sample borrow timestamps. Fixed so re-running the
// command produces identical rows and the ON CONFLICT clause fires.
var loanEpoch = time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

// loanID derives a stable name-based UUID from the reader/book pair, keeping
// the seed idempotent.
func loanID(l loan) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("loan/"+l.readerID+"/"+l.bookID)).String()
}

type reader struct {
	id   string
	name string
}

type book struct {
	id           string
	title        string
	author       string
	categoryCode string
}

// loan pairs a reader with a borrowed book.
type loan struct {
	readerID string
	bookID   string
}

var readers = []reader{
	{"R-0001", "Avery Quinn"},
	{"R-0002", "Morgan Ellis"},
	{"R-0003", "Jordan Blake"},
	{"R-0004", "Casey Winters"},
	{"R-0005", "Riley Hayes"},
}

var books = []book{
	{"B-0001", "Clean Architecture", "Robert C. Martin", "005"},
	{"B-0002", "The Pragmatic Programmer", "Andrew Hunt", "005"},
	{"B-0003", "Designing Data-Intensive Applications", "Martin Kleppmann", "005.1"},
	{"B-0004", "Thinking, Fast and Slow", "Daniel Kahneman", "153"},
	{"B-0005", "Atomic Habits", "James Clear", "158"},
	{"B-0006", "The Psychology of Money", "Morgan Housel", "332"},
	{"B-0007", "Good to Great", "Jim Collins", "658"},
	{"B-0008", "Sapiens", "Yuval Noah Harari", "909"},
	{"B-0009", "Middlemarch", "George Eliot", "823"},
	{"B-0010", "A Brief History of Time", "Stephen Hawking", "523"},
}

var loans = []loan{
	{"R-0001", "B-0001"},
	{"R-0001", "B-0002"},
	{"R-0001", "B-0004"},
	{"R-0002", "B-0001"},
	{"R-0002", "B-0002"},
	{"R-0002", "B-0003"},
	{"R-0002", "B-0005"},
	{"R-0003", "B-0004"},
	{"R-0003", "B-0005"},
	{"R-0003", "B-0006"},
	{"R-0004", "B-0007"},
	{"R-0004", "B-0008"},
	{"R-0004", "B-0001"},
	{"R-0005", "B-0009"},
	{"R-0005", "B-0010"},
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return exitFailure
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	if err := seed(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		return exitFailure
	}

	fmt.Printf("Seeded %d readers, %d books, %d loans\n",
		len(readers), len(books), len(loans))
	return exitSuccess
}

// loadConfig loads the application configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// seed inserts the sample data inside a single transaction. Existing rows
// are left untouched so the command is safe to re-run.
func seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range readers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO readers (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			r.id, r.name,
		); err != nil {
			return fmt.Errorf("insert reader %s: %w", r.id, err)
		}
	}

	for _, b := range books {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO books (id, title, author, category_code)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			b.id, b.title, b.author, b.categoryCode,
		); err != nil {
			return fmt.Errorf("insert book %s: %w", b.id, err)
		}
	}

	for i, l := range loans {
		borrowedAt := loanEpoch.Add(time.Duration(i) * 12 * time.Hour)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, reader_id, book_id, borrowed_at)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			loanID(l), l.readerID, l.bookID, borrowedAt,
		); err != nil {
			return fmt.Errorf("insert loan %s/%s: %w", l.readerID, l.bookID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
