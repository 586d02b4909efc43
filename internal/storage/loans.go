package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
)

const (
	// columnsPerRow is the number of columns inserted per loan row.
	columnsPerRow = 4

	// insertBatchSize is the maximum number of rows per INSERT statement.
	insertBatchSize = 50

	// flushTimeout is the context timeout for each flush operation.
	flushTimeout = 5 * time.Second
)

// Buffer is a channel-based buffer for non-blocking loan ingestion.
type Buffer struct {
	loans  chan domain.Loan
	closed chan struct{}
	once   sync.Once
}

// NewBuffer creates a buffer with a buffered channel of the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		loans:  make(chan domain.Loan, capacity),
		closed: make(chan struct{}),
	}
}

// Send performs a non-blocking send of a loan into the buffer.
// It returns false if the buffer channel is full.
func (b *Buffer) Send(loan domain.Loan) bool {
	select {
	case b.loans <- loan:
		return true
	default:
		return false
	}
}

// Len returns the number of loans currently in the buffer channel.
func (b *Buffer) Len() int {
	return len(b.loans)
}

// Close signals the buffer to stop accepting loans.
// It is safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}

// LoanStore manages buffered writes of borrow events to PostgreSQL.
type LoanStore struct {
	db             *sql.DB
	buffer         *Buffer
	log            logger.Logger
	flushInterval  time.Duration
	flushThreshold int
	wg             sync.WaitGroup
}

// NewLoanStore creates a LoanStore that reads loans from buffer and
// batch-inserts them.
func NewLoanStore(
	db *sql.DB,
	buffer *Buffer,
	log logger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *LoanStore {
	return &LoanStore{
		db:             db,
		buffer:         buffer,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// Start launches the background goroutine that reads loans and flushes batches.
func (s *LoanStore) Start() {
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop signals the buffer to close and waits for the flush goroutine to finish.
func (s *LoanStore) Stop() {
	s.buffer.Close()
	s.wg.Wait()
}

// flushLoop reads loans from the buffer, accumulates a batch, and flushes
// when the batch reaches flushThreshold or the flushInterval ticker fires.
func (s *LoanStore) flushLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.Loan, 0, s.flushThreshold)

	for {
		select {
		case loan := <-s.buffer.loans:
			batch = append(batch, loan)
			if len(batch) >= s.flushThreshold {
				s.flush(batch)
				batch = make([]domain.Loan, 0, s.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = make([]domain.Loan, 0, s.flushThreshold)
			}

		case <-s.buffer.closed:
			s.drain(&batch)
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

// drain reads all remaining loans from the buffer channel into the batch.
func (s *LoanStore) drain(batch *[]domain.Loan) {
	for {
		select {
		case loan := <-s.buffer.loans:
			*batch = append(*batch, loan)
		default:
			return
		}
	}
}

// flush writes a batch of loans to PostgreSQL in chunks of insertBatchSize.
func (s *LoanStore) flush(batch []domain.Loan) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for start := 0; start < len(batch); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(batch) {
			end = len(batch)
		}

		if err := s.batchInsert(ctx, batch[start:end]); err != nil {
			s.log.Error("Failed to insert loans",
				logger.Error(err),
				logger.Int("batch_size", end-start),
			)
		}
	}

	s.log.Debug("Flushed loans",
		logger.Int("total", len(batch)),
	)
}

// batchInsert builds and executes a single INSERT statement with multiple
// value tuples.
func (s *LoanStore) batchInsert(ctx context.Context, loans []domain.Loan) error {
	if len(loans) == 0 {
		return nil
	}

	args := make([]any, 0, len(loans)*columnsPerRow)
	var sb strings.Builder

	sb.WriteString("INSERT INTO loans (id, reader_id, book_id, borrowed_at) VALUES ")

	for i := range loans {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeValueTuple(&sb, i)

		args = append(args,
			loans[i].ID, loans[i].ReaderID, loans[i].BookID, loans[i].BorrowedAt,
		)
	}

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("exec batch insert: %w", err)
	}

	return nil
}

// Placeholder column offsets within a single row tuple (1-indexed for
// PostgreSQL $N params).
const (
	colID         = 1
	colReaderID   = 2
	colBookID     = 3
	colBorrowedAt = 4
)

// writeValueTuple writes a single ($1, $2, $3, $4) placeholder tuple to the
// builder, offset by the row index.
func writeValueTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * columnsPerRow
	fmt.Fprintf(sb, "($%d, $%d, $%d, $%d)",
		base+colID, base+colReaderID, base+colBookID, base+colBorrowedAt,
	)
}
