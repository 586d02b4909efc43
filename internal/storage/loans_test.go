package storage_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
	"github.com/jonesrussell/book-discovery/internal/storage"
)

func newTestLoan(t *testing.T) domain.Loan {
	t.Helper()

	return domain.Loan{
		ID:         "loan-1",
		ReaderID:   "R-0001",
		BookID:     "b1",
		BorrowedAt: time.Now(),
	}
}

func TestBuffer_Send(t *testing.T) {
	t.Helper()

	buf := storage.NewBuffer(10)
	defer buf.Close()

	loan := newTestLoan(t)
	ok := buf.Send(loan)

	if !ok {
		t.Fatal("expected Send to succeed on non-full buffer")
	}
	if buf.Len() != 1 {
		t.Fatalf("expected buffer length 1, got %d", buf.Len())
	}
}

func TestBuffer_SendFull(t *testing.T) {
	t.Helper()

	buf := storage.NewBuffer(1)
	defer buf.Close()

	loan := newTestLoan(t)

	// Fill the buffer.
	ok := buf.Send(loan)
	if !ok {
		t.Fatal("expected first Send to succeed")
	}

	// Second send should fail (non-blocking).
	ok = buf.Send(loan)
	if ok {
		t.Fatal("expected Send to return false when buffer is full")
	}
}

func TestBuffer_CloseIdempotent(t *testing.T) {
	t.Helper()

	buf := storage.NewBuffer(1)
	buf.Close()
	buf.Close() // must not panic
}

func TestLoanStore_FlushOnStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	loan := newTestLoan(t)
	mock.ExpectExec("INSERT INTO loans").
		WithArgs(loan.ID, loan.ReaderID, loan.BookID, loan.BorrowedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	buf := storage.NewBuffer(10)
	store := storage.NewLoanStore(db, buf, logger.NewNop(), time.Hour, 100)
	store.Start()

	if !buf.Send(loan) {
		t.Fatal("expected Send to succeed")
	}

	// Stop drains the buffer and flushes the remaining batch.
	store.Stop()

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanStore_FlushOnThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Threshold 2: a single INSERT with both rows.
	mock.ExpectExec("INSERT INTO loans").
		WillReturnResult(sqlmock.NewResult(0, 2))

	buf := storage.NewBuffer(10)
	store := storage.NewLoanStore(db, buf, logger.NewNop(), time.Hour, 2)
	store.Start()

	first := newTestLoan(t)
	second := newTestLoan(t)
	second.ID = "loan-2"
	second.BookID = "b2"

	buf.Send(first)
	buf.Send(second)

	store.Stop()

	require.NoError(t, mock.ExpectationsWereMet())
}
