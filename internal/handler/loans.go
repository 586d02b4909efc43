package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
	"github.com/jonesrussell/book-discovery/internal/storage"
	"github.com/jonesrussell/book-discovery/internal/telemetry"
)

// loanRequest is the POST /api/v1/loans payload.
type loanRequest struct {
	ReaderID   string     `binding:"required" json:"reader_id"`
	BookID     string     `binding:"required" json:"book_id"`
	BorrowedAt *time.Time `json:"borrowed_at"`
}

// LoanHandler accepts borrow events and enqueues them for batched storage.
type LoanHandler struct {
	buffer  *storage.Buffer
	metrics *telemetry.Metrics
	logger  logger.Logger
}

// NewLoanHandler creates a LoanHandler with the given dependencies.
func NewLoanHandler(
	buffer *storage.Buffer,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *LoanHandler {
	return &LoanHandler{
		buffer:  buffer,
		metrics: metrics,
		logger:  log,
	}
}

// HandleLoan serves POST /api/v1/loans. The event is buffered, not written
// synchronously; 202 means accepted for storage.
func (h *LoanHandler) HandleLoan(c *gin.Context) {
	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reader_id and book_id are required"})
		return
	}

	if !readerIDPattern.MatchString(req.ReaderID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reader id"})
		return
	}

	borrowedAt := time.Now().UTC()
	if req.BorrowedAt != nil {
		borrowedAt = *req.BorrowedAt
	}

	loan := domain.Loan{
		ID:         uuid.New().String(),
		ReaderID:   req.ReaderID,
		BookID:     req.BookID,
		BorrowedAt: borrowedAt,
	}

	if !h.buffer.Send(loan) {
		h.metrics.LoansDropped.Inc()
		h.logger.Warn("Loan buffer full, dropping borrow event",
			logger.String("reader_id", loan.ReaderID),
			logger.String("book_id", loan.BookID),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "loan buffer full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": loan.ID})
}
