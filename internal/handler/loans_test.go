package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/book-discovery/internal/handler"
	"github.com/jonesrussell/book-discovery/internal/logger"
	"github.com/jonesrussell/book-discovery/internal/storage"
)

const testBufferCapacity = 10

func setupLoanRouter(t *testing.T, capacity int) (*gin.Engine, *storage.Buffer) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	buf := storage.NewBuffer(capacity)
	h := handler.NewLoanHandler(buf, testMetrics, logger.NewNop())
	r.POST("/api/v1/loans", h.HandleLoan)

	return r, buf
}

func postLoan(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandleLoan_Accepted(t *testing.T) {
	r, buf := setupLoanRouter(t, testBufferCapacity)
	defer buf.Close()

	w := postLoan(r, `{"reader_id":"R-0001","book_id":"B-0001"}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if buf.Len() != 1 {
		t.Fatalf("expected 1 buffered loan, got %d", buf.Len())
	}
}

func TestHandleLoan_MissingFields(t *testing.T) {
	r, buf := setupLoanRouter(t, testBufferCapacity)
	defer buf.Close()

	for _, body := range []string{
		`{}`,
		`{"reader_id":"R-0001"}`,
		`{"book_id":"B-0001"}`,
		`not json`,
	} {
		w := postLoan(r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}

	if buf.Len() != 0 {
		t.Fatalf("expected empty buffer after rejected requests, got %d", buf.Len())
	}
}

func TestHandleLoan_InvalidReaderID(t *testing.T) {
	r, buf := setupLoanRouter(t, testBufferCapacity)
	defer buf.Close()

	w := postLoan(r, `{"reader_id":"nope","book_id":"B-0001"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid reader id, got %d", w.Code)
	}
}

func TestHandleLoan_BufferFull(t *testing.T) {
	r, buf := setupLoanRouter(t, 1)
	defer buf.Close()

	first := postLoan(r, `{"reader_id":"R-0001","book_id":"B-0001"}`)
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for first loan, got %d", first.Code)
	}

	second := postLoan(r, `{"reader_id":"R-0002","book_id":"B-0002"}`)
	if second.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when buffer is full, got %d", second.Code)
	}
}
