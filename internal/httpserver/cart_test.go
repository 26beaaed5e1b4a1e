package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shopcart/internal/domain"
	"shopcart/internal/ratelimit"
)

type stubMutator struct {
	line     *domain.CartLine
	err      error
	removed  int64
	addCalls int
	lastUser string
	lastLine string
	lastQty  int
}

func (s *stubMutator) AddItem(_ context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	s.addCalls++
	s.lastUser = userID
	s.lastQty = quantity
	return s.line, s.err
}

func (s *stubMutator) UpdateQuantity(_ context.Context, lineID string, quantity int) (*domain.CartLine, error) {
	s.lastLine = lineID
	s.lastQty = quantity
	return s.line, s.err
}

func (s *stubMutator) RemoveItem(_ context.Context, lineID string) error {
	s.lastLine = lineID
	return s.err
}

func (s *stubMutator) ClearCart(_ context.Context, userID string) (int64, error) {
	s.lastUser = userID
	return s.removed, s.err
}

type stubCacheReader struct {
	summary domain.CartSummary
	line    *domain.CartLine
	err     error
}

func (s *stubCacheReader) Summary(context.Context, string) (domain.CartSummary, error) {
	return s.summary, s.err
}

func (s *stubCacheReader) FindLine(context.Context, string, string) (*domain.CartLine, error) {
	return s.line, s.err
}

type stubLines struct {
	line  *domain.CartLine
	lines []domain.CartLine
	err   error
}

func (s *stubLines) GetByID(context.Context, string) (*domain.CartLine, error) {
	return s.line, s.err
}

func (s *stubLines) ListByUser(context.Context, string) ([]domain.CartLine, error) {
	return s.lines, s.err
}

type stubProducts struct {
	products []domain.Product
	err      error
}

func (s *stubProducts) List(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

type stubLimiter struct {
	err          error
	allowCalls   []ratelimit.Class
	successCalls []ratelimit.Class
}

func (s *stubLimiter) Allow(_ context.Context, _ string, class ratelimit.Class) error {
	s.allowCalls = append(s.allowCalls, class)
	return s.err
}

func (s *stubLimiter) OnSuccess(_ context.Context, _ string, class ratelimit.Class) {
	s.successCalls = append(s.successCalls, class)
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Limiter == nil {
		deps.Limiter = &stubLimiter{}
	}
	router, err := buildRouter(zerolog.Nop(), nil, deps)
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddItemCreated(t *testing.T) {
	mutator := &stubMutator{line: &domain.CartLine{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 2}}
	router := newTestRouter(t, Deps{CartSvc: mutator})

	rec := doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"productId":"p1","quantity":2}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if mutator.lastUser != "u1" || mutator.lastQty != 2 {
		t.Fatalf("service called with %s/%d", mutator.lastUser, mutator.lastQty)
	}
}

func TestAddItemMissingProductID(t *testing.T) {
	router := newTestRouter(t, Deps{CartSvc: &stubMutator{}})

	rec := doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"quantity":2}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddItemZeroQuantityMapsToUnprocessable(t *testing.T) {
	mutator := &stubMutator{err: domain.ErrInvalidQuantity}
	router := newTestRouter(t, Deps{CartSvc: mutator})

	rec := doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"productId":"p1","quantity":0}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if mutator.addCalls != 1 {
		t.Fatal("zero quantity must reach the service")
	}
}

func TestAddItemProductUnavailable(t *testing.T) {
	router := newTestRouter(t, Deps{CartSvc: &stubMutator{err: domain.ErrProductUnavailable}})

	rec := doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"productId":"p1","quantity":2}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateItemOwnershipMismatch(t *testing.T) {
	mutator := &stubMutator{}
	lines := &stubLines{line: &domain.CartLine{ID: "l1", UserID: "other"}}
	router := newTestRouter(t, Deps{CartSvc: mutator, Lines: lines})

	rec := doRequest(router, http.MethodPatch, "/users/u1/cart/items/l1", `{"quantity":3}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign line, got %d", rec.Code)
	}
	if mutator.lastLine != "" {
		t.Fatal("service must not be called for a foreign line")
	}
}

func TestUpdateItemSuccess(t *testing.T) {
	mutator := &stubMutator{line: &domain.CartLine{ID: "l1", UserID: "u1", Quantity: 3}}
	lines := &stubLines{line: &domain.CartLine{ID: "l1", UserID: "u1"}}
	router := newTestRouter(t, Deps{CartSvc: mutator, Lines: lines})

	rec := doRequest(router, http.MethodPatch, "/users/u1/cart/items/l1", `{"quantity":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if mutator.lastLine != "l1" || mutator.lastQty != 3 {
		t.Fatalf("service called with %s/%d", mutator.lastLine, mutator.lastQty)
	}
}

func TestRemoveItemNoContent(t *testing.T) {
	mutator := &stubMutator{}
	lines := &stubLines{line: &domain.CartLine{ID: "l1", UserID: "u1"}}
	router := newTestRouter(t, Deps{CartSvc: mutator, Lines: lines})

	rec := doRequest(router, http.MethodDelete, "/users/u1/cart/items/l1", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRemoveItemMissing(t *testing.T) {
	lines := &stubLines{err: domain.ErrCartItemNotFound}
	router := newTestRouter(t, Deps{CartSvc: &stubMutator{}, Lines: lines})

	rec := doRequest(router, http.MethodDelete, "/users/u1/cart/items/l1", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestClearCart(t *testing.T) {
	mutator := &stubMutator{removed: 3}
	router := newTestRouter(t, Deps{CartSvc: mutator})

	rec := doRequest(router, http.MethodDelete, "/users/u1/cart", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["removed"] != 3 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGetSummary(t *testing.T) {
	summary := &stubCacheReader{summary: domain.CartSummary{ItemCount: 2, TotalQuantity: 5, TotalCents: 4500}}
	router := newTestRouter(t, Deps{Cache: summary})

	rec := doRequest(router, http.MethodGet, "/users/u1/cart/summary", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.CartSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got != summary.summary {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestGetCartEmpty(t *testing.T) {
	router := newTestRouter(t, Deps{Lines: &stubLines{}, Cache: &stubCacheReader{}})

	rec := doRequest(router, http.MethodGet, "/users/u1/cart", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Lines == nil || len(body.Lines) != 0 {
		t.Fatalf("expected empty lines array, got %+v", body.Lines)
	}
}

func TestFindItemReturnsLine(t *testing.T) {
	cache := &stubCacheReader{line: &domain.CartLine{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 3}}
	router := newTestRouter(t, Deps{Cache: cache})

	rec := doRequest(router, http.MethodGet, "/users/u1/cart/items?productId=p1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.CartLine
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.ID != "l1" || got.Quantity != 3 {
		t.Fatalf("unexpected line %+v", got)
	}
}

func TestFindItemRequiresProductID(t *testing.T) {
	router := newTestRouter(t, Deps{Cache: &stubCacheReader{}})

	rec := doRequest(router, http.MethodGet, "/users/u1/cart/items", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFindItemAbsent(t *testing.T) {
	router := newTestRouter(t, Deps{Cache: &stubCacheReader{err: domain.ErrCartItemNotFound}})

	rec := doRequest(router, http.MethodGet, "/users/u1/cart/items?productId=p1", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRateLimitedRequestRejected(t *testing.T) {
	limiter := &stubLimiter{err: &ratelimit.LimitError{Class: ratelimit.ClassAdd, RetryAfter: 42 * time.Second}}
	router := newTestRouter(t, Deps{CartSvc: &stubMutator{}, Limiter: limiter})

	rec := doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"productId":"p1","quantity":1}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "42" {
		t.Fatalf("unexpected Retry-After %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimitSuccessReportedPerClass(t *testing.T) {
	limiter := &stubLimiter{}
	mutator := &stubMutator{line: &domain.CartLine{ID: "l1", UserID: "u1", Quantity: 1}}
	lines := &stubLines{line: &domain.CartLine{ID: "l1", UserID: "u1"}}
	router := newTestRouter(t, Deps{CartSvc: mutator, Lines: lines, Limiter: limiter})

	doRequest(router, http.MethodPost, "/users/u1/cart/items", `{"productId":"p1","quantity":1}`)
	doRequest(router, http.MethodPatch, "/users/u1/cart/items/l1", `{"quantity":2}`)

	if len(limiter.allowCalls) != 2 {
		t.Fatalf("expected 2 allow calls, got %d", len(limiter.allowCalls))
	}
	// OnSuccess runs for both; the limiter itself skips resetting add.
	if len(limiter.successCalls) != 2 {
		t.Fatalf("expected 2 success reports, got %d", len(limiter.successCalls))
	}
}

func TestRateLimitFailedMutationNotRewarded(t *testing.T) {
	limiter := &stubLimiter{}
	lines := &stubLines{line: &domain.CartLine{ID: "l1", UserID: "u1"}}
	mutator := &stubMutator{err: domain.ErrProductUnavailable}
	router := newTestRouter(t, Deps{CartSvc: mutator, Lines: lines, Limiter: limiter})

	doRequest(router, http.MethodPatch, "/users/u1/cart/items/l1", `{"quantity":2}`)

	if len(limiter.successCalls) != 0 {
		t.Fatal("failed mutation must not reset the counter")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := doRequest(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
