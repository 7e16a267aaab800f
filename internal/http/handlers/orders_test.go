package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codehasanali/rafine-web/internal/config"
	"github.com/codehasanali/rafine-web/internal/ordersync"
	"github.com/codehasanali/rafine-web/internal/upstream"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fakeSource struct {
	orders      map[string]upstream.Order
	listOrder   []string
	statusCalls []upstream.OrderStatus
}

func newFakeSource(orders ...upstream.Order) *fakeSource {
	src := &fakeSource{orders: make(map[string]upstream.Order)}
	for _, o := range orders {
		src.orders[o.ID] = o
		src.listOrder = append(src.listOrder, o.ID)
	}
	return src
}

func (s *fakeSource) ListAdminOrders(context.Context) ([]upstream.Order, error) {
	out := make([]upstream.Order, 0, len(s.listOrder))
	for _, id := range s.listOrder {
		out = append(out, s.orders[id])
	}
	return out, nil
}

func (s *fakeSource) GetAdminOrder(_ context.Context, id string) (upstream.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return upstream.Order{}, upstream.NotFoundError("order " + id)
	}
	return order, nil
}

func (s *fakeSource) UpdateOrderStatus(_ context.Context, id string, status upstream.OrderStatus) error {
	s.statusCalls = append(s.statusCalls, status)
	order := s.orders[id]
	order.Status = status
	order.UpdatedAt = order.UpdatedAt.Add(time.Second)
	s.orders[id] = order
	return nil
}

func testRouter(t *testing.T, source *fakeSource) (*Handler, http.Handler) {
	t.Helper()
	engine := ordersync.NewEngine(source, zap.NewNop())
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	h := &Handler{Sync: engine, Logger: zap.NewNop(), Config: config.Config{}}
	r := chi.NewRouter()
	r.Get("/orders", h.OrdersList)
	r.Post("/orders/{orderId}/advance", h.OrderAdvance)
	r.Post("/orders/{orderId}/cancel", h.OrderCancel)
	r.Get("/stats", h.StatsSummary)
	return h, r
}

func doRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope struct {
		Success bool                       `json:"success"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testOrder(id string, status upstream.OrderStatus) upstream.Order {
	return upstream.Order{ID: id, Status: status, CreatedAt: now, UpdatedAt: now}
}

func TestOrdersListFiltersByStatus(t *testing.T) {
	source := newFakeSource(
		testOrder("o1", upstream.StatusPending),
		testOrder("o2", upstream.StatusReady),
		testOrder("o3", upstream.StatusPending),
	)
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodGet, "/orders?status=pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var orders []upstream.Order
	data := decodeEnvelope(t, rec)
	if err := json.Unmarshal(data["orders"], &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}

	rec = doRequest(router, http.MethodGet, "/orders?status=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus status: code = %d, want 400", rec.Code)
	}
}

func TestOrderAdvanceMovesOneStep(t *testing.T) {
	source := newFakeSource(testOrder("o1", upstream.StatusPending))
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodPost, "/orders/o1/advance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)
	var changed bool
	_ = json.Unmarshal(data["changed"], &changed)
	if !changed {
		t.Fatal("changed = false, want true")
	}
	if len(source.statusCalls) != 1 || source.statusCalls[0] != upstream.StatusPreparing {
		t.Fatalf("status calls = %v, want [PREPARING]", source.statusCalls)
	}
}

func TestOrderAdvanceTerminalIsNoOp(t *testing.T) {
	source := newFakeSource(testOrder("o1", upstream.StatusCompleted))
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodPost, "/orders/o1/advance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)
	var changed bool
	_ = json.Unmarshal(data["changed"], &changed)
	if changed {
		t.Fatal("changed = true, want false")
	}
	if len(source.statusCalls) != 0 {
		t.Fatalf("status calls = %v, want none", source.statusCalls)
	}
}

func TestOrderCancelRejectedWhenTerminal(t *testing.T) {
	source := newFakeSource(testOrder("o1", upstream.StatusCancelled))
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodPost, "/orders/o1/cancel")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOrderAdvanceUnknownOrder(t *testing.T) {
	source := newFakeSource(testOrder("o1", upstream.StatusPending))
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodPost, "/orders/nope/advance")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStatsRejectsInvalidPeriod(t *testing.T) {
	source := newFakeSource(testOrder("o1", upstream.StatusPending))
	_, router := testRouter(t, source)

	rec := doRequest(router, http.MethodGet, "/stats?period=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	rec = doRequest(router, http.MethodGet, "/stats?period=168h")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
