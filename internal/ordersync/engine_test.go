package ordersync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codehasanali/rafine-web/internal/upstream"
)

type fakeSource struct {
	orders  map[string]upstream.Order
	listErr error

	statusCalls []upstream.OrderStatus
	statusErr   error
	listOrder   []string
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
	if s.listErr != nil {
		return nil, s.listErr
	}
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
	if s.statusErr != nil {
		return s.statusErr
	}
	order := s.orders[id]
	order.Status = status
	order.UpdatedAt = order.UpdatedAt.Add(time.Second)
	s.orders[id] = order
	return nil
}

func order(id string, status upstream.OrderStatus, updatedAt time.Time) upstream.Order {
	return upstream.Order{
		ID:        id,
		Status:    status,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func ids(orders []upstream.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadSnapshotReplacesCollection(t *testing.T) {
	src := newFakeSource(
		order("o1", upstream.StatusPending, t0),
		order("o2", upstream.StatusReady, t0),
	)
	engine := NewEngine(src, nil)

	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o1", "o2") {
		t.Fatalf("unexpected view %v", got)
	}

	// A second snapshot fully replaces, never merges.
	src.listOrder = []string{"o2"}
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o2") {
		t.Fatalf("unexpected view after reload %v", got)
	}
}

func TestLoadSnapshotFailureLeavesViewUntouched(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	src.listErr = upstream.NetworkError("list failed", errors.New("connection refused"))
	if err := engine.LoadSnapshot(context.Background()); err == nil {
		t.Fatal("expected snapshot error")
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o1") {
		t.Fatalf("view mutated on failed snapshot: %v", got)
	}
}

func TestCreatedEventPrependsAndDedupes(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	src.orders["o2"] = order("o2", upstream.StatusPending, t0.Add(time.Minute))
	event := upstream.Event{Kind: upstream.EventOrderCreated, OrderID: "o2"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o2", "o1") {
		t.Fatalf("new order not prepended: %v", got)
	}

	// At-least-once delivery: a replayed create must not duplicate.
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent replay: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o2", "o1") {
		t.Fatalf("replayed create duplicated the order: %v", got)
	}
}

func TestUpdateEventReplacesInPlace(t *testing.T) {
	src := newFakeSource(
		order("o1", upstream.StatusPending, t0),
		order("o2", upstream.StatusReady, t0),
	)
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	src.orders["o2"] = order("o2", upstream.StatusCompleted, t0.Add(time.Minute))
	event := upstream.Event{Kind: upstream.EventOrderUpdated, OrderID: "o2"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	// Position preserved: updates never reorder the view.
	view := engine.Orders()
	if !equalIDs(ids(view), "o1", "o2") {
		t.Fatalf("update reordered the view: %v", ids(view))
	}
	if view[1].Status != upstream.StatusCompleted {
		t.Fatalf("status not applied, got %s", view[1].Status)
	}
}

func TestUpdateEventForUnknownOrderIsDropped(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	src.orders["ghost"] = order("ghost", upstream.StatusPending, t0)
	event := upstream.Event{Kind: upstream.EventOrderUpdated, OrderID: "ghost"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o1") {
		t.Fatalf("unknown update mutated the view: %v", got)
	}
}

func TestStaleFetchResultDiscarded(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusReady, t0.Add(time.Hour)))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	// A slow fetch delivering an older version must lose against the state
	// already applied, regardless of arrival order.
	src.orders["o1"] = order("o1", upstream.StatusPending, t0)
	event := upstream.Event{Kind: upstream.EventOrderUpdated, OrderID: "o1"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	got, _ := engine.Get("o1")
	if got.Status != upstream.StatusReady {
		t.Fatalf("stale fetch overwrote newer state: %s", got.Status)
	}
}

func TestEventForVanishedOrderKeepsView(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	event := upstream.Event{Kind: upstream.EventOrderCreated, OrderID: "missing"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent should swallow not-found: %v", err)
	}
	if got := ids(engine.Orders()); !equalIDs(got, "o1") {
		t.Fatalf("view mutated: %v", got)
	}
}

func TestAdvanceWalksFullLifecycle(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	steps := []upstream.OrderStatus{
		upstream.StatusPreparing,
		upstream.StatusReady,
		upstream.StatusCompleted,
	}
	for _, want := range steps {
		target, err := engine.Advance(context.Background(), "o1")
		if err != nil {
			t.Fatalf("Advance to %s: %v", want, err)
		}
		if target != want {
			t.Fatalf("Advance target = %s, want %s", target, want)
		}
		// Confirmed state arrives through the event path.
		event := upstream.Event{Kind: upstream.EventOrderUpdated, OrderID: "o1"}
		if err := engine.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}

	// Advancing a completed order is a disabled action, not an error, and
	// issues no request.
	calls := len(src.statusCalls)
	if _, err := engine.Advance(context.Background(), "o1"); !errors.Is(err, ErrOrderTerminal) {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}
	if len(src.statusCalls) != calls {
		t.Fatal("terminal advance issued a network call")
	}
}

func TestCancelFromPreparingThenRejectFurtherActions(t *testing.T) {
	src := newFakeSource(order("o2", upstream.StatusPreparing, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if err := engine.Cancel(context.Background(), "o2"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	event := upstream.Event{Kind: upstream.EventOrderUpdated, OrderID: "o2"}
	if err := engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	calls := len(src.statusCalls)
	if err := engine.Cancel(context.Background(), "o2"); upstream.CodeOf(err) != upstream.ErrCodeTransition {
		t.Fatalf("expected TransitionError on double cancel, got %v", err)
	}
	if _, err := engine.Advance(context.Background(), "o2"); !errors.Is(err, ErrOrderTerminal) {
		t.Fatalf("expected terminal no-op on advance, got %v", err)
	}
	if len(src.statusCalls) != calls {
		t.Fatal("rejected actions issued network calls")
	}
}

func TestAdvanceDoesNotTouchLocalState(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if _, err := engine.Advance(context.Background(), "o1"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	// Until the update event lands, the local record keeps its old status;
	// local state is event-sourced, never hand-edited.
	got, _ := engine.Get("o1")
	if got.Status != upstream.StatusPending {
		t.Fatalf("Advance hand-edited local status to %s", got.Status)
	}
}

func TestCompletionWithPointsPublishesNotice(t *testing.T) {
	ready := order("o1", upstream.StatusReady, t0)
	ready.EarnedPoints = 25
	src := newFakeSource(ready)
	engine := NewEngine(src, nil)

	var changes []ChangeKind
	engine.AddListener(func(c Change) { changes = append(changes, c.Kind) })

	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if _, err := engine.Advance(context.Background(), "o1"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	found := false
	for _, kind := range changes {
		if kind == ChangePointsEarned {
			found = true
		}
	}
	if !found {
		t.Fatalf("no pointsEarned notice published, changes: %v", changes)
	}
}

func TestStatusChangeFailureKeepsView(t *testing.T) {
	src := newFakeSource(order("o1", upstream.StatusPending, t0))
	engine := NewEngine(src, nil)
	if err := engine.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	src.statusErr = upstream.NetworkError("patch failed", errors.New("timeout"))
	if _, err := engine.Advance(context.Background(), "o1"); err == nil {
		t.Fatal("expected network error")
	}
	got, _ := engine.Get("o1")
	if got.Status != upstream.StatusPending {
		t.Fatalf("failed request mutated local state: %s", got.Status)
	}
}
