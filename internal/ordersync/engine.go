// Package ordersync keeps a local, continuously updated view of the
// platform's orders. A full snapshot load seeds the collection; notification
// events then drive per-order re-fetches that are merged in, newest version
// wins.
package ordersync

import (
	"context"
	"errors"
	"sync"

	"github.com/codehasanali/rafine-web/internal/upstream"

	"go.uber.org/zap"
)

// OrderSource is the slice of the platform client the engine needs.
type OrderSource interface {
	ListAdminOrders(ctx context.Context) ([]upstream.Order, error)
	GetAdminOrder(ctx context.Context, orderID string) (upstream.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status upstream.OrderStatus) error
}

type ChangeKind string

const (
	ChangeOrderCreated ChangeKind = "orderCreated"
	ChangeOrderUpdated ChangeKind = "orderUpdated"
	ChangePointsEarned ChangeKind = "pointsEarned"
)

// Change is published to listeners after a mutation has been applied.
type Change struct {
	Kind  ChangeKind
	Order upstream.Order
}

// ErrOrderTerminal reports an advance on a completed or cancelled order.
// The action is disabled rather than failed, so callers treat it as a no-op.
var ErrOrderTerminal = errors.New("order is in a terminal state")

type Engine struct {
	source OrderSource
	logger *zap.Logger

	mu        sync.Mutex
	orders    []upstream.Order
	index     map[string]int
	listeners []func(Change)
}

func NewEngine(source OrderSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source: source,
		logger: logger,
		index:  make(map[string]int),
	}
}

// AddListener registers a change callback. Listeners run after the lock is
// released, in registration order. Register before events start flowing.
func (e *Engine) AddListener(fn func(Change)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) publish(change Change) {
	for _, fn := range e.listeners {
		fn(change)
	}
}

// LoadSnapshot replaces the whole local collection with the server's current
// order list. On failure the local collection is left untouched.
func (e *Engine) LoadSnapshot(ctx context.Context) error {
	orders, err := e.source.ListAdminOrders(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.orders = make([]upstream.Order, len(orders))
	copy(e.orders, orders)
	e.index = make(map[string]int, len(orders))
	for i, order := range orders {
		e.index[order.ID] = i
	}
	e.mu.Unlock()

	e.logger.Info("order snapshot loaded", zap.Int("orders", len(orders)))
	return nil
}

// Orders returns the collection in view order: newest arrivals first,
// otherwise server order from the last snapshot.
func (e *Engine) Orders() []upstream.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]upstream.Order, len(e.orders))
	copy(out, e.orders)
	return out
}

func (e *Engine) Get(orderID string) (upstream.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[orderID]
	if !ok {
		return upstream.Order{}, false
	}
	return e.orders[i], true
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.orders)
}

// HandleEvent re-fetches the referenced order and merges the result. The
// event payload is not trusted beyond the id. Fetches for separate events
// may run concurrently; the updatedAt guard in the apply step makes the
// newest version win no matter which fetch lands last.
func (e *Engine) HandleEvent(ctx context.Context, event upstream.Event) error {
	order, err := e.source.GetAdminOrder(ctx, event.OrderID)
	if err != nil {
		if upstream.IsNotFound(err) {
			// Order vanished upstream between event and fetch; keep local
			// state as-is until the next snapshot.
			e.logger.Warn("order referenced by event no longer exists",
				zap.String("orderId", event.OrderID))
			return nil
		}
		return err
	}

	switch event.Kind {
	case upstream.EventOrderCreated:
		e.applyCreated(order)
	case upstream.EventOrderUpdated:
		e.applyUpdated(order)
	}
	return nil
}

func (e *Engine) applyCreated(order upstream.Order) {
	e.mu.Lock()
	if i, exists := e.index[order.ID]; exists {
		// Replayed create; keep exactly one record, freshest version.
		if !order.UpdatedAt.After(e.orders[i].UpdatedAt) {
			e.mu.Unlock()
			return
		}
		e.orders[i] = order
		e.mu.Unlock()
		e.publish(Change{Kind: ChangeOrderUpdated, Order: order})
		return
	}

	// New orders go to the front, most recent first.
	e.orders = append([]upstream.Order{order}, e.orders...)
	e.index = make(map[string]int, len(e.orders))
	for i, o := range e.orders {
		e.index[o.ID] = i
	}
	e.mu.Unlock()
	e.publish(Change{Kind: ChangeOrderCreated, Order: order})
}

func (e *Engine) applyUpdated(order upstream.Order) {
	e.mu.Lock()
	i, exists := e.index[order.ID]
	if !exists {
		// Update for an order we never saw created; dropping it avoids
		// inserting partial data from an out-of-order create/update pair.
		e.mu.Unlock()
		e.logger.Debug("dropping update for unknown order", zap.String("orderId", order.ID))
		return
	}
	if !order.UpdatedAt.After(e.orders[i].UpdatedAt) {
		// A slower fetch delivered an older version; discard.
		e.mu.Unlock()
		return
	}
	e.orders[i] = order
	e.mu.Unlock()
	e.publish(Change{Kind: ChangeOrderUpdated, Order: order})
}

// Advance moves an order one step forward in its lifecycle. The transition
// is validated locally before the request goes out. The local record is not
// touched here; the confirmed state arrives through the update event.
func (e *Engine) Advance(ctx context.Context, orderID string) (upstream.OrderStatus, error) {
	current, ok := e.Get(orderID)
	if !ok {
		return "", upstream.NotFoundError("order " + orderID + " is not in the local view")
	}
	if IsTerminal(current.Status) {
		return "", ErrOrderTerminal
	}
	target, ok := NextStatus(current.Status)
	if !ok || !CanTransition(current.Status, target) {
		return "", upstream.TransitionError("no forward transition from " + string(current.Status))
	}

	if err := e.source.UpdateOrderStatus(ctx, orderID, target); err != nil {
		return "", err
	}

	if target == upstream.StatusCompleted && current.EarnedPoints > 0 {
		e.publish(Change{Kind: ChangePointsEarned, Order: current})
	}
	return target, nil
}

// Cancel moves any non-terminal order to CANCELLED.
func (e *Engine) Cancel(ctx context.Context, orderID string) error {
	current, ok := e.Get(orderID)
	if !ok {
		return upstream.NotFoundError("order " + orderID + " is not in the local view")
	}
	if !CanTransition(current.Status, upstream.StatusCancelled) {
		return upstream.TransitionError("cannot cancel an order in state " + string(current.Status))
	}
	return e.source.UpdateOrderStatus(ctx, orderID, upstream.StatusCancelled)
}
