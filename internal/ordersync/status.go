package ordersync

import "github.com/codehasanali/rafine-web/internal/upstream"

// allowedTransitions is the authoritative lifecycle table. The server
// enforces the same rules; this copy exists so invalid requests are rejected
// before any network call is made.
var allowedTransitions = map[upstream.OrderStatus][]upstream.OrderStatus{
	upstream.StatusPending:   {upstream.StatusPreparing, upstream.StatusCancelled},
	upstream.StatusPreparing: {upstream.StatusReady, upstream.StatusCancelled},
	upstream.StatusReady:     {upstream.StatusCompleted, upstream.StatusCancelled},
	upstream.StatusCompleted: {},
	upstream.StatusCancelled: {},
}

func CanTransition(from, to upstream.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextStatus computes the forward step for the single "advance" action.
// Terminal states have no forward step.
func NextStatus(from upstream.OrderStatus) (upstream.OrderStatus, bool) {
	switch from {
	case upstream.StatusPending:
		return upstream.StatusPreparing, true
	case upstream.StatusPreparing:
		return upstream.StatusReady, true
	case upstream.StatusReady:
		return upstream.StatusCompleted, true
	default:
		return "", false
	}
}

func IsTerminal(status upstream.OrderStatus) bool {
	return status == upstream.StatusCompleted || status == upstream.StatusCancelled
}
