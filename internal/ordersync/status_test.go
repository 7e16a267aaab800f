package ordersync

import (
	"testing"

	"github.com/codehasanali/rafine-web/internal/upstream"
)

func TestCanTransition(t *testing.T) {
	statuses := []upstream.OrderStatus{
		upstream.StatusPending,
		upstream.StatusPreparing,
		upstream.StatusReady,
		upstream.StatusCompleted,
		upstream.StatusCancelled,
	}

	valid := map[[2]upstream.OrderStatus]bool{
		{upstream.StatusPending, upstream.StatusPreparing}:   true,
		{upstream.StatusPending, upstream.StatusCancelled}:   true,
		{upstream.StatusPreparing, upstream.StatusReady}:     true,
		{upstream.StatusPreparing, upstream.StatusCancelled}: true,
		{upstream.StatusReady, upstream.StatusCompleted}:     true,
		{upstream.StatusReady, upstream.StatusCancelled}:     true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransition(from, to)
			want := valid[[2]upstream.OrderStatus{from, to}]
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from upstream.OrderStatus
		want upstream.OrderStatus
		ok   bool
	}{
		{upstream.StatusPending, upstream.StatusPreparing, true},
		{upstream.StatusPreparing, upstream.StatusReady, true},
		{upstream.StatusReady, upstream.StatusCompleted, true},
		{upstream.StatusCompleted, "", false},
		{upstream.StatusCancelled, "", false},
	}

	for _, tc := range cases {
		got, ok := NextStatus(tc.from)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NextStatus(%s) = (%s, %v), want (%s, %v)", tc.from, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(upstream.StatusCompleted) || !IsTerminal(upstream.StatusCancelled) {
		t.Fatal("COMPLETED and CANCELLED must be terminal")
	}
	for _, s := range []upstream.OrderStatus{upstream.StatusPending, upstream.StatusPreparing, upstream.StatusReady} {
		if IsTerminal(s) {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
