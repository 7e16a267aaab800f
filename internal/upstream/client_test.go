package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Options{
		BaseURL:  srv.URL,
		Email:    "ops@example.com",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
	return client, srv
}

func writeLogin(w http.ResponseWriter, isAdmin bool) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": "u1", "email": "ops@example.com", "isAdmin": isAdmin},
		},
	})
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLogin(w, false)
	}))

	_, err := client.Login(context.Background(), "user@example.com", "pw")
	if CodeOf(err) != ErrCodeUnauthenticated {
		t.Fatalf("err = %v, want UNAUTHENTICATED", err)
	}
}

func TestAuthenticateStoresToken(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLogin(w, true)
	}))

	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if client.Token() != "tok-1" {
		t.Fatalf("token = %q, want tok-1", client.Token())
	}
}

func TestExpiredTokenReauthenticatesOnce(t *testing.T) {
	var orderCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeLogin(w, true)
	})
	mux.HandleFunc("/order/admin/all", func(w http.ResponseWriter, r *http.Request) {
		if orderCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"orders": []any{}})
	})
	client, _ := testClient(t, mux)

	orders, err := client.ListAdminOrders(context.Background())
	if err != nil {
		t.Fatalf("ListAdminOrders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(orders))
	}
	if got := orderCalls.Load(); got != 2 {
		t.Fatalf("order endpoint called %d times, want 2", got)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   ErrorCode
	}{
		{"forbidden", http.StatusForbidden, `{"error":"nope"}`, ErrCodeUnauthenticated},
		{"not found", http.StatusNotFound, `{"message":"no such order"}`, ErrCodeNotFound},
		{"conflict", http.StatusConflict, `{"error":"already done"}`, ErrCodeConflict},
		{"server error", http.StatusInternalServerError, `boom`, ErrCodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/login" {
					writeLogin(w, true)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := client.UpdateOrderStatus(context.Background(), "o1", StatusPreparing)
			if CodeOf(err) != tt.code {
				t.Fatalf("code = %q, want %q (err=%v)", CodeOf(err), tt.code, err)
			}
		})
	}
}

func TestGetAdminOrderRejectsInvalidPayload(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			writeLogin(w, true)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "o1", "status": "MYSTERY"})
	}))

	_, err := client.GetAdminOrder(context.Background(), "o1")
	if CodeOf(err) != ErrCodeDecode {
		t.Fatalf("err = %v, want DECODE_ERROR", err)
	}
}
