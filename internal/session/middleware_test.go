package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddleware(t *testing.T) {
	adminToken, err := IssueToken(testSecret, "u1", "ops@example.com", true, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	staffToken, err := IssueToken(testSecret, "u2", "staff@example.com", false, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var seen *Context
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"non-admin token", "Bearer " + staffToken, http.StatusForbidden},
		{"admin token", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.UserID != "u1" || !seen.IsAdmin {
					t.Fatalf("session context = %+v", seen)
				}
			}
		})
	}
}
