package session

import (
	"context"
	"net/http"

	"github.com/codehasanali/rafine-web/pkg/response"
)

type contextKey string

const sessionContextKey contextKey = "sessionContext"

type Context struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, sessionContextKey, sc)
}

func FromContext(ctx context.Context) (*Context, bool) {
	value := ctx.Value(sessionContextKey)
	if value == nil {
		return nil, false
	}
	sc, ok := value.(*Context)
	return sc, ok
}

// Auth gates the admin API behind a valid dashboard session token.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := VerifyToken(token, secret)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
				return
			}
			if !claims.IsAdmin {
				response.Error(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}

			sc := &Context{UserID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), sc)))
		})
	}
}
