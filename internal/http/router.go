package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/codehasanali/rafine-web/internal/config"
	"github.com/codehasanali/rafine-web/internal/http/handlers"
	"github.com/codehasanali/rafine-web/internal/middleware"
	"github.com/codehasanali/rafine-web/internal/session"
	"github.com/codehasanali/rafine-web/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/gate", h.AuthGate)
		r.Post("/auth/login", h.AuthLogin)

		r.Group(func(r chi.Router) {
			r.Use(session.Auth(cfg.SessionSecret))

			r.Get("/auth/me", h.AuthMe)

			r.Get("/orders", h.OrdersList)
			r.Post("/orders/refresh", h.OrdersRefresh)
			r.Get("/orders/{orderId}", h.OrderDetail)
			r.Post("/orders/{orderId}/advance", h.OrderAdvance)
			r.Post("/orders/{orderId}/cancel", h.OrderCancel)
			r.Get("/orders/{orderId}/receipt", h.OrderReceiptPDF)

			r.Get("/stats", h.StatsSummary)

			r.Get("/menu", h.MenuList)
			r.Post("/menu", h.MenuCreate)
			r.Get("/menu/{id}", h.MenuDetail)
			r.Put("/menu/{id}", h.MenuUpdate)
			r.Delete("/menu/{id}", h.MenuDelete)
			r.Get("/menu/{id}/comments", h.MenuItemComments)

			r.Get("/categories", h.CategoriesList)
			r.Post("/categories", h.CategoryCreate)
			r.Put("/categories/{id}", h.CategoryUpdate)
			r.Delete("/categories/{id}", h.CategoryDelete)

			r.Get("/promotions/active", h.PromotionsActive)
			r.Get("/promotions/summary", h.PromotionsSummary)
			r.Post("/promotions", h.PromotionCreate)
			r.Delete("/promotions/{id}", h.PromotionDelete)
			r.Get("/promotions/personal/{userId}", h.PromotionsPersonal)
			r.Post("/promotions/check-usage", h.PromotionCheckUsage)

			r.Get("/users", h.UsersList)
			r.Get("/users/{id}", h.UserDetail)
			r.Patch("/users/{id}", h.UserUpdate)
			r.Delete("/users/{id}", h.UserDelete)
			r.Get("/users/{id}/points", h.UserPoints)

			r.Get("/free-products", h.FreeProductsList)
			r.Post("/free-products", h.FreeProductAssign)
			r.Delete("/free-products/{id}", h.FreeProductDelete)

			r.Delete("/comments/{id}", h.CommentDelete)

			r.Get("/blog/categories", h.BlogCategoriesList)
			r.Post("/blog/categories", h.BlogCategoryCreate)
			r.Delete("/blog/categories/{id}", h.BlogCategoryDelete)
			r.Get("/blog/posts", h.BlogPostsList)
			r.Post("/blog/posts", h.BlogPostCreate)
			r.Get("/blog/posts/{id}", h.BlogPostDetail)
			r.Put("/blog/posts/{id}", h.BlogPostUpdate)
			r.Delete("/blog/posts/{id}", h.BlogPostDelete)

			r.Post("/qr/generate", h.QRGenerate)
			r.Get("/qr/image", h.QRImage)

			r.Post("/upload/menu-image", h.UploadMenuImage)
			r.Post("/upload/blog-image", h.UploadBlogImage)
			r.Post("/upload/delete-image", h.DeleteImage)
		})
	})

	if wsServer != nil {
		r.Get("/ws/orders", wsServer.OrdersWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
