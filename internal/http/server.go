// Package http serves the public menu and checkout API plus the
// password-gated admin endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mataam/internal/cache"
	"mataam/internal/config"
	"mataam/internal/core"
	applog "mataam/internal/log"
	"mataam/internal/services"

	"github.com/rs/cors"
)

// Store is the storage surface the handlers need.
type Store interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListItems(ctx context.Context, categoryID string, activeOnly bool) ([]core.MenuItem, error)
	GetItem(ctx context.Context, id string) (core.MenuItem, error)
	CreateItem(ctx context.Context, m core.MenuItem) (core.MenuItem, error)
	UpdateItem(ctx context.Context, m core.MenuItem) (core.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error

	Seed(ctx context.Context) error
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	store         Store
	orders        *services.OrderService
	stats         *services.StatsService
	restName      string
	restPhone     string
	siteURL       string
	adminPassword string

	logger      *applog.Logger
	metrics     *appMetrics
	rateLimiter *rateLimiter

	categoriesCache *cache.LRUCache[[]core.Category]
	itemsCache      *cache.LRUCache[[]core.MenuItem]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes, caches, CORS, and middleware into a
// ready-to-run server.
func NewServer(cfg *config.Config, store Store, orders *services.OrderService, stats *services.StatsService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:         store,
		orders:        orders,
		stats:         stats,
		restName:      cfg.RestaurantName,
		restPhone:     cfg.RestaurantPhone,
		siteURL:       cfg.SiteURL,
		adminPassword: cfg.AdminPassword,

		logger:      applog.New(applog.Config{Component: applog.ComponentHTTP}),
		metrics:     newAppMetrics(),
		rateLimiter: newRateLimiter(cfg.OrderRateLimit),

		categoriesCache: cache.NewLRUCache[[]core.Category](8, cfg.CategoriesCacheTTL),
		itemsCache:      cache.NewLRUCache[[]core.MenuItem](64, cfg.ItemsCacheTTL),
		cacheManager:    cache.NewManager(),
	}
	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.Register(s.itemsCache)
	s.cacheManager.StartCleanup(cfg.CacheCleanup)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Public menu and checkout.
	mux.HandleFunc("GET /api/categories", s.withRequestLog(s.handleListCategories))
	mux.HandleFunc("GET /api/items", s.withRequestLog(s.handleListItems))
	mux.HandleFunc("POST /api/orders", s.withRequestLog(s.handleCreateOrder))

	// Admin.
	mux.HandleFunc("GET /api/qrcode", s.withRequestLog(s.requireAdmin(s.handleQRCode)))
	mux.HandleFunc("POST /api/categories", s.withRequestLog(s.requireAdmin(s.handleCreateCategory)))
	mux.HandleFunc("PUT /api/categories/{id}", s.withRequestLog(s.requireAdmin(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withRequestLog(s.requireAdmin(s.handleDeleteCategory)))
	mux.HandleFunc("POST /api/items", s.withRequestLog(s.requireAdmin(s.handleCreateItem)))
	mux.HandleFunc("PUT /api/items/{id}", s.withRequestLog(s.requireAdmin(s.handleUpdateItem)))
	mux.HandleFunc("DELETE /api/items/{id}", s.withRequestLog(s.requireAdmin(s.handleDeleteItem)))
	mux.HandleFunc("GET /api/orders", s.withRequestLog(s.requireAdmin(s.handleListOrders)))
	mux.HandleFunc("GET /api/analytics", s.withRequestLog(s.requireAdmin(s.handleAnalytics)))
	mux.HandleFunc("POST /api/admin/seed", s.withRequestLog(s.requireAdmin(s.handleSeed)))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", adminPasswordHeader},
	})

	handler := applog.Middleware(s.logger)(applog.RequestIDMiddleware(requestID)(mux))
	s.Server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(handler),
	}
	return s
}

// requestID honors an upstream X-Request-ID, generating one otherwise.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

// withRequestLog adds security headers, rate limiting on checkout, and
// structured request logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		ctx := r.Context()
		sl := applog.NewStructuredLogger(applog.FromContext(ctx))

		sl.LogHTTPStart(ctx, r, ip)

		// Checkout is the only write the public can reach; throttle it.
		if r.Method == http.MethodPost && r.URL.Path == "/api/orders" && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, ip)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateMenuCaches() {
	s.categoriesCache.Clear()
	s.itemsCache.Clear()
}
