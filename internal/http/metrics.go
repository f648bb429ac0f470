package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// appMetrics holds the process counters exposed on /metrics.
type appMetrics struct {
	ordersPlaced int64
	cacheHits    int64
	cacheMisses  int64
	startedAt    time.Time
}

func newAppMetrics() *appMetrics {
	return &appMetrics{startedAt: time.Now()}
}

func (m *appMetrics) orderPlaced() { atomic.AddInt64(&m.ordersPlaced, 1) }
func (m *appMetrics) cacheHit()    { atomic.AddInt64(&m.cacheHits, 1) }
func (m *appMetrics) cacheMiss()   { atomic.AddInt64(&m.cacheMisses, 1) }

// handleMetrics exposes application counters in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	ordersPlaced := atomic.LoadInt64(&s.metrics.ordersPlaced)
	cacheHits := atomic.LoadInt64(&s.metrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.metrics.cacheMisses)
	uptime := time.Since(s.metrics.startedAt)

	fmt.Fprintf(w, "# HELP orders_placed_total Total number of orders placed\n")
	fmt.Fprintf(w, "# TYPE orders_placed_total counter\n")
	fmt.Fprintf(w, "orders_placed_total %d\n\n", ordersPlaced)

	fmt.Fprintf(w, "# HELP menu_cache_hits_total Total menu cache hits\n")
	fmt.Fprintf(w, "# TYPE menu_cache_hits_total counter\n")
	fmt.Fprintf(w, "menu_cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP menu_cache_misses_total Total menu cache misses\n")
	fmt.Fprintf(w, "# TYPE menu_cache_misses_total counter\n")
	fmt.Fprintf(w, "menu_cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP menu_cache_entries Current cached menu entries\n")
	fmt.Fprintf(w, "# TYPE menu_cache_entries gauge\n")
	fmt.Fprintf(w, "menu_cache_entries{cache=\"categories\"} %d\n", s.categoriesCache.Size())
	fmt.Fprintf(w, "menu_cache_entries{cache=\"items\"} %d\n\n", s.itemsCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Clients tracked by the order rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", s.rateLimiter.activeClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Process uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
