package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ScansTriggered     uint64
	ScansRejected      uint64
	ScanTriggerFailed  uint64
	TokenModalOpens    uint64
	ActiveSessions     uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementScansTriggered counts scans the backend accepted
func IncrementScansTriggered() {
	atomic.AddUint64(&globalMetrics.ScansTriggered, 1)
}

// IncrementScansRejected counts submissions stopped by local validation
func IncrementScansRejected() {
	atomic.AddUint64(&globalMetrics.ScansRejected, 1)
}

// IncrementScanTriggerFailed counts submissions the backend refused or never received
func IncrementScanTriggerFailed() {
	atomic.AddUint64(&globalMetrics.ScanTriggerFailed, 1)
}

// IncrementTokenModalOpens counts token breakdown views
func IncrementTokenModalOpens() {
	atomic.AddUint64(&globalMetrics.TokenModalOpens, 1)
}

// SetActiveSessions records the current session count
func SetActiveSessions(n int) {
	atomic.StoreUint64(&globalMetrics.ActiveSessions, uint64(n))
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"scans_triggered":      atomic.LoadUint64(&globalMetrics.ScansTriggered),
		"scans_rejected":       atomic.LoadUint64(&globalMetrics.ScansRejected),
		"scan_trigger_failed":  atomic.LoadUint64(&globalMetrics.ScanTriggerFailed),
		"token_modal_opens":    atomic.LoadUint64(&globalMetrics.TokenModalOpens),
		"active_sessions":      atomic.LoadUint64(&globalMetrics.ActiveSessions),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
