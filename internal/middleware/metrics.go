package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores process-wide counters.
type Metrics struct {
	RequestsTotal       uint64
	RequestsInProgress  uint64
	RequestsSuccess     uint64
	RequestsFailed      uint64
	IngredientsChecked  uint64
	IngredientsKnown    uint64
	IngredientsInserted uint64
	IngredientsSkipped  uint64
	IngredientsFailed   uint64
	InferenceCalls      uint64
	InferenceFailed     uint64
	OCRImages           uint64
	StartTime           time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// RecordCheck counts one classification call.
func RecordCheck(inputs, known int) {
	atomic.AddUint64(&globalMetrics.IngredientsChecked, uint64(inputs))
	atomic.AddUint64(&globalMetrics.IngredientsKnown, uint64(known))
}

// RecordUpload counts the outcome of one upload batch.
func RecordUpload(inserted, skipped, failed int) {
	atomic.AddUint64(&globalMetrics.IngredientsInserted, uint64(inserted))
	atomic.AddUint64(&globalMetrics.IngredientsSkipped, uint64(skipped))
	atomic.AddUint64(&globalMetrics.IngredientsFailed, uint64(failed))
}

func RecordInference(err error) {
	atomic.AddUint64(&globalMetrics.InferenceCalls, 1)
	if err != nil {
		atomic.AddUint64(&globalMetrics.InferenceFailed, 1)
	}
}

func RecordOCR() {
	atomic.AddUint64(&globalMetrics.OCRImages, 1)
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
		"ingredients_checked":  atomic.LoadUint64(&globalMetrics.IngredientsChecked),
		"ingredients_known":    atomic.LoadUint64(&globalMetrics.IngredientsKnown),
		"ingredients_inserted": atomic.LoadUint64(&globalMetrics.IngredientsInserted),
		"ingredients_skipped":  atomic.LoadUint64(&globalMetrics.IngredientsSkipped),
		"ingredients_failed":   atomic.LoadUint64(&globalMetrics.IngredientsFailed),
		"inference_calls":      atomic.LoadUint64(&globalMetrics.InferenceCalls),
		"inference_failed":     atomic.LoadUint64(&globalMetrics.InferenceFailed),
		"ocr_images":           atomic.LoadUint64(&globalMetrics.OCRImages),
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
		atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
		atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
