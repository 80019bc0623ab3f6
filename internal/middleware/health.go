package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "down"
)

// Check is one dependency reported by /healthz. A failing optional check
// degrades the report but keeps it at 200.
type Check struct {
	Name     string
	Run      func(ctx context.Context) error
	Timeout  time.Duration
	Optional bool
}

// DatabaseCheck pings the ingredient catalog. Nothing is served without it.
func DatabaseCheck(db *sql.DB) Check {
	return Check{Name: "database", Run: db.PingContext, Timeout: 2 * time.Second}
}

// Pinger is implemented by inference clients that can reach their server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InferenceCheck reaches the model server. The GPU host is stopped outside
// working hours and classification still answers from the catalog then.
func InferenceCheck(p Pinger) Check {
	return Check{Name: "inference", Run: p.Ping, Timeout: 3 * time.Second, Optional: true}
}

type healthReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

type checkResult struct {
	Status    string `json:"status"`
	Optional  bool   `json:"optional,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler runs every check in order. Any required failure answers 503.
func HealthHandler(checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{
			Status:    statusOK,
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]checkResult, len(checks)),
		}

		for _, c := range checks {
			res := runCheck(r.Context(), c)
			report.Checks[c.Name] = res
			switch {
			case res.Status == statusOK:
			case c.Optional:
				if report.Status == statusOK {
					report.Status = statusDegraded
				}
			default:
				report.Status = statusDown
			}
		}

		code := http.StatusOK
		if report.Status == statusDown {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

func runCheck(ctx context.Context, c Check) checkResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.Run(ctx)
	res := checkResult{
		Status:    statusOK,
		Optional:  c.Optional,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Status = statusDown
		res.Error = err.Error()
	}
	return res
}

// LivenessHandler answers plain "ok".
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
