package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("done"))
})

func TestRateLimit(t *testing.T) {
	h := RateLimit(NewRateLimiter(0.001, 2, time.Minute))(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/check-ingredients", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/check-ingredients", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health endpoints skip the limiter
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"secret"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetAPIKeyFromContext(r.Context())))
	}))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Authorization", "Bearer secret", http.StatusOK},
		{"raw", "Authorization", "secret", http.StatusOK},
		{"x-api-key", "X-API-Key", "secret", http.StatusOK},
		{"wrong", "Authorization", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ask", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "secret", rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_InferenceDownIsDegraded(t *testing.T) {
	h := HealthHandler([]Check{
		{Name: "database", Run: func(context.Context) error { return nil }},
		{Name: "inference", Optional: true, Run: func(context.Context) error { return errors.New("connection refused") }},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status   string `json:"status"`
			Optional bool   `json:"optional"`
			Error    string `json:"error"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"].Status)
	assert.Equal(t, "down", body.Checks["inference"].Status)
	assert.True(t, body.Checks["inference"].Optional)
	assert.Equal(t, "connection refused", body.Checks["inference"].Error)
}

func TestHealthHandler_DatabaseDownIs503(t *testing.T) {
	h := HealthHandler([]Check{
		{Name: "database", Run: func(context.Context) error { return errors.New("dial tcp: i/o timeout") }},
		{Name: "inference", Optional: true, Run: func(context.Context) error { return errors.New("connection refused") }},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"down"`)
	assert.Contains(t, rec.Body.String(), "i/o timeout")
}

func TestHealthHandler_CheckTimeout(t *testing.T) {
	h := HealthHandler([]Check{{
		Name:     "inference",
		Optional: true,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deadline exceeded")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestInferenceCheckIsOptional(t *testing.T) {
	c := InferenceCheck(fakePinger{err: errors.New("gpu stopped")})
	assert.Equal(t, "inference", c.Name)
	assert.True(t, c.Optional)
	assert.EqualError(t, c.Run(context.Background()), "gpu stopped")
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ask", nil))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "path=/ask")
	assert.Contains(t, out, "status=502")
}

func TestMetrics(t *testing.T) {
	before := GetMetrics()
	RecordUpload(2, 1, 0)
	RecordInference(errors.New("down"))

	h := MetricsMiddleware(okHandler)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	after := GetMetrics()
	assert.Equal(t, before["ingredients_inserted"].(uint64)+2, after["ingredients_inserted"])
	assert.Equal(t, before["inference_failed"].(uint64)+1, after["inference_failed"])
	assert.Equal(t, before["requests_success"].(uint64)+1, after["requests_success"])
}

func TestValidators(t *testing.T) {
	require.NoError(t, ValidateVariant("qwen"))
	assert.Error(t, ValidateVariant("Qwen!"))
	assert.Error(t, ValidateIngredientName("   "))
	assert.Error(t, ValidateQuestion(""))
	assert.Error(t, ValidateIngredientList(make([]string, MaxIngredients+1)))
	assert.Equal(t, "water", SanitizeString(" wa\x00ter\x07 "))
}
