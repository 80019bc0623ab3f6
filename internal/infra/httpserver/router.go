package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appai "github.com/aakankshagupta18/klean-backend/internal/application/ai"
	appcompute "github.com/aakankshagupta18/klean-backend/internal/application/compute"
	appingredients "github.com/aakankshagupta18/klean-backend/internal/application/ingredients"
	appocr "github.com/aakankshagupta18/klean-backend/internal/application/ocr"
	domai "github.com/aakankshagupta18/klean-backend/internal/domain/ai"
	domcompute "github.com/aakankshagupta18/klean-backend/internal/domain/compute"
	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	domocr "github.com/aakankshagupta18/klean-backend/internal/domain/ocr"
	"github.com/aakankshagupta18/klean-backend/internal/middleware"
)

const (
	maxJSONBody      = 8 << 20
	defaultMaxUpload = 10 << 20
)

// Deps are the process-wide collaborators the router serves.
type Deps struct {
	Ingredients *appingredients.Service
	AI          *appai.Service
	OCR         *appocr.Service
	Compute     *appcompute.Service

	Health      []middleware.Check
	RateLimiter *middleware.RateLimiter
	APIKeys     []string
	CORSOrigins []string
	// MaxUploadBytes bounds /ocr-api bodies; 0 means 10 MiB.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Router struct {
	ingredients *appingredients.Service
	ai          *appai.Service
	ocr         *appocr.Service
	compute     *appcompute.Service
	maxUpload   int64
	logger      *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		ingredients: d.Ingredients,
		ai:          d.AI,
		ocr:         d.OCR,
		compute:     d.Compute,
		maxUpload:   d.MaxUploadBytes,
		logger:      d.Logger,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.APIKeyAuth(d.APIKeys))
	if d.RateLimiter != nil {
		mux.Use(middleware.RateLimit(d.RateLimiter))
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(d.Health))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/check-ingredients", r.wrap(r.handleCheck))
	mux.Post("/safety-percentage", r.wrap(r.handleSafety))
	mux.Post("/upload-ingredients", r.wrap(r.handleUpload(appingredients.DefaultVariant)))
	for _, v := range r.ingredients.Variants() {
		if v == appingredients.DefaultVariant {
			continue
		}
		mux.Post("/upload-ingredients-"+v, r.wrap(r.handleUpload(v)))
	}

	mux.Post("/ask", r.wrap(r.handleAsk(appai.DefaultVariant)))
	mux.Post("/assess-ingredient", r.wrap(r.handleAssess(appai.DefaultVariant)))
	for _, v := range r.ai.Variants() {
		if v == appai.DefaultVariant {
			continue
		}
		mux.Post("/ask-"+v, r.wrap(r.handleAsk(v)))
		mux.Post("/assess-ingredient-"+v, r.wrap(r.handleAssess(v)))
	}

	mux.Post("/ocr-api", r.wrap(r.handleOCR))
	mux.Get("/start-ollama", r.wrap(r.handleStartCompute))
	mux.Get("/stop-ollama", r.wrap(r.handleStopCompute))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code := statusFor(err)
			if code >= 500 {
				r.logger.Error("request failed", "path", req.URL.Path, "status", code, "error", err)
			}
			writeJSON(w, code, map[string]string{"error": err.Error()})
		}
	}
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domocr.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnknownVariant):
		return http.StatusNotFound
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrServiceUnavailable),
		errors.Is(err, domai.ErrServiceUnavailable),
		errors.Is(err, domcompute.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domcompute.ErrNotConfigured), errors.Is(err, domocr.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxJSONBody)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}
