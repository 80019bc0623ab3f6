package httpserver

import (
	"fmt"
	"net/http"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	"github.com/aakankshagupta18/klean-backend/internal/middleware"
)

// POST /ask[-variant]
// Body: {"question": "..."}
func (r *Router) handleAsk(variant string) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body struct {
			Question string `json:"question"`
		}
		if err := decodeJSON(w, req, &body); err != nil {
			return err
		}
		if err := middleware.ValidateQuestion(body.Question); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		answer, err := r.ai.Ask(req.Context(), variant, body.Question)
		middleware.RecordInference(err)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
		return nil
	}
}

// POST /assess-ingredient[-variant]
// Body: {"name": "..."}
// The model's assessment is returned but not stored; callers upload it.
func (r *Router) handleAssess(variant string) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(w, req, &body); err != nil {
			return err
		}
		name := middleware.SanitizeString(body.Name)
		if err := middleware.ValidateIngredientName(name); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		rec, err := r.ai.Assess(req.Context(), variant, name)
		middleware.RecordInference(err)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, rec)
		return nil
	}
}
