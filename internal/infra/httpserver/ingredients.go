package httpserver

import (
	"fmt"
	"net/http"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	"github.com/aakankshagupta18/klean-backend/internal/middleware"
)

// POST /check-ingredients?variant=
// Body: {"ingredients": ["water", "avobenzone 3%"]}
func (r *Router) handleCheck(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateIngredientList(body.Ingredients); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	for i, s := range body.Ingredients {
		body.Ingredients[i] = middleware.SanitizeString(s)
	}

	variant := req.URL.Query().Get("variant")
	if variant != "" {
		if err := middleware.ValidateVariant(variant); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
	}

	res, err := r.ingredients.Classify(req.Context(), variant, body.Ingredients)
	if err != nil {
		return err
	}
	middleware.RecordCheck(len(body.Ingredients), len(res.Known))
	writeJSON(w, http.StatusOK, res)
	return nil
}

// POST /safety-percentage
// Body: {"payload": {"known": [...], "unknown": [...]}}
func (r *Router) handleSafety(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Payload domain.ClassificationResult `json:"payload"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	report, err := r.ingredients.Score(body.Payload.Known)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}

type uploadResponse struct {
	InsertedCount   int                   `json:"inserted_count"`
	SkippedExisting []domain.Ingredient   `json:"skipped_existing"`
	Failed          []domain.FailedRecord `json:"failed"`
}

// POST /upload-ingredients[-variant]
// Body: [{"name": "...", "is_safe": true, ...}]
func (r *Router) handleUpload(variant string) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var records []domain.Ingredient
		if err := decodeJSON(w, req, &records); err != nil {
			return err
		}
		for i := range records {
			records[i].Name = middleware.SanitizeString(records[i].Name)
		}

		res, err := r.ingredients.Upload(req.Context(), variant, records)
		if err != nil {
			return err
		}
		middleware.RecordUpload(len(res.Inserted), len(res.Skipped), len(res.Failed))

		resp := uploadResponse{
			InsertedCount:   len(res.Inserted),
			SkippedExisting: res.Skipped,
			Failed:          res.Failed,
		}
		if resp.SkippedExisting == nil {
			resp.SkippedExisting = []domain.Ingredient{}
		}
		if resp.Failed == nil {
			resp.Failed = []domain.FailedRecord{}
		}
		writeJSON(w, http.StatusOK, resp)
		return nil
	}
}
