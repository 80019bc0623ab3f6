package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	domcompute "github.com/aakankshagupta18/klean-backend/internal/domain/compute"
	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	domocr "github.com/aakankshagupta18/klean-backend/internal/domain/ocr"
	"github.com/aakankshagupta18/klean-backend/internal/middleware"
)

// POST /ocr-api
// Multipart form with the image in field "file".
func (r *Router) handleOCR(w http.ResponseWriter, req *http.Request) error {
	if r.ocr == nil {
		return domocr.ErrNotConfigured
	}
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	f, hdr, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("file field: %w: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	lines, err := r.ocr.ExtractText(req.Context(), hdr.Filename, f)
	if err != nil {
		return err
	}
	middleware.RecordOCR()
	writeJSON(w, http.StatusOK, map[string][]string{"text": lines})
	return nil
}

// GET /start-ollama
func (r *Router) handleStartCompute(w http.ResponseWriter, req *http.Request) error {
	if r.compute == nil {
		return domcompute.ErrNotConfigured
	}
	res, err := r.compute.Start(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /stop-ollama
func (r *Router) handleStopCompute(w http.ResponseWriter, req *http.Request) error {
	if r.compute == nil {
		return domcompute.ErrNotConfigured
	}
	res, err := r.compute.Stop(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}
