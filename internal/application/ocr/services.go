package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"log/slog"
	"time"

	// decoders accepted for uploads
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"

	"github.com/aakankshagupta18/klean-backend/internal/application"
	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ocr"
)

const jpegQuality = 95

// DefaultMaxPixels caps the decoded size of an upload (40 MP).
const DefaultMaxPixels = 40_000_000

// Service normalises uploaded label photos and runs OCR on them.
type Service struct {
	Extractor domain.Extractor
	// Artifacts is optional; when set every normalised image is archived.
	Artifacts domain.ArtifactStore
	Clock     application.Clock
	// MaxPixels bounds width*height; 0 means DefaultMaxPixels.
	MaxPixels int
	Logger    *slog.Logger
}

// ExtractText decodes the upload, re-encodes it as RGB JPEG and returns the
// recognised text lines.
func (s *Service) ExtractText(ctx context.Context, filename string, r io.Reader) ([]string, error) {
	if s.Extractor == nil {
		return nil, domain.ErrNotConfigured
	}
	img, err := Normalize(r, s.MaxPixels)
	if err != nil {
		return nil, err
	}

	if s.Artifacts != nil {
		key := fmt.Sprintf("ocr/%s/%s.jpg", s.now().Format("2006/01/02"), uuid.New().String())
		// archive is best effort, OCR still runs
		if url, err := s.Artifacts.Put(ctx, key, img, "image/jpeg"); err != nil {
			s.logger().Warn("ocr archive failed", "file", filename, "error", err)
		} else {
			s.logger().Debug("ocr image archived", "file", filename, "url", url)
		}
	}

	lines, err := s.Extractor.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", filename, err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

// Normalize decodes any supported image format and re-encodes it as an
// opaque JPEG, flattening transparency onto white. The header is checked
// against maxPixels before any pixel buffer is allocated.
func Normalize(r io.Reader, maxPixels int) ([]byte, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w: %w", domain.ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels: %w", domain.ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("image is %dx%d, over the %d pixel limit: %w",
			cfg.Width, cfg.Height, maxPixels, domain.ErrInvalidImage)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w: %w", domain.ErrInvalidImage, err)
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("image has no pixels: %w", domain.ErrInvalidImage)
	}
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, b, src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
