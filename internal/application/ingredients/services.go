package ingredients

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

// DefaultVariant names the table used when a route carries no suffix.
const DefaultVariant = "default"

// DefaultThreshold minimum similarity for a store lookup to count as a hit.
const DefaultThreshold = 0.4

// Service implements the ingredient use cases.
// Service holds no per-request state and is safe for concurrent use.
type Service struct {
	Repo domain.Repository

	// Tables maps a variant name to its ingredient table.
	Tables map[string]string

	// ClassifyVariant is used by Classify when the caller names no variant.
	ClassifyVariant string

	Threshold float64
	Logger    *slog.Logger
}

// Variants lists configured variant names in sorted order.
func (s *Service) Variants() []string {
	out := make([]string, 0, len(s.Tables))
	for v := range s.Tables {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Table resolves a variant to its table name; "" means DefaultVariant.
func (s *Service) Table(variant string) (string, error) {
	if variant == "" {
		variant = DefaultVariant
	}
	t, ok := s.Tables[variant]
	if !ok {
		return "", fmt.Errorf("%q: %w", variant, domain.ErrUnknownVariant)
	}
	return t, nil
}

// Classify looks every input up in the store and partitions the inputs into
// known records and unknown names. Each input lands in exactly one partition.
func (s *Service) Classify(ctx context.Context, variant string, inputs []string) (domain.ClassificationResult, error) {
	if len(inputs) == 0 {
		return domain.ClassificationResult{}, fmt.Errorf("ingredients list is empty: %w", domain.ErrInvalidInput)
	}
	if variant == "" {
		variant = s.ClassifyVariant
	}
	table, err := s.Table(variant)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	normalized := make([]string, len(inputs))
	for i, raw := range inputs {
		normalized[i] = strings.ToLower(strings.TrimSpace(raw))
	}

	own := make(map[int]*domain.Ingredient)
	byName := make(map[string]*domain.Ingredient)
	var similar []string

	for i, name := range normalized {
		if name == "" {
			continue
		}
		rec, err := s.Repo.FindMostSimilar(ctx, table, name, s.threshold())
		if err != nil {
			return domain.ClassificationResult{}, fmt.Errorf("lookup %q: %w: %w", name, domain.ErrServiceUnavailable, err)
		}
		if rec == nil {
			continue
		}
		own[i] = rec
		key := strings.ToLower(rec.Name)
		if _, seen := byName[key]; !seen {
			byName[key] = rec
			similar = append(similar, key)
		}
	}

	res := domain.ClassificationResult{
		Known:   []domain.Ingredient{},
		Unknown: []string{},
	}
	for i, name := range normalized {
		rec := own[i]
		if rec == nil && name != "" {
			if match, ok := domain.FirstMatch(name, similar); ok {
				rec = byName[match]
			}
		}
		if rec == nil {
			res.Unknown = append(res.Unknown, name)
			continue
		}
		k := *rec
		k.Input = name
		res.Known = append(res.Known, k)
	}

	s.logger().Debug("classified ingredients",
		"table", table,
		"inputs", len(inputs),
		"known", len(res.Known),
		"unknown", len(res.Unknown),
	)
	return res, nil
}

// Score computes the safety report for already classified ingredients.
func (s *Service) Score(known []domain.Ingredient) (domain.SafetyReport, error) {
	return domain.Score(known)
}

// Upload inserts records that are not yet present (by case-insensitive name)
// into the variant's table. Failures are per record and never abort the batch.
func (s *Service) Upload(ctx context.Context, variant string, records []domain.Ingredient) (domain.UploadResult, error) {
	if len(records) == 0 {
		return domain.UploadResult{}, fmt.Errorf("no ingredients provided: %w", domain.ErrInvalidInput)
	}
	table, err := s.Table(variant)
	if err != nil {
		return domain.UploadResult{}, err
	}

	res := domain.UploadResult{
		Inserted: []domain.Ingredient{},
		Skipped:  []domain.Ingredient{},
		Failed:   []domain.FailedRecord{},
	}
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Input = ""
		if rec.Name == "" {
			res.Failed = append(res.Failed, domain.FailedRecord{Name: rec.Name, Error: "name is required"})
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = uuid.New().String()
		}

		exists, err := s.Repo.ExistsByName(ctx, table, rec.Name)
		if err != nil {
			s.fail(&res, table, rec, err)
			continue
		}
		if exists {
			res.Skipped = append(res.Skipped, rec)
			continue
		}
		if err := s.Repo.Insert(ctx, table, &rec); err != nil {
			s.fail(&res, table, rec, err)
			continue
		}
		res.Inserted = append(res.Inserted, rec)
	}

	s.logger().Info("ingredient upload finished",
		"table", table,
		"inserted", len(res.Inserted),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
	)
	return res, nil
}

func (s *Service) fail(res *domain.UploadResult, table string, rec domain.Ingredient, err error) {
	s.logger().Warn("ingredient insert failed", "table", table, "name", rec.Name, "error", err)
	res.Failed = append(res.Failed, domain.FailedRecord{Name: rec.Name, Error: err.Error()})
}

func (s *Service) threshold() float64 {
	if s.Threshold <= 0 {
		return DefaultThreshold
	}
	return s.Threshold
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
