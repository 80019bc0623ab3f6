package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

// IngredientRepository stores ingredients in Postgres and ranks names with
// pg_trgm's similarity().
type IngredientRepository struct {
	db *sql.DB
}

func NewIngredientRepository(db *sql.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// FindMostSimilar returns the best match above threshold, or nil.
func (r *IngredientRepository) FindMostSimilar(ctx context.Context, table, name string, threshold float64) (*domain.Ingredient, error) {
	q := fmt.Sprintf(`
SELECT id, name, is_safe, percentageifany, description, cases_where_harmful
FROM %s
WHERE similarity(name, $1) > $2
ORDER BY similarity(name, $1) DESC
LIMIT 1;`, pq.QuoteIdentifier(table))

	var (
		in    domain.Ingredient
		pct   sql.NullString
		desc  sql.NullString
		cases pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, q, name, threshold).Scan(&in.ID, &in.Name, &in.IsSafe, &pct, &desc, &cases)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	in.PercentageIfAny = fromNull(pct)
	in.Description = fromNull(desc)
	in.CasesWhereHarmful = []string(cases)
	return &in, nil
}

// ExistsByName checks for a row with the same name ignoring case.
func (r *IngredientRepository) ExistsByName(ctx context.Context, table, name string) (bool, error) {
	q := fmt.Sprintf(`SELECT 1 FROM %s WHERE LOWER(name) = LOWER($1) LIMIT 1;`, pq.QuoteIdentifier(table))
	var one int
	err := r.db.QueryRowContext(ctx, q, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert adds one ingredient row.
func (r *IngredientRepository) Insert(ctx context.Context, table string, in *domain.Ingredient) error {
	q := fmt.Sprintf(`
INSERT INTO %s
  (id, name, is_safe, percentageifany, description, cases_where_harmful)
VALUES ($1,$2,$3,$4,$5,$6);`, pq.QuoteIdentifier(table))

	_, err := r.db.ExecContext(ctx, q,
		in.ID, in.Name, in.IsSafe,
		toNull(in.PercentageIfAny), toNull(in.Description),
		pq.Array(in.CasesWhereHarmful),
	)
	return err
}
