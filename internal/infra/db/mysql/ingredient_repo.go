package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

// DefaultSnapshotTTL bounds how long a table snapshot serves lookups before
// it is reloaded. Rows written by other processes show up after this.
const DefaultSnapshotTTL = 30 * time.Second

// IngredientRepository stores ingredients in MySQL. MySQL has no trigram
// similarity, so candidates are ranked in process against a cached
// snapshot of each table with the trigram sets precomputed.
type IngredientRepository struct {
	db        *sql.DB
	snapshots *gocache.Cache
}

func NewIngredientRepository(db *sql.DB) *IngredientRepository {
	return NewIngredientRepositoryTTL(db, DefaultSnapshotTTL)
}

func NewIngredientRepositoryTTL(db *sql.DB, ttl time.Duration) *IngredientRepository {
	return &IngredientRepository{
		db:        db,
		snapshots: gocache.New(ttl, 2*ttl),
	}
}

type candidate struct {
	in    *domain.Ingredient
	grams map[string]struct{}
}

// FindMostSimilar returns the best match above threshold, or nil. Ties keep
// the first row in primary key order.
func (r *IngredientRepository) FindMostSimilar(ctx context.Context, table, name string, threshold float64) (*domain.Ingredient, error) {
	rows, err := r.snapshot(ctx, table)
	if err != nil {
		return nil, err
	}

	query := trigrams(name)
	var (
		best      *domain.Ingredient
		bestScore = threshold
	)
	for _, c := range rows {
		if score := jaccard(c.grams, query); score > bestScore {
			best, bestScore = c.in, score
		}
	}
	if best == nil {
		return nil, nil
	}
	out := *best
	return &out, nil
}

// snapshot loads every row of table once per TTL.
func (r *IngredientRepository) snapshot(ctx context.Context, table string) ([]candidate, error) {
	if v, ok := r.snapshots.Get(table); ok {
		return v.([]candidate), nil
	}

	q := fmt.Sprintf(`
SELECT id, name, is_safe, percentageifany, description, cases_where_harmful
FROM %s
ORDER BY id;`, quoteIdent(table))

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []candidate
	for rows.Next() {
		in, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate{in: in, grams: trigrams(in.Name)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.snapshots.SetDefault(table, out)
	return out, nil
}

// ExistsByName checks for a row with the same name ignoring case.
func (r *IngredientRepository) ExistsByName(ctx context.Context, table, name string) (bool, error) {
	q := fmt.Sprintf(`SELECT 1 FROM %s WHERE LOWER(name) = LOWER(?) LIMIT 1;`, quoteIdent(table))
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
VALUES (?,?,?,?,?,?);`, quoteIdent(table))

	cases, err := encodeCases(in.CasesWhereHarmful)
	if err != nil {
		return fmt.Errorf("encode cases_where_harmful: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		in.ID, in.Name, in.IsSafe,
		toNull(in.PercentageIfAny), toNull(in.Description), cases,
	)
	if err != nil {
		return err
	}
	r.snapshots.Delete(table)
	return nil
}

func scanIngredient(rows *sql.Rows) (*domain.Ingredient, error) {
	var (
		in    domain.Ingredient
		pct   sql.NullString
		desc  sql.NullString
		cases sql.NullString
	)
	if err := rows.Scan(&in.ID, &in.Name, &in.IsSafe, &pct, &desc, &cases); err != nil {
		return nil, err
	}
	in.PercentageIfAny = fromNull(pct)
	in.Description = fromNull(desc)
	in.CasesWhereHarmful = decodeCases(cases)
	return &in, nil
}
