package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

const schema = "CREATE TABLE `ingredient` (" +
	"id TEXT PRIMARY KEY, name TEXT NOT NULL, is_safe BOOLEAN NOT NULL, " +
	"percentageifany TEXT, description TEXT, cases_where_harmful TEXT)"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func newTestRepo(t *testing.T) *IngredientRepository {
	t.Helper()
	return NewIngredientRepository(newTestDB(t))
}

func strPtr(s string) *string { return &s }

func TestIngredientRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{
		ID: "1", Name: "Avobenzone", IsSafe: true,
		PercentageIfAny:   strPtr("3%"),
		CasesWhereHarmful: []string{"photo-allergy"},
	}))
	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{
		ID: "2", Name: "Oxybenzone", IsSafe: false, Description: strPtr("endocrine disruptor"),
	}))

	got, err := repo.FindMostSimilar(ctx, "ingredient", "avobenzone 3%", 0.4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ID)
	assert.True(t, got.IsSafe)
	assert.Equal(t, "3%", *got.PercentageIfAny)
	assert.Nil(t, got.Description)
	assert.Equal(t, []string{"photo-allergy"}, got.CasesWhereHarmful)

	got, err = repo.FindMostSimilar(ctx, "ingredient", "oxybenzone", 0.4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "endocrine disruptor", *got.Description)
	assert.Nil(t, got.CasesWhereHarmful)

	got, err = repo.FindMostSimilar(ctx, "ingredient", "glycerin", 0.4)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIngredientRepository_ExistsByName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{ID: "1", Name: "Water", IsSafe: true}))

	ok, err := repo.ExistsByName(ctx, "ingredient", "WATER")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByName(ctx, "ingredient", "aqua")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngredientRepository_UnknownTable(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.FindMostSimilar(context.Background(), "missing", "water", 0.4)
	assert.Error(t, err)
}

func TestIngredientRepository_SnapshotReusedUntilInsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIngredientRepositoryTTL(db, time.Hour)
	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{ID: "1", Name: "Glycerin", IsSafe: true}))

	got, err := repo.FindMostSimilar(ctx, "ingredient", "niacinamide", 0.4)
	require.NoError(t, err)
	assert.Nil(t, got)

	// a row written behind the repository stays invisible while the
	// snapshot is live, so the table is not rescanned per lookup
	_, err = db.Exec("INSERT INTO `ingredient` (id, name, is_safe) VALUES ('2', 'Niacinamide', 1)")
	require.NoError(t, err)
	got, err = repo.FindMostSimilar(ctx, "ingredient", "niacinamide", 0.4)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{ID: "3", Name: "Squalane", IsSafe: true}))
	got, err = repo.FindMostSimilar(ctx, "ingredient", "niacinamide", 0.4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.ID)
}

func TestIngredientRepository_SnapshotExpires(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIngredientRepositoryTTL(db, 20*time.Millisecond)

	got, err := repo.FindMostSimilar(ctx, "ingredient", "glycerin", 0.4)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = db.Exec("INSERT INTO `ingredient` (id, name, is_safe) VALUES ('1', 'Glycerin', 1)")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, err := repo.FindMostSimilar(ctx, "ingredient", "glycerin", 0.4)
		return err == nil && got != nil && got.ID == "1"
	}, time.Second, 10*time.Millisecond)
}

func TestIngredientRepository_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{ID: "1", Name: "Glycerin", IsSafe: true}))

	got, err := repo.FindMostSimilar(ctx, "ingredient", "glycerin", 0.4)
	require.NoError(t, err)
	require.NotNil(t, got)
	got.Name = "mutated"

	again, err := repo.FindMostSimilar(ctx, "ingredient", "glycerin", 0.4)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, "Glycerin", again.Name)
}
