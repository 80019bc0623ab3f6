package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	"github.com/aakankshagupta18/klean-backend/internal/infra/db/migrations"
)

// Set KLEAN_TEST_POSTGRES_DSN to a disposable database URL to run these.
func newTestRepo(t *testing.T) *IngredientRepository {
	t.Helper()
	dsn := os.Getenv("KLEAN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KLEAN_TEST_POSTGRES_DSN not set")
	}

	m, err := migrations.New("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(m))
	t.Cleanup(func() {
		_ = migrations.Down(m)
		_, _ = m.Close()
	})

	db, err := Connect(context.Background(), dsn, Pool{MaxOpenConns: 2, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewIngredientRepository(db)
}

func TestIngredientRepository_Postgres(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pct := "3%"

	require.NoError(t, repo.Insert(ctx, "ingredient", &domain.Ingredient{
		ID: uuid.NewString(), Name: "Avobenzone", IsSafe: true,
		PercentageIfAny: &pct, CasesWhereHarmful: []string{"photo-allergy"},
	}))

	got, err := repo.FindMostSimilar(ctx, "ingredient", "avobenzone 3%", 0.4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Avobenzone", got.Name)
	assert.Equal(t, []string{"photo-allergy"}, got.CasesWhereHarmful)

	ok, err := repo.ExistsByName(ctx, "ingredient", "AVOBENZONE")
	require.NoError(t, err)
	assert.True(t, ok)

	// lower(name) is unique
	err = repo.Insert(ctx, "ingredient", &domain.Ingredient{ID: uuid.NewString(), Name: "avobenzone", IsSafe: true})
	assert.Error(t, err)

	got, err = repo.FindMostSimilar(ctx, "ingredient_qwen", "avobenzone", 0.4)
	require.NoError(t, err)
	assert.Nil(t, got)
}
