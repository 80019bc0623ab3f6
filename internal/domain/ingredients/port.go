package ingredients

import "context"

// Repository port for ingredient tables. Every method takes the target table
// so one implementation serves all variants.
type Repository interface {
	// FindMostSimilar returns the single record whose name is most similar to
	// name with a similarity strictly above threshold, or nil when none is.
	FindMostSimilar(ctx context.Context, table, name string, threshold float64) (*Ingredient, error)
	ExistsByName(ctx context.Context, table, name string) (bool, error)
	Insert(ctx context.Context, table string, in *Ingredient) error
}
