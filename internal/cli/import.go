package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

var importVariant string

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Upload a JSON array of ingredient records",
	Long: `Import reads the same JSON array accepted by POST /upload-ingredients and
inserts every record whose name is not already stored.`,
	Example: `  klean import seed.json
  klean import seed.json --variant gemma`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importVariant, "variant", "default", "target variant table")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var records []domain.Ingredient
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.ingredientService().Upload(cmd.Context(), importVariant, records)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "inserted: %d, skipped: %d, failed: %d\n", len(res.Inserted), len(res.Skipped), len(res.Failed))
	for _, f := range res.Failed {
		fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Error)
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d record(s) failed", len(res.Failed))
	}
	return nil
}
