package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

var checkVariant string

var checkCmd = &cobra.Command{
	Use:   "check <ingredient>...",
	Short: "Classify ingredients and print the safety report",
	Example: `  klean check water "avobenzone 3%" fragrance
  klean check --variant gemma talc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkVariant, "variant", "", "variant table (default: catalog.classifyVariant)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	svc := a.ingredientService()
	res, err := svc.Classify(cmd.Context(), checkVariant, args)
	if err != nil {
		return err
	}

	out := struct {
		domain.ClassificationResult
		Report *domain.SafetyReport `json:"report,omitempty"`
	}{ClassificationResult: res}
	if len(res.Known) > 0 {
		rep, err := svc.Score(res.Known)
		if err != nil {
			return err
		}
		out.Report = &rep
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
