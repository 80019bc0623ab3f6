package prompt

import (
	"fmt"
	"strings"

	"github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a cosmetic chemist reviewing ingredient safety for skincare and personal care products. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- is_safe is true only when the ingredient is generally recognised as safe at typical cosmetic concentrations.
- percentageifany is the maximum commonly permitted concentration (for example "3%"), or null when none applies.
- description is one or two sentences on what the ingredient does and any concern.
- cases_where_harmful lists concrete situations where the ingredient may cause harm; use an empty array when there are none.

Schema (example with empty values):
{
  "name": "<string>",
  "is_safe": <true|false>,
  "percentageifany": "<string|null>",
  "description": "<string>",
  "cases_where_harmful": ["<string>"]
}`
}

// GetUserPrompt builds a compact user message around one ingredient name.
func GetUserPrompt(name string) string {
	return fmt.Sprintf("Assess this cosmetic ingredient and respond with the JSON per schema. Ingredient: %s", name)
}

// Assessment matches the schema used by the system prompt.
type Assessment struct {
	Name              string   `json:"name"`
	IsSafe            bool     `json:"is_safe"`
	PercentageIfAny   *string  `json:"percentageifany"`
	Description       *string  `json:"description"`
	CasesWhereHarmful []string `json:"cases_where_harmful"`
}

// Ingredient converts the assessment to a record, falling back to the
// requested name when the model left it blank.
func (a Assessment) Ingredient(requested string) ingredients.Ingredient {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = requested
	}
	return ingredients.Ingredient{
		Name:              name,
		IsSafe:            a.IsSafe,
		PercentageIfAny:   blankToNil(a.PercentageIfAny),
		Description:       blankToNil(a.Description),
		CasesWhereHarmful: a.CasesWhereHarmful,
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
