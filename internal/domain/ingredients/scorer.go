package ingredients

import (
	"fmt"
	"math"
	"strings"
)

const (
	allSafeMessage = "All known chemicals are considered safe for use under normal conditions."

	mostlySafeMessage = "Most known chemicals are safe. However, the following ingredient(s) " +
		"may pose safety concerns:\n"

	significantUnsafeMessage = "A significant portion of the known chemicals are unsafe. " +
		"Please review these ingredient(s):\n"

	majorityUnsafeMessage = "Less than half of the known chemicals are safe. " +
		"The composition may pose safety risks.\nUnsafe ingredients:\n"
)

// Score computes the safety report for a set of known ingredients.
// The percentage is rounded half away from zero to 2 decimals; the tier is
// chosen on the unrounded value.
func Score(known []Ingredient) (SafetyReport, error) {
	total := len(known)
	if total == 0 {
		return SafetyReport{}, fmt.Errorf("no known chemicals provided: %w", ErrInvalidInput)
	}

	var unsafe []Ingredient
	for _, in := range known {
		if !in.IsSafe {
			unsafe = append(unsafe, in)
		}
	}
	safe := total - len(unsafe)
	pct := float64(safe) / float64(total) * 100

	return SafetyReport{
		Total:       total,
		Safe:        safe,
		Unsafe:      len(unsafe),
		Percentage:  round2(pct),
		Description: describe(pct, unsafe),
	}, nil
}

func describe(pct float64, unsafe []Ingredient) string {
	switch {
	case pct == 100:
		return allSafeMessage
	case pct >= 75:
		return mostlySafeMessage + bullets(unsafe)
	case pct >= 50:
		return significantUnsafeMessage + bullets(unsafe)
	default:
		return majorityUnsafeMessage + bullets(unsafe)
	}
}

func bullets(list []Ingredient) string {
	lines := make([]string, 0, len(list))
	for _, in := range list {
		if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
			lines = append(lines, "- "+in.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", in.Name, *in.Description))
	}
	return strings.Join(lines, "\n")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
