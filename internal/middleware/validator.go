package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxIngredientName = 255
	MaxQuestion       = 4000
	MaxIngredients    = 500
)

var variantPattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// ValidateVariant checks the shape of a variant name, not whether it is
// configured.
func ValidateVariant(v string) error {
	if !variantPattern.MatchString(v) {
		return fmt.Errorf("invalid variant %q (lowercase alphanumeric, dash, underscore, max 32 chars)", v)
	}
	return nil
}

func ValidateIngredientName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("ingredient name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxIngredientName {
		return fmt.Errorf("ingredient name longer than %d characters", MaxIngredientName)
	}
	return nil
}

func ValidateQuestion(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if utf8.RuneCountInString(q) > MaxQuestion {
		return fmt.Errorf("question longer than %d characters", MaxQuestion)
	}
	return nil
}

// ValidateIngredientList bounds the size of a single classification call.
func ValidateIngredientList(names []string) error {
	if len(names) > MaxIngredients {
		return fmt.Errorf("too many ingredients: %d (max %d)", len(names), MaxIngredients)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
