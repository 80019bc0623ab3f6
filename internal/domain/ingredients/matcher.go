package ingredients

import "strings"

// Matches reports whether candidate contains, or is contained by, any of the
// known names. Comparison is case-insensitive.
func Matches(candidate string, knownNames []string) bool {
	_, ok := FirstMatch(candidate, knownNames)
	return ok
}

// FirstMatch is Matches returning the first known name that matched.
func FirstMatch(candidate string, knownNames []string) (string, bool) {
	c := strings.ToLower(candidate)
	for _, name := range knownNames {
		n := strings.ToLower(name)
		if strings.Contains(n, c) || strings.Contains(c, n) {
			return name, true
		}
	}
	return "", false
}
