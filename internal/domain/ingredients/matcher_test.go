package ingredients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		known     []string
		want      bool
	}{
		{"candidate inside known", "avobenzone", []string{"avobenzone 3%"}, true},
		{"candidate inside longer name", "water", []string{"deionized water"}, true},
		{"no overlap", "zinc", []string{"titanium dioxide"}, false},
		{"known inside candidate", "aqua (water)", []string{"water"}, true},
		{"case insensitive", "GLYCERIN", []string{"Glycerin"}, true},
		{"second name matches", "parfum", []string{"niacinamide", "parfum/fragrance"}, true},
		{"empty known set", "water", nil, false},
		{"short substring still matches", "oxide", []string{"zinc oxide"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.candidate, tt.known))
		})
	}
}

func TestFirstMatchReturnsEarliestName(t *testing.T) {
	name, ok := FirstMatch("zinc oxide", []string{"titanium dioxide", "oxide", "zinc"})
	assert.True(t, ok)
	assert.Equal(t, "oxide", name)

	_, ok = FirstMatch("retinol", []string{"titanium dioxide"})
	assert.False(t, ok)
}
