package ingredients

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func record(name string, safe bool, desc string) Ingredient {
	in := Ingredient{ID: name, Name: name, IsSafe: safe}
	if desc != "" {
		in.Description = strPtr(desc)
	}
	return in
}

func TestScoreEmpty(t *testing.T) {
	_, err := Score(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Score([]Ingredient{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScoreAllSafe(t *testing.T) {
	rep, err := Score([]Ingredient{
		record("water", true, ""),
		record("glycerin", true, ""),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 2, rep.Safe)
	assert.Equal(t, 0, rep.Unsafe)
	assert.Equal(t, 100.0, rep.Percentage)
	assert.Equal(t, allSafeMessage, rep.Description)
}

func TestScoreSignificantUnsafe(t *testing.T) {
	rep, err := Score([]Ingredient{
		record("water", true, ""),
		record("glycerin", true, ""),
		record("oxybenzone", false, "possible hormone disruptor"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 2, rep.Safe)
	assert.Equal(t, 1, rep.Unsafe)
	assert.Equal(t, 66.67, rep.Percentage)
	assert.True(t, strings.HasPrefix(rep.Description, significantUnsafeMessage))
	assert.Contains(t, rep.Description, "- oxybenzone: possible hormone disruptor")
}

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name   string
		safe   int
		unsafe int
		pct    float64
		prefix string
	}{
		{"exactly 75 is mostly safe", 3, 1, 75, mostlySafeMessage},
		{"80 is mostly safe", 4, 1, 80, mostlySafeMessage},
		{"exactly 50 is significant", 1, 1, 50, significantUnsafeMessage},
		{"below 50 is majority unsafe", 1, 2, 33.33, majorityUnsafeMessage},
		{"none safe", 0, 3, 0, majorityUnsafeMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var known []Ingredient
			for i := 0; i < tt.safe; i++ {
				known = append(known, record("safe", true, ""))
			}
			for i := 0; i < tt.unsafe; i++ {
				known = append(known, record("bad", false, "irritant"))
			}

			rep, err := Score(known)
			require.NoError(t, err)
			assert.Equal(t, tt.pct, rep.Percentage)
			assert.Equal(t, tt.safe+tt.unsafe, rep.Safe+rep.Unsafe)
			assert.True(t, strings.HasPrefix(rep.Description, tt.prefix), rep.Description)
		})
	}
}

func TestScoreRoundsHalfAwayFromZero(t *testing.T) {
	// 1/8 = 12.5% exactly; 5/6 = 83.333..
	assert.Equal(t, 12.5, round2(12.5))
	assert.Equal(t, 83.33, round2(500.0/6))
	assert.Equal(t, 0.13, round2(0.125))
}

func TestScoreBulletWithoutDescription(t *testing.T) {
	rep, err := Score([]Ingredient{
		record("water", true, ""),
		record("fragrance", false, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, significantUnsafeMessage+"- fragrance", rep.Description)
}
