package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "", 0},
		{"", "moto", 4},
		{"moto", "", 4},
		{"deportiva", "deportiba", 1},
		{"scooter", "skooter", 1},
		{"naked", "naked", 0},
		{"ñandú", "nandu", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, LevenshteinDistance(tc.a, tc.b))
		})
	}
}

func TestLevenshteinDistanceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("distance to itself is zero", prop.ForAll(
		func(a string) bool {
			return LevenshteinDistance(a, a) == 0
		},
		gen.AnyString(),
	))

	properties.Property("distance is symmetric", prop.ForAll(
		func(a, b string) bool {
			return LevenshteinDistance(a, b) == LevenshteinDistance(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("distance is bounded by the longer string", prop.ForAll(
		func(a, b string) bool {
			d := LevenshteinDistance(a, b)
			return d >= 0 && d <= max(len([]rune(a)), len([]rune(b)))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
