package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orgmesh/platform-sdk/modules/vam/domain/aggregates/unit"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		breaches int
		kpiHits  int
		expected int
	}{
		{"clean slate", 0, 0, 100},
		{"breaches subtract ten", 3, 0, 70},
		{"kpi hits add five", 2, 3, 95},
		{"clamped at zero", 12, 0, 0},
		{"clamped at hundred", 0, 5, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, unit.Score(tc.breaches, tc.kpiHits))
		})
	}
}

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score    int
		expected unit.AutonomyLevel
	}{
		{100, unit.AutonomyHigh},
		{80, unit.AutonomyHigh},
		{79, unit.AutonomyStandard},
		{50, unit.AutonomyStandard},
		{49, unit.AutonomyRestricted},
		{0, unit.AutonomyRestricted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, unit.LevelForScore(tc.score), "score %d", tc.score)
	}
}

func TestNew_Defaults(t *testing.T) {
	u := unit.New("OPS", "Operations")
	assert.Equal(t, unit.AutonomyRestricted, u.AutonomyLevel(), "new units start restricted")
}
