package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

func membersWithBias(biases ...domain.BiasRating) []domain.Article {
	out := make([]domain.Article, len(biases))
	for i, b := range biases {
		out[i] = domain.Article{BiasRating: b}
	}

	return out
}

func TestComputeBlindspotNoneWhenBalanced(t *testing.T) {
	members := membersWithBias(
		domain.BiasLeft, domain.BiasLeft, domain.BiasLeft, domain.BiasLeft,
		domain.BiasLeft, domain.BiasLeft, domain.BiasLeft,
		domain.BiasCenter,
		domain.BiasCenterRight, domain.BiasCenterRight,
	)

	got := Compute(members)

	assert.Equal(t, 10, got.TotalSources)
	assert.Equal(t, 70, got.LeftPct)
	assert.Equal(t, 20, got.RightPct)
	assert.Equal(t, 10, got.CenterPct)
	assert.Equal(t, domain.BlindspotNone, got.Blindspot)
}

func TestComputeBlindspotRightWhenRightUnder15AndLeftOver50(t *testing.T) {
	members := membersWithBias(
		domain.BiasLeft, domain.BiasLeft, domain.BiasLeft, domain.BiasLeft,
		domain.BiasLeft, domain.BiasLeft, domain.BiasLeft,
		domain.BiasCenter, domain.BiasCenter,
		domain.BiasCenterRight,
	)

	got := Compute(members)

	assert.Equal(t, 70, got.LeftPct)
	assert.Equal(t, 10, got.RightPct)
	assert.Equal(t, domain.BlindspotRight, got.Blindspot)
}

func TestComputeBlindspotLeft(t *testing.T) {
	members := membersWithBias(
		domain.BiasRight, domain.BiasRight, domain.BiasRight, domain.BiasRight,
		domain.BiasRight, domain.BiasRight, domain.BiasRight,
		domain.BiasCenter, domain.BiasCenter,
		domain.BiasCenterLeft,
	)

	got := Compute(members)

	assert.Equal(t, domain.BlindspotLeft, got.Blindspot)
}

func TestComputePercentagesReconcileRounding(t *testing.T) {
	members := membersWithBias(domain.BiasLeft, domain.BiasCenter, domain.BiasRight)

	got := Compute(members)

	assert.Equal(t, 100, got.LeftPct+got.CenterPct+got.RightPct)
}

func TestMainImageURLFirstNonEmpty(t *testing.T) {
	members := []domain.Article{
		{ImageURL: ""},
		{ImageURL: "https://img2"},
		{ImageURL: "https://img3"},
	}

	assert.Equal(t, "https://img2", MainImageURL(members))
}

func TestMainImageURLNoneSet(t *testing.T) {
	members := []domain.Article{{ImageURL: ""}, {ImageURL: ""}}
	assert.Equal(t, "", MainImageURL(members))
}
