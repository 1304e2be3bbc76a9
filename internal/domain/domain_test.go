package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiasRatingBucket(t *testing.T) {
	cases := []struct {
		rating BiasRating
		want   string
	}{
		{BiasFarLeft, "left"},
		{BiasLeft, "left"},
		{BiasCenterLeft, "left"},
		{BiasCenter, "center"},
		{BiasCenterRight, "right"},
		{BiasRight, "right"},
		{BiasFarRight, "right"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.rating.Bucket(), "rating=%s", c.rating)
	}
}

func TestArticleNormalizedHeadline(t *testing.T) {
	a := Article{Headline: "  Parliament   Passes Bill X  "}
	assert.Equal(t, "parliament passes bill x", a.NormalizedHeadline())

	b := Article{Headline: "Parliament Passes Bill X"}
	assert.Equal(t, a.NormalizedHeadline(), b.NormalizedHeadline())
}
