// Package stats computes a cluster's bias distribution, blindspot, and
// representative image URL for a cluster's member set.
package stats

import (
	"math"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

const (
	blindspotFloor    = 15
	blindspotDominant = 50
)

// Compute returns the stats for a cluster's member set. N must be ≥ 1;
// callers never compute stats for an empty cluster.
func Compute(members []domain.Article) domain.ClusterStats {
	n := len(members)

	var left, right int

	for _, m := range members {
		switch m.BiasRating.Bucket() {
		case "left":
			left++
		case "right":
			right++
		}
	}

	leftPct := round(100 * float64(left) / float64(n))
	rightPct := round(100 * float64(right) / float64(n))
	centerPct := 100 - leftPct - rightPct

	return domain.ClusterStats{
		TotalSources: n,
		LeftPct:      leftPct,
		CenterPct:    centerPct,
		RightPct:     rightPct,
		Blindspot:    blindspot(leftPct, rightPct),
	}
}

func blindspot(leftPct, rightPct int) domain.Blindspot {
	switch {
	case rightPct < blindspotFloor && leftPct > blindspotDominant:
		return domain.BlindspotRight
	case leftPct < blindspotFloor && rightPct > blindspotDominant:
		return domain.BlindspotLeft
	default:
		return domain.BlindspotNone
	}
}

// MainImageURL returns the first member (in insertion order) with a
// non-empty ImageURL, or "" if none has one.
func MainImageURL(members []domain.Article) string {
	for _, m := range members {
		if m.ImageURL != "" {
			return m.ImageURL
		}
	}

	return ""
}

func round(f float64) int {
	return int(math.Round(f))
}
