// Package cluster implements a single-pass online clustering algorithm:
// articles are consumed one at a time, in ascending pubDate order, and
// either merge into an existing micro-cluster (as a duplicate or as a
// similarity match) or seed a new one. Generalized from
// internal/dedup.CosineSimilarity's pairwise duplicate detection to
// full online clustering.
package cluster

import (
	"time"

	"github.com/google/uuid"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/vecmath"
)

const (
	// TimeWindow bounds how far apart in time two articles can be and
	// still be compared for clustering.
	TimeWindow = 48 * time.Hour

	// ClusteringThreshold is the minimum centroid cosine similarity for
	// an article to join an existing cluster.
	ClusteringThreshold = 0.55

	// DuplicateThreshold short-circuits clustering: a member at or above
	// this similarity (or with an identical normalized headline) absorbs
	// the incoming article without updating the centroid.
	DuplicateThreshold = 0.90

	centroidOldWeight = 0.8
	centroidNewWeight = 0.2
)

// MicroCluster is one online-clustering group: a running centroid, its
// members in the order they were assigned, and the latest pubDate seen
// among them.
type MicroCluster struct {
	ID         string
	Centroid   []float32
	Members    []domain.Article
	LatestTime time.Time
	CreatedAt  time.Time
}

// Cluster assigns articles (which must already be enriched with
// embeddings, and fed in ascending pubDate order) to micro-clusters,
// returning them in creation order.
func Cluster(articles []domain.Article) []*MicroCluster {
	var clusters []*MicroCluster

	for _, a := range articles {
		if !a.HasEmbedding() {
			continue
		}

		assign(&clusters, a)
	}

	return clusters
}

func assign(clusters *[]*MicroCluster, a domain.Article) {
	var (
		best    *MicroCluster
		bestSim float32 = -1
	)

	for _, c := range *clusters {
		if absDuration(a.PubDate, c.LatestTime) > TimeWindow {
			continue
		}

		if isDuplicate(c, a) {
			mergeDuplicate(c, a)
			return
		}

		// clusters is in creation order, so a strict ">" here already
		// gives ties to the earliest-created cluster scanned so far.
		if s := vecmath.CosineSimilarity(a.Embedding, c.Centroid); s > bestSim {
			best, bestSim = c, s
		}
	}

	if best != nil && bestSim >= ClusteringThreshold {
		mergeSimilar(best, a)
		return
	}

	*clusters = append(*clusters, &MicroCluster{
		ID:         uuid.New().String(),
		Centroid:   a.Embedding,
		Members:    []domain.Article{a},
		LatestTime: a.PubDate,
		CreatedAt:  a.PubDate,
	})
}

func isDuplicate(c *MicroCluster, a domain.Article) bool {
	for _, m := range c.Members {
		if m.NormalizedHeadline() == a.NormalizedHeadline() {
			return true
		}

		if vecmath.CosineSimilarity(a.Embedding, m.Embedding) >= DuplicateThreshold {
			return true
		}
	}

	return false
}

// mergeDuplicate adds a to c without updating the centroid; latestTime
// advances if a is newer.
func mergeDuplicate(c *MicroCluster, a domain.Article) {
	c.Members = append(c.Members, a)
	if a.PubDate.After(c.LatestTime) {
		c.LatestTime = a.PubDate
	}
}

func mergeSimilar(c *MicroCluster, a domain.Article) {
	c.Members = append(c.Members, a)
	c.Centroid = vecmath.WeightedSum(c.Centroid, centroidOldWeight, a.Embedding, centroidNewWeight)

	if a.PubDate.After(c.LatestTime) {
		c.LatestTime = a.PubDate
	}
}

func absDuration(a, b time.Time) time.Duration {
	if a.After(b) {
		return a.Sub(b)
	}

	return b.Sub(a)
}
