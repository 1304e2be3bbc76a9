// Package domain holds the canonical record types shared across the
// pipeline: articles, clusters, and the enums attached to them. Every
// component boundary in this repository passes these types, never a raw
// map or SQL row, per the translation-function discipline the pipeline
// is built around.
package domain

import (
	"strings"
	"time"
)

// BiasRating is the political-lean label attached to a publisher.
type BiasRating string

// Recognized bias ratings, ordered left to right on the political spectrum.
const (
	BiasFarLeft     BiasRating = "FarLeft"
	BiasLeft        BiasRating = "Left"
	BiasCenterLeft  BiasRating = "CenterLeft"
	BiasCenter      BiasRating = "Center"
	BiasCenterRight BiasRating = "CenterRight"
	BiasRight       BiasRating = "Right"
	BiasFarRight    BiasRating = "FarRight"
)

// Factuality is a publisher's historical accuracy label.
type Factuality string

// Recognized factuality labels.
const (
	FactualityVeryHigh Factuality = "VeryHigh"
	FactualityHigh     Factuality = "High"
	FactualityMixed    Factuality = "Mixed"
	FactualityLow      Factuality = "Low"
)

// Blindspot names the political side a cluster's coverage effectively
// ignores, per the substring-matching rule in StatsComputer.
type Blindspot string

// Recognized blindspot values.
const (
	BlindspotLeft  Blindspot = "Left"
	BlindspotRight Blindspot = "Right"
	BlindspotNone  Blindspot = "None"
)

// Article is one publisher-provided news item with metadata. It is the
// single record type ingestion, enrichment, clustering, and storage all
// pass around; translation from RSS JSON or SQL rows happens once, at
// the Store boundary.
type Article struct {
	ID         string
	SourceID   string
	SourceName string
	BiasRating BiasRating
	Factuality Factuality
	Headline   string
	Summary    string
	URL        string
	ImageURL   string // empty when absent
	PubDate    time.Time
	FetchedAt  time.Time
	ClusterID  string // empty when unclustered
	Embedding  []float32
	Entities   []string
}

// HasEmbedding reports whether the article carries a usable embedding.
func (a *Article) HasEmbedding() bool {
	return len(a.Embedding) > 0
}

// NormalizedHeadline returns the case- and whitespace-normalized headline
// used for duplicate-headline comparisons in the Clusterer.
func (a *Article) NormalizedHeadline() string {
	return normalizeHeadline(a.Headline)
}

// ClusterStats is the bias distribution and blindspot attached to a
// cluster by StatsComputer.
type ClusterStats struct {
	TotalSources int
	LeftPct      int
	CenterPct    int
	RightPct     int
	Blindspot    Blindspot
}

// Cluster is a group of articles judged to cover the same event, with a
// neutral generative-model label and bias statistics.
type Cluster struct {
	ID           string
	Headline     string
	Summary      string
	Category     string
	MainImageURL string // empty when no member has an image
	CreatedAt    time.Time
	Stats        ClusterStats
}

// Bucket classifies a bias rating into the three-way left/center/right
// axis used for blindspot computation. The check order is Left-first,
// Right-second, else Center: "CenterLeft" contains "Left" and buckets as
// Left, "CenterRight" contains "Right" and buckets as Right. This is
// intentional for blindspot sensitivity and asymmetric with a UI's
// separate "Center" axis; the substring rule is preserved deliberately
// rather than switched to exact matching.
func (b BiasRating) Bucket() string {
	s := string(b)
	switch {
	case strings.Contains(s, "Left"):
		return "left"
	case strings.Contains(s, "Right"):
		return "right"
	default:
		return "center"
	}
}

// Category values the Labeler is constrained to.
const (
	CategoryPolitics      = "Politics"
	CategoryBusiness      = "Business"
	CategoryTechnology    = "Technology"
	CategorySports        = "Sports"
	CategoryEntertainment = "Entertainment"
	CategoryGeneral       = "General"
)
