package labeler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

const (
	topKeywordCount     = 10
	minKeywordLength    = 4 // length > 3
	sampleHeadlineCount = 5
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "this": true, "that": true, "these": true, "those": true,
	"it": true, "he": true, "she": true, "they": true, "news": true, "report": true,
	"breaking": true, "today": true, "live": true, "update": true, "updates": true,
	"latest": true,
}

var wordPattern = regexp.MustCompile(`\w+`)

// keywords extracts the top-10 keywords across a cluster's members,
// tokenizing headline+summary on non-word boundaries, lowercasing,
// dropping stopwords and words of length ≤ 3, and breaking frequency
// ties by first occurrence.
func keywords(members []domain.Article) []string {
	counts := make(map[string]int)

	var order []string
	seen := make(map[string]bool)

	for _, m := range members {
		for _, w := range wordPattern.FindAllString(strings.ToLower(m.Headline+" "+m.Summary), -1) {
			if len(w) < minKeywordLength || stopwords[w] {
				continue
			}

			counts[w]++

			if !seen[w] {
				seen[w] = true
				order = append(order, w)
			}
		}
	}

	firstOccurrence := make(map[string]int, len(order))
	for i, w := range order {
		firstOccurrence[w] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}

		return firstOccurrence[a] < firstOccurrence[b]
	})

	if len(order) > topKeywordCount {
		order = order[:topKeywordCount]
	}

	return order
}

// sampleHeadlines returns the first sampleHeadlineCount member headlines.
func sampleHeadlines(members []domain.Article) []string {
	n := sampleHeadlineCount
	if len(members) < n {
		n = len(members)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = members[i].Headline
	}

	return out
}
