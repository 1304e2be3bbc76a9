package entity

import "regexp"

// Token is one unit of a BIO-tagged token stream: a token's surface text
// plus its tag (e.g. "B-PER", "I-ORG", "O"). A Tag text prefixed with
// "##" marks a subword continuation of the previous token, matching the
// WordPiece convention the reconstruction rules in ReconstructEntities
// assume.
type Token struct {
	Text string
	Tag  string
}

// Tagger assigns BIO tags to a tokenized span of text. A real deployment
// would back this with a transformer token-classification model; Tagger
// keeps that swappable behind the interface the rest of this package
// only needs once: entity extraction never sees token tagging internals.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// HeuristicTagger assigns PER/ORG/LOC tags using the same surface-pattern
// regexes the corpus's entity extractor uses (capitalized-name runs,
// corporate suffixes, a fixed gazetteer of country/city names), adapted
// to emit a BIO token stream instead of raw entity strings so the same
// reconstruction logic in ReconstructEntities can run over either a real
// model's output or this heuristic one. Grounded on
// internal/process/enrichment/extractor.go's orgPattern/personPattern/
// locPattern.
type HeuristicTagger struct{}

func NewHeuristicTagger() *HeuristicTagger {
	return &HeuristicTagger{}
}

var (
	personWordPattern = regexp.MustCompile(`^[A-Z][a-z]+$`)
	orgSuffixPattern  = regexp.MustCompile(`(?i)^(Inc|Corp|Ltd|LLC|Company|Group|Organization|Association|Foundation)\.?$`)
	locGazetteer      = map[string]bool{
		"India": true, "Delhi": true, "Mumbai": true, "Bengaluru": true, "Chennai": true,
		"Kolkata": true, "Hyderabad": true, "Pakistan": true, "China": true, "America": true,
		"Washington": true, "London": true, "Beijing": true, "Moscow": true,
	}
)

var wordPattern = regexp.MustCompile(`[A-Za-z]+|[^A-Za-z\s]+`)

// Tag splits text on whitespace/punctuation and assigns a BIO tag to each
// word: consecutive capitalized words become a PER span, a capitalized
// word immediately followed by a corporate suffix becomes an ORG span, a
// gazetteer hit becomes a single-word LOC span, everything else is O.
func (h *HeuristicTagger) Tag(text string) ([]Token, error) {
	words := wordPattern.FindAllString(text, -1)

	tokens := make([]Token, 0, len(words))

	for i := 0; i < len(words); i++ {
		w := words[i]

		switch {
		case locGazetteer[w]:
			tokens = append(tokens, Token{Text: w, Tag: "B-LOC"})
		case i+1 < len(words) && personWordPattern.MatchString(w) && orgSuffixPattern.MatchString(words[i+1]):
			tokens = append(tokens, Token{Text: w, Tag: "B-ORG"})
			tokens = append(tokens, Token{Text: words[i+1], Tag: "I-ORG"})
			i++
		case personWordPattern.MatchString(w):
			tag := "B-PER"
			if i > 0 && tokens[len(tokens)-1].Tag != "O" && personWordPattern.MatchString(words[i-1]) {
				tag = "I-PER"
			}

			tokens = append(tokens, Token{Text: w, Tag: tag})
		default:
			tokens = append(tokens, Token{Text: w, Tag: "O"})
		}
	}

	return tokens, nil
}
