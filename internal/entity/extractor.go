// Package entity turns article text into a set of named entities via a
// BIO-tagged token stream. The component is optional and self-disabling:
// if its Tagger fails to initialize, extraction is disabled for the rest
// of the process and never retried: a set-once boolean, not a panic
// that crosses component boundaries.
package entity

import (
	"strings"
	"sync/atomic"

	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
)

const minEntityLength = 2

// Extractor wraps a Tagger and reconstructs entity strings from its BIO
// output.
type Extractor struct {
	tagger   Tagger
	disabled atomic.Bool
}

// NewExtractor constructs an Extractor backed by tagger. If tagger is
// nil, the extractor starts disabled (equivalent to an init failure a
// caller already detected before construction).
func NewExtractor(tagger Tagger) *Extractor {
	e := &Extractor{tagger: tagger}
	if tagger == nil {
		e.disabled.Store(true)
		observability.EntityExtractorDisabled.Set(1)
	}

	return e
}

// Enabled reports whether this extractor will still attempt extraction.
// Once disabled it stays disabled for the extractor's lifetime.
func (e *Extractor) Enabled() bool {
	return !e.disabled.Load()
}

// Disable marks the extractor as permanently unavailable. Callers use
// this when the underlying model signals an unrecoverable init failure.
func (e *Extractor) Disable() {
	e.disabled.Store(true)
	observability.EntityExtractorDisabled.Set(1)
}

// Extract returns the entity set for text. A per-call tagging error
// downgrades to an empty, non-error result rather than propagating;
// only init failures disable the extractor.
func (e *Extractor) Extract(text string) []string {
	if !e.Enabled() {
		return nil
	}

	tokens, err := e.tagger.Tag(text)
	if err != nil {
		return nil
	}

	return ReconstructEntities(tokens)
}

// ReconstructEntities rebuilds entity strings from a BIO token stream:
//   - a "##"-prefixed token attaches to the current entity with no
//     separator (subword continuation);
//   - "B-*" starts a new entity, flushing whatever was open;
//   - "I-*" continues the current entity, or tolerantly starts one if
//     none is open;
//   - "O" flushes the current entity;
//   - entities of length ≤ minEntityLength are discarded.
func ReconstructEntities(tokens []Token) []string {
	var (
		entities []string
		current  strings.Builder
	)

	flush := func() {
		if s := current.String(); len(s) > minEntityLength {
			entities = append(entities, s)
		}

		current.Reset()
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "##") || strings.HasPrefix(tok.Text, "##") {
			current.WriteString(strings.TrimPrefix(tok.Text, "##"))
			continue
		}

		switch {
		case strings.HasPrefix(tok.Tag, "B-"):
			flush()
			current.WriteString(tok.Text)
		case strings.HasPrefix(tok.Tag, "I-"):
			if current.Len() > 0 {
				current.WriteString(" " + tok.Text)
			} else {
				current.WriteString(tok.Text)
			}
		default: // "O" or unrecognized
			flush()
		}
	}

	flush()

	return entities
}
