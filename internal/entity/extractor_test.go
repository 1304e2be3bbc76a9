package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstructEntitiesBasic(t *testing.T) {
	tokens := []Token{
		{Text: "Narendra", Tag: "B-PER"},
		{Text: "Modi", Tag: "I-PER"},
		{Text: "visited", Tag: "O"},
		{Text: "Delhi", Tag: "B-LOC"},
	}

	assert.Equal(t, []string{"Narendra Modi", "Delhi"}, ReconstructEntities(tokens))
}

func TestReconstructEntitiesSubwordContinuation(t *testing.T) {
	tokens := []Token{
		{Text: "Zel", Tag: "B-PER"},
		{Text: "##ensky", Tag: "I-PER"},
	}

	assert.Equal(t, []string{"Zelensky"}, ReconstructEntities(tokens))
}

func TestReconstructEntitiesIToleratesMissingB(t *testing.T) {
	tokens := []Token{
		{Text: "United", Tag: "I-LOC"},
		{Text: "Nations", Tag: "I-LOC"},
	}

	assert.Equal(t, []string{"United Nations"}, ReconstructEntities(tokens))
}

func TestReconstructEntitiesDiscardsShort(t *testing.T) {
	tokens := []Token{{Text: "Hi", Tag: "B-PER"}}
	assert.Empty(t, ReconstructEntities(tokens))
}

func TestReconstructEntitiesOFlushes(t *testing.T) {
	tokens := []Token{
		{Text: "Paris", Tag: "B-LOC"},
		{Text: "is", Tag: "O"},
		{Text: "nice", Tag: "O"},
	}

	assert.Equal(t, []string{"Paris"}, ReconstructEntities(tokens))
}

type stubTagger struct {
	tokens []Token
	err    error
}

func (s *stubTagger) Tag(text string) ([]Token, error) {
	return s.tokens, s.err
}

func TestExtractorExtractsFromTagger(t *testing.T) {
	e := NewExtractor(&stubTagger{tokens: []Token{{Text: "Delhi", Tag: "B-LOC"}}})
	assert.Equal(t, []string{"Delhi"}, e.Extract("some text"))
}

func TestExtractorPerCallErrorReturnsEmptyWithoutDisabling(t *testing.T) {
	e := NewExtractor(&stubTagger{err: errors.New("boom")})

	assert.Empty(t, e.Extract("some text"))
	assert.True(t, e.Enabled())
}

func TestExtractorDisabledReturnsNil(t *testing.T) {
	e := NewExtractor(nil)

	assert.False(t, e.Enabled())
	assert.Nil(t, e.Extract("anything"))
}

func TestExtractorDisableIsPermanent(t *testing.T) {
	e := NewExtractor(&stubTagger{tokens: []Token{{Text: "Delhi", Tag: "B-LOC"}}})
	e.Disable()

	assert.False(t, e.Enabled())
	assert.Nil(t, e.Extract("some text"))
}

func TestHeuristicTaggerTagsPersonAndOrgAndLoc(t *testing.T) {
	tagger := NewHeuristicTagger()

	tokens, err := tagger.Tag("Rahul Gandhi said Acme Corp opened an office in Delhi")
	assertNoError(t, err)

	entities := ReconstructEntities(tokens)
	assert.Contains(t, entities, "Rahul Gandhi")
	assert.Contains(t, entities, "Acme Corp")
	assert.Contains(t, entities, "Delhi")
}

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
