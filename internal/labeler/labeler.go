// Package labeler calls an external generative model to produce a
// neutral headline/summary/category for a cluster. Retry uses
// sethvargo/go-retry rather than a hand-rolled backoff loop, and batch
// fan-out uses golang.org/x/sync/errgroup, both already present in this
// dependency graph as transitive pulls that this package promotes to
// direct use.
package labeler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
)

const (
	retryBase       = 500 * time.Millisecond
	retryMaxTries   = 3
	batchFanOut     = 5
	maxSummaryWords = 30
)

var validCategories = map[string]bool{
	domain.CategoryPolitics:      true,
	domain.CategoryBusiness:      true,
	domain.CategoryTechnology:    true,
	domain.CategorySports:        true,
	domain.CategoryEntertainment: true,
	domain.CategoryGeneral:       true,
}

// Label is the neutral {headline, summary, category} a cluster receives.
type Label struct {
	Headline string
	Summary  string
	Category string
}

// ChatCompleter is the subset of *openai.Client the Labeler calls;
// narrowed to an interface so tests can substitute a fake.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type labelResponse struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

// Labeler produces labels for clusters, falling back to a deterministic
// label on any transport, parse, or schema failure.
type Labeler struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
}

func New(client ChatCompleter, model string, timeout time.Duration) *Labeler {
	return &Labeler{client: client, model: model, timeout: timeout}
}

// LabelBatches labels every member-set in groups, processing up to
// batchFanOut member-sets concurrently within each group, and groups
// one after another.
func (l *Labeler) LabelBatches(ctx context.Context, memberSets [][]domain.Article) ([]Label, error) {
	labels := make([]Label, len(memberSets))

	for start := 0; start < len(memberSets); start += batchFanOut {
		end := start + batchFanOut
		if end > len(memberSets) {
			end = len(memberSets)
		}

		g, gctx := errgroup.WithContext(ctx)

		for i := start; i < end; i++ {
			i := i

			g.Go(func() error {
				labels[i] = l.Label(gctx, memberSets[i])
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("label batch: %w", err)
		}
	}

	return labels, nil
}

// Label produces one cluster's label, retrying transient failures before
// falling back to the first member's headline/summary and category
// "General".
func (l *Labeler) Label(ctx context.Context, members []domain.Article) Label {
	if len(members) == 0 {
		return Label{Category: domain.CategoryGeneral}
	}

	resp, err := l.callWithRetry(ctx, members)
	if err != nil {
		return fallback(members)
	}

	if !validCategories[resp.Category] {
		return fallback(members)
	}

	if len(strings.Fields(resp.Summary)) > maxSummaryWords {
		return fallback(members)
	}

	return Label{Headline: resp.Headline, Summary: resp.Summary, Category: resp.Category}
}

func fallback(members []domain.Article) Label {
	observability.LabelerFallbacksTotal.Inc()

	first := members[0]
	return Label{Headline: first.Headline, Summary: first.Summary, Category: domain.CategoryGeneral}
}

// callWithRetry retries only the transport call (transient
// transport failures get bounded retry; a malformed response instead
// falls straight to the deterministic fallback, not a retry).
func (l *Labeler) callWithRetry(ctx context.Context, members []domain.Article) (labelResponse, error) {
	var content string

	base := retry.NewExponential(retryBase)

	// WithMaxRetries counts retries after the first attempt.
	backoff := retry.WithMaxRetries(retryMaxTries-1, base)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()

		c, err := l.transportCall(reqCtx, members)
		if err != nil {
			return retry.RetryableError(err)
		}

		content = c

		return nil
	})
	if err != nil {
		return labelResponse{}, err
	}

	var parsed labelResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return labelResponse{}, fmt.Errorf("parse label response: %w", err)
	}

	return parsed, nil
}

func (l *Labeler) transportCall(ctx context.Context, members []domain.Article) (string, error) {
	start := time.Now()

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(members)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})

	observability.LabelerRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("label chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("label chat completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(members []domain.Article) string {
	var b strings.Builder

	b.WriteString("You are a neutral news editor. Given these keywords and sample headlines describing one news event, ")
	b.WriteString("produce a JSON object with exactly these fields: \"headline\" (neutral), ")
	b.WriteString(fmt.Sprintf("\"summary\" (%d words or fewer, neutral), and \"category\" ", maxSummaryWords))
	b.WriteString("(one of Politics, Business, Technology, Sports, Entertainment, General).\n\n")
	b.WriteString("Keywords: " + strings.Join(keywords(members), ", ") + "\n")
	b.WriteString("Sample headlines:\n")

	for _, h := range sampleHeadlines(members) {
		b.WriteString("- " + h + "\n")
	}

	return b.String()
}
