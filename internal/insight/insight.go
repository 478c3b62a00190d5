package insight

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when no insight backend has been set up.
var ErrNotConfigured = errors.New("insight service is not configured")

// TimedHeadline pairs a headline with its publish timestamp for the
// sentiment-by-interval mode.
type TimedHeadline struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Digest is the structured payload returned for a batch of headlines.
type Digest struct {
	Summary       string         `json:"summary"`
	Keywords      []string       `json:"keywords"`
	Topics        []TopicReport  `json:"topics"`
	Categories    map[string]int `json:"categories"`
	Personalities []string       `json:"personalities"`
	Locations     []string       `json:"locations"`
}

// TopicReport is one themed grouping inside a digest.
type TopicReport struct {
	Topic     string   `json:"topic"`
	Summary   string   `json:"summary"`
	Headlines []string `json:"headlines"`
}

// SentimentInterval scores the mood of headlines falling into one time slot.
type SentimentInterval struct {
	Interval string  `json:"interval"`
	Score    float64 `json:"score"`
	Label    string  `json:"label"`
}

// Service is the generative insight collaborator. It takes headline batches
// and returns typed JSON payloads; retries and rate limits are the
// implementation's concern, not part of this contract.
type Service interface {
	Digest(ctx context.Context, headlines []string) (*Digest, error)
	SentimentTimeline(ctx context.Context, headlines []TimedHeadline) ([]SentimentInterval, error)
}

// Disabled is the Service used when no API key is configured; every call
// reports ErrNotConfigured so the feature surfaces as a local error state
// without touching ingestion.
type Disabled struct{}

func (Disabled) Digest(context.Context, []string) (*Digest, error) {
	return nil, ErrNotConfigured
}

func (Disabled) SentimentTimeline(context.Context, []TimedHeadline) ([]SentimentInterval, error) {
	return nil, ErrNotConfigured
}
