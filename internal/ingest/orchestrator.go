package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
)

// ErrRunInProgress is returned when a new ingestion is requested while one
// is still running. Callers check the state instead of relying on a global
// already-loaded flag.
var ErrRunInProgress = errors.New("ingestion run already in progress")

const defaultBatchSize = 6

// Snapshot is the full accumulated article set published to consumers after
// each batch completes, together with run progress.
type Snapshot struct {
	RunID    string              `json:"runId"`
	Articles []domain.Article    `json:"articles"`
	Status   domain.IngestStatus `json:"status"`
}

// Orchestrator drives ingestion across all configured feeds: fixed-size
// batches bound concurrent outbound requests, results are merged and
// deduplicated as each batch lands, and the growing set is re-published so
// consumers see articles before every feed has finished.
type Orchestrator struct {
	fetcher   FeedFetcher
	batchSize int
	log       logger.Logger

	mu    sync.Mutex
	state domain.IngestState
}

// NewOrchestrator builds an orchestrator over the per-feed fetch pipeline.
func NewOrchestrator(fetcher FeedFetcher, batchSize int, log logger.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Orchestrator{
		fetcher:   fetcher,
		batchSize: batchSize,
		log:       log,
		state:     domain.IngestIdle,
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() domain.IngestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Run executes one full ingestion pass over the given feed list, invoking
// publish with the updated full set after every batch. It refuses re-entrant
// runs; a feed-list change simply triggers a fresh run once this one ends.
func (o *Orchestrator) Run(ctx context.Context, feeds []domain.Feed, publish func(Snapshot)) error {
	o.mu.Lock()
	if o.state == domain.IngestRunning {
		o.mu.Unlock()
		return ErrRunInProgress
	}
	o.state = domain.IngestRunning
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.state = domain.IngestDone
		o.mu.Unlock()
	}()

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	batches := partition(feeds, o.batchSize)

	o.log.InfoObj("ingestion run starting", "ingest_meta", map[string]any{
		"run_id":      runID,
		"feeds_count": len(feeds),
		"batch_size":  o.batchSize,
		"batches":     len(batches),
	})

	var (
		merged []domain.Article
		seen   = map[string]bool{}
	)

	for i, batch := range batches {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		results := o.fetchBatch(ctx, batch)

		// Dedupe is touched only after the batch's concurrent fetches have
		// all resolved; first occurrence wins across feeds and batches.
		for _, articles := range results {
			for _, art := range articles {
				key := DedupeKey(art.Link, art.Title)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				merged = append(merged, art)
			}
		}

		sort.SliceStable(merged, func(a, b int) bool {
			return merged[a].ISODate > merged[b].ISODate
		})

		if publish != nil {
			publish(Snapshot{
				RunID:    runID,
				Articles: append([]domain.Article(nil), merged...),
				Status: domain.IngestStatus{
					State:          domain.IngestRunning,
					BatchesDone:    i + 1,
					TotalBatches:   len(batches),
					Percent:        (i + 1) * 100 / len(batches),
					FirstBatchDone: true,
					ArticleCount:   len(merged),
					StartedAt:      startedAt,
				},
			})
		}
	}

	o.log.InfoObj("ingestion run completed", "ingest_meta", map[string]any{
		"run_id":   runID,
		"articles": len(merged),
		"elapsed":  time.Since(startedAt).String(),
	})
	return nil
}

// fetchBatch fetches all feeds of one batch concurrently. Result order
// follows the configured feed order so dedupe precedence is deterministic.
func (o *Orchestrator) fetchBatch(ctx context.Context, batch []domain.Feed) [][]domain.Article {
	results := make([][]domain.Article, len(batch))

	var wg sync.WaitGroup
	for i, feed := range batch {
		wg.Add(1)
		go func(idx int, f domain.Feed) {
			defer wg.Done()
			results[idx] = o.fetcher.FetchFeed(ctx, f)
		}(i, feed)
	}
	wg.Wait()

	return results
}

func partition(feeds []domain.Feed, size int) [][]domain.Feed {
	if len(feeds) == 0 {
		return nil
	}
	batches := make([][]domain.Feed, 0, (len(feeds)+size-1)/size)
	for start := 0; start < len(feeds); start += size {
		end := start + size
		if end > len(feeds) {
			end = len(feeds)
		}
		batches = append(batches, feeds[start:end])
	}
	return batches
}
