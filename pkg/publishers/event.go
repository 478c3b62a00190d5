package publishers

import (
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

// Event is the snapshot payload published downstream after each ingestion
// batch: the full accumulated article set plus run progress.
type Event struct {
	RunID        string           `json:"run_id"`
	Batch        int              `json:"batch"`
	TotalBatches int              `json:"total_batches"`
	ArticleCount int              `json:"article_count"`
	Articles     []domain.Article `json:"articles"`
	PublishedAt  time.Time        `json:"published_at"`
}

// NewEvent constructs an Event for one completed batch.
func NewEvent(runID string, batch, totalBatches int, articles []domain.Article) Event {
	return Event{
		RunID:        runID,
		Batch:        batch,
		TotalBatches: totalBatches,
		ArticleCount: len(articles),
		Articles:     articles,
		PublishedAt:  time.Now().UTC(),
	}
}
