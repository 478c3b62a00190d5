package app

import (
	"sync"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/ingest"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/trends"
)

// State holds the latest published snapshot and the trend views derived
// from it. Trends are recomputed in full on every snapshot; the corpus is
// small enough that no incremental index is kept.
type State struct {
	recentWindow time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	articles []domain.Article
	status   domain.IngestStatus
	keywords []domain.TrendTopic
	recent   []domain.TrendTopic
	stories  []domain.TrendingStory
}

// NewState builds an empty corpus state with the given recent-trend window.
func NewState(recentWindow time.Duration) *State {
	if recentWindow <= 0 {
		recentWindow = time.Hour
	}
	return &State{
		recentWindow: recentWindow,
		now:          time.Now,
		status:       domain.IngestStatus{State: domain.IngestIdle},
	}
}

// Apply replaces the corpus with the snapshot's article set and recomputes
// every trend view.
func (s *State) Apply(snap ingest.Snapshot) {
	keywords := trends.ComputeKeywordTrends(snap.Articles)
	recent := trends.ComputeRecentTrends(snap.Articles, s.recentWindow, s.now())
	stories := trends.ComputeTrendingStories(snap.Articles)

	s.mu.Lock()
	s.articles = snap.Articles
	s.status = snap.Status
	s.keywords = keywords
	s.recent = recent
	s.stories = stories
	s.mu.Unlock()
}

// MarkDone flips the status once a run has finished all batches.
func (s *State) MarkDone() {
	s.mu.Lock()
	s.status.State = domain.IngestDone
	s.mu.Unlock()
}

func (s *State) Articles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles
}

func (s *State) Status() domain.IngestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) KeywordTrends() []domain.TrendTopic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keywords
}

func (s *State) RecentTrends() []domain.TrendTopic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recent
}

func (s *State) TrendingStories() []domain.TrendingStory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stories
}
