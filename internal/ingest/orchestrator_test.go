package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

// stubFetcher answers per-feed canned article lists.
type stubFetcher struct {
	mu       sync.Mutex
	byFeed   map[string][]domain.Article
	calls    []string
	block    chan struct{}
	started  chan struct{}
	inFlight int
	maxSeen  int
}

func (s *stubFetcher) FetchFeed(_ context.Context, feed domain.Feed) []domain.Article {
	s.mu.Lock()
	s.calls = append(s.calls, feed.ID)
	if s.started != nil && len(s.calls) == 1 {
		close(s.started)
	}
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	s.inFlight--
	out := s.byFeed[feed.ID]
	s.mu.Unlock()

	if out == nil {
		return []domain.Article{}
	}
	return out
}

func makeFeeds(n int) []domain.Feed {
	feeds := make([]domain.Feed, 0, n)
	for i := 0; i < n; i++ {
		feeds = append(feeds, domain.Feed{ID: fmt.Sprintf("f%02d", i), Title: fmt.Sprintf("Feed %d", i)})
	}
	return feeds
}

func TestRunPublishesOneSnapshotPerBatch(t *testing.T) {
	feeds := makeFeeds(14)
	fetcher := &stubFetcher{byFeed: map[string][]domain.Article{}}
	for i, f := range feeds {
		fetcher.byFeed[f.ID] = []domain.Article{{
			ID:      "a-" + f.ID,
			Link:    "https://example.org/" + f.ID,
			Title:   f.Title,
			ISODate: fmt.Sprintf("2024-01-%02dT00:00:00.000Z", i+1),
		}}
	}

	var snaps []Snapshot
	o := NewOrchestrator(fetcher, 6, nil)
	if err := o.Run(context.Background(), feeds, func(s Snapshot) { snaps = append(snaps, s) }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(snaps) != 3 {
		t.Fatalf("snapshots = %d, want 3 for 14 feeds at batch size 6", len(snaps))
	}

	wantCounts := []int{6, 12, 14}
	wantPercent := []int{33, 66, 100}
	for i, s := range snaps {
		if len(s.Articles) != wantCounts[i] {
			t.Errorf("snapshot %d articles = %d, want %d", i, len(s.Articles), wantCounts[i])
		}
		if s.Status.ArticleCount != len(s.Articles) {
			t.Errorf("snapshot %d status count = %d, want %d", i, s.Status.ArticleCount, len(s.Articles))
		}
		if s.Status.Percent != wantPercent[i] {
			t.Errorf("snapshot %d percent = %d, want %d", i, s.Status.Percent, wantPercent[i])
		}
		if !s.Status.FirstBatchDone {
			t.Errorf("snapshot %d FirstBatchDone = false", i)
		}
		if s.Status.BatchesDone != i+1 || s.Status.TotalBatches != 3 {
			t.Errorf("snapshot %d progress = %d/%d", i, s.Status.BatchesDone, s.Status.TotalBatches)
		}
		if s.RunID != snaps[0].RunID {
			t.Errorf("snapshot %d run id changed", i)
		}
	}

	if fetcher.maxSeen > 6 {
		t.Errorf("max concurrent fetches = %d, want at most the batch size", fetcher.maxSeen)
	}
	if len(fetcher.calls) != 14 {
		t.Errorf("fetch calls = %d, want every feed fetched once", len(fetcher.calls))
	}
}

func TestRunSnapshotsSortedNewestFirst(t *testing.T) {
	feeds := makeFeeds(3)
	fetcher := &stubFetcher{byFeed: map[string][]domain.Article{
		"f00": {{ID: "old", Link: "https://e/old", Title: "old", ISODate: "2024-01-01T00:00:00.000Z"}},
		"f01": {{ID: "new", Link: "https://e/new", Title: "new", ISODate: "2024-03-01T00:00:00.000Z"}},
		"f02": {{ID: "mid", Link: "https://e/mid", Title: "mid", ISODate: "2024-02-01T00:00:00.000Z"}},
	}}

	var last Snapshot
	o := NewOrchestrator(fetcher, 6, nil)
	if err := o.Run(context.Background(), feeds, func(s Snapshot) { last = s }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !sort.SliceIsSorted(last.Articles, func(a, b int) bool {
		return last.Articles[a].ISODate > last.Articles[b].ISODate
	}) {
		t.Errorf("articles not newest first: %v", datesOf(last.Articles))
	}
	if last.Articles[0].ID != "new" {
		t.Errorf("first article = %q, want the newest", last.Articles[0].ID)
	}
}

func TestRunFirstOccurrenceWinsAcrossFeeds(t *testing.T) {
	feeds := makeFeeds(2)
	fetcher := &stubFetcher{byFeed: map[string][]domain.Article{
		"f00": {{
			ID:      "a1",
			FeedID:  "f00",
			Link:    "https://example.org/budget-2024",
			Title:   "Budget 2024 passes",
			ISODate: "2024-01-01T10:00:00.000Z",
		}},
		"f01": {{
			ID:      "a2",
			FeedID:  "f01",
			Link:    "https://example.org/budget-2024?utm_source=partner",
			Title:   "Budget 2024 passes",
			ISODate: "2024-01-01T11:00:00.000Z",
		}},
	}}

	var last Snapshot
	o := NewOrchestrator(fetcher, 6, nil)
	if err := o.Run(context.Background(), feeds, func(s Snapshot) { last = s }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(last.Articles) != 1 {
		t.Fatalf("articles = %d, want the duplicate collapsed", len(last.Articles))
	}
	if last.Articles[0].FeedID != "f00" {
		t.Errorf("kept article from %q, want the earlier feed in config order", last.Articles[0].FeedID)
	}
}

func TestRunRefusesReentrantRuns(t *testing.T) {
	feeds := makeFeeds(1)
	block := make(chan struct{})
	fetcher := &stubFetcher{block: block, started: make(chan struct{}), byFeed: map[string][]domain.Article{}}

	o := NewOrchestrator(fetcher, 6, nil)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), feeds, nil) }()

	// Wait for the first run to reach its fetch.
	<-fetcher.started

	if err := o.Run(context.Background(), feeds, nil); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second Run err = %v, want ErrRunInProgress", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Run err = %v", err)
	}
	if got := o.State(); got != domain.IngestDone {
		t.Errorf("state = %q, want done", got)
	}

	// A completed run allows the next one.
	if err := o.Run(context.Background(), feeds, nil); err != nil {
		t.Fatalf("third Run err = %v", err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(&stubFetcher{byFeed: map[string][]domain.Article{}}, 6, nil)
	err := o.Run(ctx, makeFeeds(3), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPartition(t *testing.T) {
	cases := []struct {
		feeds int
		size  int
		want  []int
	}{
		{feeds: 0, size: 6, want: nil},
		{feeds: 5, size: 6, want: []int{5}},
		{feeds: 6, size: 6, want: []int{6}},
		{feeds: 14, size: 6, want: []int{6, 6, 2}},
	}

	for _, tc := range cases {
		got := partition(makeFeeds(tc.feeds), tc.size)
		if len(got) != len(tc.want) {
			t.Errorf("partition(%d, %d) batches = %d, want %d", tc.feeds, tc.size, len(got), len(tc.want))
			continue
		}
		for i, b := range got {
			if len(b) != tc.want[i] {
				t.Errorf("partition(%d, %d) batch %d = %d feeds, want %d", tc.feeds, tc.size, i, len(b), tc.want[i])
			}
		}
	}
}

func datesOf(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ISODate
	}
	return out
}
