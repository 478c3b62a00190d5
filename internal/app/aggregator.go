package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/config"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feedparse"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feeds"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/fetch"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/ingest"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/insight"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/server"
	"github.com/newsdeck-hq/newsdeck-aggregator/pkg/httpclient"
	"github.com/newsdeck-hq/newsdeck-aggregator/pkg/publishers"
)

// Aggregator wires the ingestion pipeline, trend state, publishers, and the
// HTTP API, and drives the refresh loop.
type Aggregator struct {
	cfg          *config.Config
	store        *feeds.Store
	orchestrator *ingest.Orchestrator
	state        *State
	fanout       *publishers.Fanout
	api          *server.Server
	insights     insight.Service
	log          logger.Logger

	feedChanged chan struct{}
}

// NewAggregator builds the aggregator runtime from config files.
func NewAggregator(ctx context.Context, cfg *config.Config, log logger.Logger) (*Aggregator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	seeds, err := feeds.LoadSeeds(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feed seeds: %w", err)
	}

	store, err := feeds.Open(cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("open subscription store: %w", err)
	}
	if err := store.Seed(seeds); err != nil {
		store.Close()
		return nil, fmt.Errorf("seed subscriptions: %w", err)
	}
	log.InfoObj("subscription store ready", "store_meta", map[string]any{
		"path":        cfg.BBoltPath,
		"seeds_count": len(seeds),
	})

	client := httpclient.NewRestyClient(cfg.FetchTimeout + time.Second)
	proxyFetcher := fetch.NewProxyFetcher(client, nil, cfg.FetchTimeout, log)
	bridge := fetch.NewJSONBridge(client, "", log)
	pipeline := ingest.NewPipeline(proxyFetcher, feedparse.NewParser(), bridge, log)
	orchestrator := ingest.NewOrchestrator(pipeline, cfg.BatchSize, log)

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	var insights insight.Service = insight.Disabled{}
	if cfg.InsightAPIKey != "" {
		gemini, err := insight.NewGeminiService(ctx, cfg.InsightAPIKey, cfg.InsightModel)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init insight service: %w", err)
		}
		insights = gemini
	}

	state := NewState(cfg.RecentWindow)

	agg := &Aggregator{
		cfg:          cfg,
		store:        store,
		orchestrator: orchestrator,
		state:        state,
		fanout:       fanout,
		insights:     insights,
		log:          log,
		feedChanged:  make(chan struct{}, 1),
	}
	agg.api = server.New(state, store, insights, log)

	store.OnChange(func() {
		select {
		case agg.feedChanged <- struct{}{}:
		default:
		}
	})

	return agg, nil
}

// buildFanout instantiates configured downstream publishers. An empty
// publishers file path means snapshots are only served over the HTTP API.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count": len(pubs),
	})
	return publishers.NewFanout(pubs), nil
}

// Run starts the API server and the refresh loop until the context is
// cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	if a == nil || a.orchestrator == nil {
		return fmt.Errorf("aggregator is not initialized")
	}
	defer a.close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.api.Start(a.cfg.ListenAddr)
	}()
	a.log.InfoObj("api server starting", "listen_addr", a.cfg.ListenAddr)

	a.ingestOnce(ctx)

	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("aggregator exiting", "reason", ctx.Err())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.api.Shutdown(shutdownCtx); err != nil {
				a.log.ErrorObj("api shutdown failed", "error", err)
			}
			return nil
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("api server: %w", err)
			}
		case <-ticker.C:
			a.ingestOnce(ctx)
		case <-a.feedChanged:
			a.log.InfoObj("feed list changed, re-ingesting", "trigger", "subscription_change")
			a.ingestOnce(ctx)
		}
	}
}

// ingestOnce runs a full ingestion pass over the current feed list. Each
// batch snapshot updates the corpus state and fans out to publishers.
func (a *Aggregator) ingestOnce(ctx context.Context) {
	list, err := a.store.List()
	if err != nil {
		a.log.ErrorObj("list subscriptions failed", "error", err)
		return
	}
	if len(list) == 0 {
		a.log.WarnObj("no feeds subscribed; nothing to ingest", "feeds_count", 0)
		return
	}

	err = a.orchestrator.Run(ctx, list, func(snap ingest.Snapshot) {
		a.state.Apply(snap)

		evt := publishers.NewEvent(snap.RunID, snap.Status.BatchesDone, snap.Status.TotalBatches, snap.Articles)
		if delivered, perr := a.fanout.Publish(ctx, evt); perr != nil {
			a.log.WarnObj("snapshot fanout incomplete", "fanout_error", map[string]any{
				"delivered": delivered,
				"error":     perr.Error(),
			})
		}

		a.log.InfoObj("snapshot published", "snapshot_meta", map[string]any{
			"run_id":   snap.RunID,
			"batch":    snap.Status.BatchesDone,
			"batches":  snap.Status.TotalBatches,
			"articles": snap.Status.ArticleCount,
		})
	})
	switch {
	case errors.Is(err, ingest.ErrRunInProgress):
		a.log.WarnObj("ingestion already running; skipping trigger", "state", a.orchestrator.State())
	case err != nil:
		a.log.ErrorObj("ingestion run failed", "error", err)
	default:
		a.state.MarkDone()
	}
}

func (a *Aggregator) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorObj("subscription store close failed", "error", err)
		}
	}
	if gemini, ok := a.insights.(*insight.GeminiService); ok {
		gemini.Close()
	}
}
