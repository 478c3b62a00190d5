package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feeds"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/insight"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
)

// Corpus is the read side the API serves: the latest published article
// snapshot and the trend views recomputed from it.
type Corpus interface {
	Articles() []domain.Article
	KeywordTrends() []domain.TrendTopic
	RecentTrends() []domain.TrendTopic
	TrendingStories() []domain.TrendingStory
	Status() domain.IngestStatus
}

// Server exposes published articles, trends, and feed management as plain
// JSON for the presentation layer. No UI-specific shaping happens here.
type Server struct {
	echo     *echo.Echo
	corpus   Corpus
	store    *feeds.Store
	insights insight.Service
	log      logger.Logger
}

// New builds the HTTP API over the given corpus and subscription store.
func New(corpus Corpus, store *feeds.Store, insights insight.Service, log logger.Logger) *Server {
	if insights == nil {
		insights = insight.Disabled{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{echo: e, corpus: corpus, store: store, insights: insights, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.echo.Group("/v1")

	v1.GET("/articles", s.handleArticles)
	v1.GET("/trends", s.handleTrends)
	v1.GET("/trends/recent", s.handleRecentTrends)
	v1.GET("/trending-stories", s.handleTrendingStories)
	v1.GET("/status", s.handleStatus)

	v1.GET("/feeds", s.handleListFeeds)
	v1.POST("/feeds", s.handleAddFeed)
	v1.DELETE("/feeds/:id", s.handleRemoveFeed)

	v1.POST("/insights/digest", s.handleDigest)
	v1.POST("/insights/sentiment", s.handleSentiment)
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleArticles(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corpus.Articles())
}

func (s *Server) handleTrends(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corpus.KeywordTrends())
}

func (s *Server) handleRecentTrends(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corpus.RecentTrends())
}

func (s *Server) handleTrendingStories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corpus.TrendingStories())
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corpus.Status())
}

func (s *Server) handleListFeeds(c echo.Context) error {
	list, err := s.store.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleAddFeed(c echo.Context) error {
	var feed domain.Feed
	if err := c.Bind(&feed); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid feed payload")
	}
	if err := s.store.Add(feed); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, feed)
}

func (s *Server) handleRemoveFeed(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feed id is required")
	}
	if err := s.store.Remove(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// handleDigest runs the generative digest over the current corpus headlines.
// A collaborator failure stays local to this endpoint and never touches
// ingestion.
func (s *Server) handleDigest(c echo.Context) error {
	headlines := make([]string, 0)
	for _, art := range s.corpus.Articles() {
		if art.Title != "" {
			headlines = append(headlines, art.Title)
		}
	}

	digest, err := s.insights.Digest(c.Request().Context(), headlines)
	if err != nil {
		return insightError(err)
	}
	return c.JSON(http.StatusOK, digest)
}

func (s *Server) handleSentiment(c echo.Context) error {
	timed := make([]insight.TimedHeadline, 0)
	for _, art := range s.corpus.Articles() {
		if art.Title == "" {
			continue
		}
		timed = append(timed, insight.TimedHeadline{
			Title:       art.Title,
			PublishedAt: art.PublishedAt(),
		})
	}

	intervals, err := s.insights.SentimentTimeline(c.Request().Context(), timed)
	if err != nil {
		return insightError(err)
	}
	return c.JSON(http.StatusOK, intervals)
}

func insightError(err error) error {
	if errors.Is(err, insight.ErrNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "insight service is not configured")
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}
