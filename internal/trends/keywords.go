package trends

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

const topKeywords = 30

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// ComputeKeywordTrends ranks word tokens across the corpus by the number of
// distinct articles mentioning them (spread of mentions, not raw frequency).
// Pure over the snapshot; recomputed in full whenever the corpus changes.
func ComputeKeywordTrends(articles []domain.Article) []domain.TrendTopic {
	counts := make(map[string]int)
	related := make(map[string][]domain.Article)

	for _, art := range articles {
		for token := range significantTokens(art.Title + " " + art.ContentSnippet) {
			counts[token]++
			related[token] = append(related[token], art)
		}
	}

	topics := make([]domain.TrendTopic, 0, len(counts))
	for token, count := range counts {
		topics = append(topics, domain.TrendTopic{
			Keyword:         displayKeyword(token),
			Count:           count,
			RelatedArticles: related[token],
		})
	}

	sort.Slice(topics, func(a, b int) bool {
		if topics[a].Count != topics[b].Count {
			return topics[a].Count > topics[b].Count
		}
		return topics[a].Keyword < topics[b].Keyword
	})

	if len(topics) > topKeywords {
		topics = topics[:topKeywords]
	}
	return topics
}

// ComputeRecentTrends restricts keyword ranking to articles whose ISODate
// falls within the window ending at now.
func ComputeRecentTrends(articles []domain.Article, window time.Duration, now time.Time) []domain.TrendTopic {
	if window <= 0 {
		window = time.Hour
	}
	cutoff := now.Add(-window)

	recent := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		if published := art.PublishedAt(); !published.Before(cutoff) && !published.After(now) {
			recent = append(recent, art)
		}
	}
	return ComputeKeywordTrends(recent)
}

// significantTokens lowercases, strips non-word characters, and keeps each
// distinct token once: longer than two characters, not a stop word, not
// purely numeric.
func significantTokens(text string) map[string]bool {
	tokens := strings.Fields(nonWord.ReplaceAllString(strings.ToLower(text), " "))

	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 || StopWords[tok] || isNumeric(tok) {
			continue
		}
		set[tok] = true
	}
	return set
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// displayKeyword re-capitalizes the first letter for presentation.
func displayKeyword(token string) string {
	runes := []rune(token)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
