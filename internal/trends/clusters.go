package trends

import (
	"sort"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feedparse"
)

const (
	minSeedTokens    = 3
	minMergeOverlap  = 2
	topicDedupeLimit = 3
	maxStories       = 4
	maxSources       = 3
)

// storyCluster is the clustering-pass intermediate: member articles plus the
// union of their significant title tokens. It exists only during one pass.
type storyCluster struct {
	articles []domain.Article
	tokens   map[string]bool
}

// ComputeTrendingStories clusters near-duplicate articles by headline token
// overlap. Articles are walked most-recent-first so the freshest member
// leads each cluster; single-article clusters carry no corroboration and
// are discarded.
func ComputeTrendingStories(articles []domain.Article) []domain.TrendingStory {
	ordered := append([]domain.Article(nil), articles...)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].ISODate > ordered[b].ISODate
	})

	tokenSets := make([]map[string]bool, len(ordered))
	for i, art := range ordered {
		tokenSets[i] = significantTokens(art.Title)
	}

	clusters := buildClusters(ordered, tokenSets)
	clusters = dropSingletons(clusters)

	sort.SliceStable(clusters, func(a, b int) bool {
		return len(clusters[a].articles) > len(clusters[b].articles)
	})

	clusters = dedupeTopics(clusters)

	stories := make([]domain.TrendingStory, 0, len(clusters))
	for _, c := range clusters {
		stories = append(stories, buildStory(c))
	}
	return stories
}

// buildClusters seeds a cluster at each unprocessed article with at least
// three significant title tokens and absorbs every other unprocessed article
// overlapping the seed by two or more tokens.
func buildClusters(ordered []domain.Article, tokenSets []map[string]bool) []storyCluster {
	processed := make([]bool, len(ordered))
	var clusters []storyCluster

	for i := range ordered {
		if processed[i] || len(tokenSets[i]) < minSeedTokens {
			continue
		}

		cluster := storyCluster{
			articles: []domain.Article{ordered[i]},
			tokens:   cloneSet(tokenSets[i]),
		}
		processed[i] = true

		for j := range ordered {
			if j == i || processed[j] {
				continue
			}
			if overlap(tokenSets[i], tokenSets[j]) >= minMergeOverlap {
				cluster.articles = append(cluster.articles, ordered[j])
				for tok := range tokenSets[j] {
					cluster.tokens[tok] = true
				}
				processed[j] = true
			}
		}

		clusters = append(clusters, cluster)
	}
	return clusters
}

func dropSingletons(clusters []storyCluster) []storyCluster {
	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.articles) > 1 {
			kept = append(kept, c)
		}
	}
	return kept
}

// dedupeTopics walks clusters in rank order and keeps one only if it does
// not cover the same topic as an already-kept cluster: three or more shared
// tokens, or any shared token outside the generic-word exclusion set, marks
// it as the same big story told under slightly different headlines.
func dedupeTopics(clusters []storyCluster) []storyCluster {
	var kept []storyCluster
	for _, c := range clusters {
		if len(kept) >= maxStories {
			break
		}
		duplicate := false
		for _, k := range kept {
			if sameTopic(c.tokens, k.tokens) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}

func sameTopic(a, b map[string]bool) bool {
	shared := 0
	for tok := range a {
		if !b[tok] {
			continue
		}
		if !GenericTokens[tok] {
			return true
		}
		shared++
		if shared >= topicDedupeLimit {
			return true
		}
	}
	return false
}

// buildStory picks the representative thumbnail (first GIF across members
// wins outright, else first non-empty) and attaches the corroboration count
// and up to three distinct source titles.
func buildStory(c storyCluster) domain.TrendingStory {
	thumbnail := ""
	for _, art := range c.articles {
		if feedparse.IsGIF(art.Thumbnail) {
			thumbnail = art.Thumbnail
			break
		}
		if thumbnail == "" && art.Thumbnail != "" {
			thumbnail = art.Thumbnail
		}
	}

	var sources []string
	seen := map[string]bool{}
	for _, art := range c.articles {
		if art.FeedTitle == "" || seen[art.FeedTitle] {
			continue
		}
		seen[art.FeedTitle] = true
		sources = append(sources, art.FeedTitle)
		if len(sources) >= maxSources {
			break
		}
	}

	return domain.TrendingStory{
		Lead:         c.articles[0],
		Articles:     c.articles,
		Thumbnail:    thumbnail,
		RelatedCount: len(c.articles),
		Sources:      sources,
	}
}

func overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}

func cloneSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for tok := range set {
		out[tok] = true
	}
	return out
}
