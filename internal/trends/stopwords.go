package trends

// StopWords excludes common words from keyword counting. GenericTokens
// additionally excludes broad political/geographic terms when deduplicating
// cluster topics. Both lists are hand-tuned configuration, overridable by
// callers, not algorithmic invariants.

var StopWords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
	"how", "man", "new", "now", "old", "see", "two", "way", "who", "its",
	"did", "yes", "said", "says", "will", "with", "this", "that", "from",
	"they", "have", "been", "were", "than", "then", "them", "these", "those",
	"what", "when", "where", "which", "while", "your", "about", "after",
	"also", "amid", "back", "because", "before", "being", "between", "both",
	"could", "down", "during", "each", "few", "first", "into", "just",
	"like", "made", "make", "many", "more", "most", "much", "must", "over",
	"only", "other", "some", "such", "take", "their", "there", "under",
	"until", "upon", "very", "would", "year", "years", "news", "latest",
	"live", "update", "updates", "today", "report", "watch", "video",
)

var GenericTokens = wordSet(
	"india", "indian", "government", "minister", "ministry", "state",
	"states", "national", "country", "world", "police", "court", "party",
	"congress", "election", "elections", "president", "leader", "people",
	"city", "chief", "delhi", "mumbai", "crore", "lakh", "amid", "case",
	"bill", "house", "senate", "official", "officials",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
