package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"frontline/internal/models"
	"github.com/patrickmn/go-cache"
)

const (
	// matcherCacheKey is the single cache slot holding the knowledge snapshot
	matcherCacheKey = "knowledge_entries"

	// matcherCacheTTL bounds staleness between learning writes on another
	// instance and this one's snapshot
	matcherCacheTTL = 30 * time.Second
)

// knowledgeSource is the slice of KnowledgeStore the matcher reads from.
type knowledgeSource interface {
	FindExact(ctx context.Context, question string) (*models.KnowledgeEntry, error)
	All(ctx context.Context) ([]models.KnowledgeEntry, error)
}

// normalizeRule rewrites one paraphrase family to its canonical opener.
type normalizeRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order. The rewrites collapse common phrasings of the same salon
// question ("what's the price" / "how much does") onto one canonical string so
// that pipeline equality catches paraphrases without any real NLU.
var normalizeRules = []normalizeRule{
	{regexp.MustCompile(`do you (offer|have|provide|sell|do)`), "do you offer"},
	{regexp.MustCompile(`(what's|whats) (the|your) (price|cost|pricing|prices)`), "how much"},
	{regexp.MustCompile(`(what's|whats) your`), "what are your"},
	{regexp.MustCompile(`what (are|is) your`), "what are your"},
	{regexp.MustCompile(`when (are|do) you`), "when are you"},
	{regexp.MustCompile(`how much (does|do|is|are)`), "how much"},
	// Generic pricing questions ("how much does it cost") collapse onto the
	// same canonical form as "what's the price"; questions naming a concrete
	// service keep their subject.
	{regexp.MustCompile(`how much (it|this|that)( costs?)?`), "how much"},
	// Folds the most common customer misspelling onto one token. Applied to
	// both the incoming and the stored question, so either side may carry
	// the typo.
	{regexp.MustCompile(`extension`), "extention"},
	{regexp.MustCompile(`\?+$`), "?"},
	{regexp.MustCompile(`\s+`), " "},
}

// importantWords is the fixed domain vocabulary for the subject-overlap rule:
// service, schedule, pricing and policy terms a salon customer asks about.
var importantWords = []string{
	"hair", "extensions", "extention",
	"hours", "schedule", "open", "close", "time",
	"pricing", "price", "cost",
	"cancellation", "policy", "appointment", "booking",
}

// Matcher answers incoming questions from the knowledge base. Matching is
// read-only and side-effect free; an empty knowledge base is a miss, never
// an error.
type Matcher struct {
	knowledge knowledgeSource
	snapshot  *cache.Cache
}

// NewMatcher creates a matcher over the given knowledge source.
func NewMatcher(knowledge knowledgeSource) *Matcher {
	return &Matcher{
		knowledge: knowledge,
		snapshot:  cache.New(matcherCacheTTL, time.Minute),
	}
}

// Normalize applies the deterministic normalization pipeline: lowercase,
// paraphrase rewrites, question-mark and whitespace collapsing, trim.
func Normalize(question string) string {
	normalized := strings.ToLower(question)
	for _, rule := range normalizeRules {
		normalized = rule.pattern.ReplaceAllString(normalized, rule.replacement)
	}
	return strings.TrimSpace(normalized)
}

// Match returns the stored answer for a question, trying exact match,
// normalized-pipeline equality, and subject overlap in that order. The first
// knowledge entry satisfying any rule wins; entries are checked in creation
// order, so the winner is stable across restarts and backends.
func (m *Matcher) Match(ctx context.Context, question string) (string, bool, error) {
	// Rule 1: exact match, case-insensitive and whitespace-trimmed
	entry, err := m.knowledge.FindExact(ctx, question)
	if err != nil {
		return "", false, err
	}
	if entry != nil {
		return entry.Answer, true, nil
	}

	entries, err := m.entries(ctx)
	if err != nil {
		return "", false, err
	}

	normalized := Normalize(question)
	subject, subjectWords := extractSubject(normalized)

	for _, kb := range entries {
		kbNormalized := Normalize(kb.Question)

		// Rule 2: normalized-pipeline equality
		if kbNormalized == normalized {
			return kb.Answer, true, nil
		}

		// Rule 3: subject overlap on the important-word vocabulary
		kbSubject, kbSubjectWords := extractSubject(kbNormalized)
		if subjectsMatch(subject, subjectWords, kbSubject, kbSubjectWords) {
			return kb.Answer, true, nil
		}
	}

	return "", false, nil
}

// Invalidate drops the knowledge snapshot. Called after every learning write
// so the next match sees the new entry immediately.
func (m *Matcher) Invalidate() {
	m.snapshot.Delete(matcherCacheKey)
}

// entries returns the cached knowledge snapshot, reloading it from the store
// when missing or expired.
func (m *Matcher) entries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	if cached, ok := m.snapshot.Get(matcherCacheKey); ok {
		return cached.([]models.KnowledgeEntry), nil
	}

	entries, err := m.knowledge.All(ctx)
	if err != nil {
		return nil, err
	}
	m.snapshot.Set(matcherCacheKey, entries, cache.DefaultExpiration)
	return entries, nil
}

// extractSubject tokenizes a normalized question into words longer than two
// characters, keeps those overlapping the important-word vocabulary, and joins
// the survivors in original order.
func extractSubject(normalized string) (string, []string) {
	var kept []string
	for _, word := range strings.Fields(normalized) {
		if len(word) <= 2 {
			continue
		}
		for _, important := range importantWords {
			if strings.Contains(word, important) || strings.Contains(important, word) {
				kept = append(kept, word)
				break
			}
		}
	}
	return strings.Join(kept, " "), kept
}

// subjectsMatch reports whether two subjects refer to the same topic: both
// non-empty and one a substring of the other, or sharing at least two
// important words with at least two on each side.
func subjectsMatch(a string, aWords []string, b string, bWords []string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if len(aWords) < 2 || len(bWords) < 2 {
		return false
	}
	shared := 0
	for _, w := range aWords {
		for _, other := range bWords {
			if w == other {
				shared++
				break
			}
		}
	}
	return shared >= 2
}
