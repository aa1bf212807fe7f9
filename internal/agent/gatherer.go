package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/websearch"
)

// Source credibility heuristics. The deltas are tuning constants; see
// config for the thresholds that are operator-adjustable.
const (
	baseCredibility        = 0.5
	reputableDomainBonus   = 0.3
	substantialContentLen  = 1000
	detailedContentLen     = 3000
	contentLengthBonus     = 0.1
	qualityMarkerBonus     = 0.05
	qualityMarkerBonusCap  = 0.2
	shortContentLen        = 300
	shortContentPenalty    = 0.2
	credibilityFloor       = 0.1
	credibilityCeil        = 1.0
	placeholderCredibility = 0.8
)

// reputableDomains gets a fixed bonus in the credibility score.
var reputableDomains = []string{
	"reuters.com", "bbc.com", "cnn.com", "techcrunch.com", "theverge.com",
	"arstechnica.com", "wired.com", "guardian.com", "nytimes.com",
	"wsj.com", "nature.com", "science.org", "ieee.org", "arxiv.org",
}

// qualityMarkers are lexical indicators of substantive reporting.
var qualityMarkers = []string{
	"research", "study", "according to", "data shows", "report",
	"analysis", "findings", "statistics", "survey", "published",
}

// skipTitleMarkers flags homepage and boilerplate pages that carry no
// article content.
var skipTitleMarkers = []string{
	"home page", "homepage", "welcome to", "about us", "contact us",
	"privacy policy", "terms of service", "sitemap",
}

// Gatherer collects web sources for a query, scores them for credibility,
// and writes the survivors to the sources category. It is the only phase
// that can never fail: when search is unavailable or fruitless it emits
// placeholder sources so the rest of the pipeline has something to chew on.
type Gatherer struct {
	store  *knowledge.Store
	search *websearch.Client // nil when no provider is configured
	cfg    config.GatherConfig
	opts   options

	mu       sync.Mutex
	gathered []knowledge.Record

	now func() time.Time // injectable clock for query expansion tests
}

// NewGatherer creates a Gatherer. search may be nil, in which case every
// run produces placeholder sources.
func NewGatherer(store *knowledge.Store, search *websearch.Client, cfg config.GatherConfig, opts ...Option) *Gatherer {
	return &Gatherer{
		store:  store,
		search: search,
		cfg:    cfg,
		opts:   newOptions(opts),
		now:    time.Now,
	}
}

// Name implements Agent.
func (g *Gatherer) Name() string { return NameGatherer }

// Run implements Agent. It never returns a structural failure: the
// placeholder path is the terminal fallback when search cannot be
// attempted or yields nothing usable.
func (g *Gatherer) Run(ctx context.Context, task Task) error {
	log := g.opts.log.WithQuery(task.QueryID).WithAgent(NameGatherer)

	variants := expandQuery(task.Query, g.cfg.MaxQueryVariants, g.now())
	log.Info("starting gather", "variants", len(variants))

	var pages []websearch.Page
	if g.search != nil {
		for i, variant := range variants {
			if i > 0 {
				// Pause between variants to stay polite to the APIs.
				select {
				case <-time.After(g.cfg.QueryDelay()):
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			found, err := g.search.Search(ctx, variant)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("variant search failed", "variant", variant, "error", err)
				continue
			}
			log.Debug("variant search complete", "variant", variant, "results", len(found))
			pages = append(pages, found...)
		}
	}

	sources := g.scoreAndFilter(dedupeByURL(pages))
	if len(sources) == 0 {
		log.Warn("no usable sources, emitting placeholders")
		g.opts.publish(event.NewAgentDegradedEvent(task.QueryID, NameGatherer, task.Query, "search unavailable or returned nothing usable"))
		sources = placeholderSources(task.Query)
	}

	for _, src := range sources {
		g.store.Put(task.QueryID, knowledge.CategorySources, src)
	}
	g.remember(sources)

	log.Info("gather complete", "sources", len(sources))
	return nil
}

// ReportResults implements Agent.
func (g *Gatherer) ReportResults() []knowledge.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]knowledge.Record, len(g.gathered))
	copy(out, g.gathered)
	return out
}

func (g *Gatherer) remember(sources []knowledge.Source) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range sources {
		g.gathered = append(g.gathered, s)
	}
}

// scoreAndFilter drops unusable pages, scores the rest for credibility,
// and keeps the top K by score.
func (g *Gatherer) scoreAndFilter(pages []websearch.Page) []knowledge.Source {
	var scored []knowledge.Source
	for _, p := range pages {
		if len(p.Content) < g.cfg.MinContentLength {
			continue
		}
		if containsFold(p.Title, skipTitleMarkers) {
			continue
		}
		scored = append(scored, knowledge.Source{
			Title:       p.Title,
			URL:         p.URL,
			Snippet:     p.Snippet,
			Content:     p.Content,
			Credibility: scoreCredibility(p),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Credibility > scored[j].Credibility
	})
	if len(scored) > g.cfg.TopK {
		scored = scored[:g.cfg.TopK]
	}
	return scored
}

// scoreCredibility computes a [0.1, 1.0] credibility score from domain
// reputation, content length, and lexical quality markers.
func scoreCredibility(p websearch.Page) float64 {
	score := baseCredibility

	if containsFold(p.URL, reputableDomains) {
		score += reputableDomainBonus
	}

	n := len(p.Content)
	if n > substantialContentLen {
		score += contentLengthBonus
	}
	if n > detailedContentLen {
		score += contentLengthBonus
	}

	lower := strings.ToLower(p.Content)
	var markers float64
	for _, m := range qualityMarkers {
		if strings.Contains(lower, m) {
			markers += qualityMarkerBonus
		}
	}
	if markers > qualityMarkerBonusCap {
		markers = qualityMarkerBonusCap
	}
	score += markers

	if n < shortContentLen {
		score -= shortContentPenalty
	}

	if score < credibilityFloor {
		return credibilityFloor
	}
	if score > credibilityCeil {
		return credibilityCeil
	}
	return score
}

// expandQuery derives a small bounded set of query variants for better
// coverage: date-anchored variants for recency-flavored queries and domain
// expansions for AI-flavored ones. The original query always comes first.
func expandQuery(query string, max int, now time.Time) []string {
	variants := []string{query}
	lower := strings.ToLower(query)

	if containsFold(lower, []string{"news", "latest", "recent", "current", "today"}) {
		year := now.Year()
		variants = append(variants,
			fmt.Sprintf("%s %d", query, year),
			fmt.Sprintf("%s %s %d", query, now.Month().String(), year),
			strings.ReplaceAll(strings.ReplaceAll(query, "latest", "recent"), "news", "developments"),
		)
	}

	if strings.Contains(lower, "ai") || strings.Contains(lower, "artificial intelligence") {
		variants = append(variants,
			strings.ReplaceAll(query, "ai", "artificial intelligence"),
			query+" machine learning",
			query+" technology trends",
		)
	}

	seen := make(map[string]bool, len(variants))
	var unique []string
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

// dedupeByURL keeps the first occurrence of each URL, preserving order.
func dedupeByURL(pages []websearch.Page) []websearch.Page {
	seen := make(map[string]bool, len(pages))
	var unique []websearch.Page
	for _, p := range pages {
		if p.URL == "" || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		unique = append(unique, p)
	}
	return unique
}

// placeholderSources builds degraded stand-in sources so downstream phases
// always have input, even when search could not be attempted at all.
func placeholderSources(query string) []knowledge.Source {
	slug := strings.ReplaceAll(query, " ", "-")
	return []knowledge.Source{
		{
			Title:       fmt.Sprintf("Article about %s (placeholder)", query),
			URL:         fmt.Sprintf("http://example.com/%s-placeholder", slug),
			Snippet:     fmt.Sprintf("Placeholder overview of %s used when live search is unavailable.", query),
			Content:     fmt.Sprintf("Placeholder content for %s. Live web search was unavailable for this run, so this stand-in text keeps the pipeline moving with clearly marked degraded data.", query),
			Credibility: placeholderCredibility,
			Degraded:    true,
		},
		{
			Title:       fmt.Sprintf("Report on %s (placeholder)", query),
			URL:         fmt.Sprintf("http://example.org/%s-report-placeholder", slug),
			Snippet:     fmt.Sprintf("Placeholder report summary touching on %s.", query),
			Content:     fmt.Sprintf("Placeholder report body for %s. No provider results were available; downstream analysis will treat this as degraded input.", query),
			Credibility: placeholderCredibility - 0.1,
			Degraded:    true,
		},
	}
}

// containsFold reports whether the lowercase form of s contains any of the
// needles (which must already be lowercase).
func containsFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
