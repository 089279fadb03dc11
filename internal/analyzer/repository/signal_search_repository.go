package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// SearchQuery describes one ingestion fetch against the news index.
type SearchQuery struct {
	Kind        entity.SignalKind
	Category    entity.Category
	CompanyName string
	Terms       string
}

// SignalSearchRepository fetches raw candidate signals from the news
// index. Results are cached per normalized query so repeated runs within
// the TTL do not hit the source again.
type SignalSearchRepository interface {
	Fetch(ctx context.Context, query SearchQuery) ([]entity.RawSignal, error)
}

// NewSignalSearchRepository creates a new instance of SignalSearchRepository.
func NewSignalSearchRepository(cfg *config.Config, log *logger.Logger) (SignalSearchRepository, error) {
	cacheTTL, err := time.ParseDuration(cfg.Ingestion.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid ingestion cache_ttl: %w", err)
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.Ingestion.RequestsPerMin)

	return &signalSearchRepository{
		cfg:        cfg,
		logger:     log,
		client:     &http.Client{Timeout: 30 * time.Second},
		queryCache: cache.New(cacheTTL, 2*cacheTTL),
		limiter:    rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

type signalSearchRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	client     *http.Client
	queryCache *cache.Cache
	limiter    *rate.Limiter
}

// Fetch retrieves candidate signals for one query, serving from the
// query cache when possible.
func (r *signalSearchRepository) Fetch(ctx context.Context, query SearchQuery) ([]entity.RawSignal, error) {
	cacheKey := normalizeQueryKey(query)
	if cached, found := r.queryCache.Get(cacheKey); found {
		r.logger.Debug("Serving signals from cache", logger.StringField("query", cacheKey))
		return cached.([]entity.RawSignal), nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(query.Terms))

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for %q: %w", query.Terms, err)
	}

	maxAge := time.Duration(r.cfg.Ingestion.MaxSignalAgeDay) * 24 * time.Hour
	cutoff := time.Now().UTC().Add(-maxAge)

	signals := make([]entity.RawSignal, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(signals) >= r.cfg.Ingestion.MaxPerQuery {
			break
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		signal := entity.RawSignal{
			Kind:        query.Kind,
			Category:    query.Category,
			CompanyName: query.CompanyName,
			Title:       strings.TrimSpace(item.Title),
			Summary:     strings.TrimSpace(stripHTML(item.Description)),
			SourceURL:   item.Link,
			SourceName:  sourceNameFor(item),
			PublishedAt: published,
		}
		if r.cfg.Ingestion.FetchContent {
			signal.Content = r.fetchArticleContent(ctx, item.Link)
		}
		if signal.Content == "" {
			signal.Content = signal.Summary
		}
		signals = append(signals, signal)
	}

	r.queryCache.Set(cacheKey, signals, cache.DefaultExpiration)
	return signals, nil
}

// fetchArticleContent pulls the article body text. Extraction failures
// degrade to the feed summary instead of failing the fetch.
func (r *signalSearchRepository) fetchArticleContent(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("Failed to fetch article", logger.StringField("link", link), logger.ErrorField(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return ""
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return ""
	}
	content, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Content()))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(content.Text())
}

func sourceNameFor(item *gofeed.Item) string {
	if item.Custom != nil {
		if src, ok := item.Custom["source"]; ok && src != "" {
			return src
		}
	}
	if u, err := url.Parse(item.Link); err == nil {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return ""
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

func normalizeQueryKey(query SearchQuery) string {
	return strings.ToLower(strings.Join(strings.Fields(
		fmt.Sprintf("%s %s %s", query.Kind, query.Category, query.Terms)), " "))
}
