package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"flipnews/internal/cache"
	"flipnews/internal/config"
	"flipnews/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/pemistahl/lingua-go"
	"golang.org/x/time/rate"
)

const snippetLength = 200

// FeedSource builds news pages from RSS/Atom feeds configured per category.
// It needs no credential and serves as a development upstream.
type FeedSource struct {
	feeds     map[string]config.CategoryFeeds
	snapshots *cache.Manager
	parser    *gofeed.Parser
	sanitizer *bluemonday.Policy
	detector  lingua.LanguageDetector
	limiter   *rate.Limiter
}

type feedResult struct {
	URL      string
	Articles []models.Article
	Err      error
}

func NewFeedSource(feeds map[string]config.CategoryFeeds, snapshots *cache.Manager) *FeedSource {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Russian,
			lingua.Chinese, lingua.Arabic,
		).
		Build()

	return &FeedSource{
		feeds:     feeds,
		snapshots: snapshots,
		parser:    gofeed.NewParser(),
		sanitizer: bluemonday.StrictPolicy(),
		detector:  detector,
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (s *FeedSource) RequiresToken() bool { return false }

func (s *FeedSource) Fetch(ctx context.Context, req Request) (*Result, error) {
	var categories []string
	if req.Search != "" {
		categories = s.Categories()
	} else {
		for _, c := range strings.Split(req.Categories, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				categories = append(categories, c)
			}
		}
	}
	sort.Strings(categories)

	var all []models.Article
	reachable := false
	for _, category := range categories {
		articles, err := s.categoryArticles(ctx, category)
		if err != nil {
			log.Printf("Warning: feeds for category '%s' unavailable: %v", category, err)
			continue
		}
		reachable = true
		all = append(all, articles...)
	}
	if !reachable && len(categories) > 0 && s.hasAnyFeeds(categories) {
		return nil, &Error{Kind: KindBadGateway, Err: fmt.Errorf("no feed responded")}
	}

	all = dedupe(all)
	if req.Search != "" {
		all = filterArticles(all, strings.Fields(req.Search))
	}
	if req.Language != "" {
		all = s.filterLanguage(all, req.Language)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	page := paginate(all, req.Page, req.Limit)
	body, err := json.Marshal(page)
	if err != nil {
		return nil, &Error{Kind: KindLocalFault, Err: fmt.Errorf("encode page: %w", err)}
	}
	return &Result{Body: body, ContentType: "application/json; charset=utf-8", Page: page}, nil
}

func (s *FeedSource) hasAnyFeeds(categories []string) bool {
	for _, c := range categories {
		if len(s.feeds[c].URLs) > 0 {
			return true
		}
	}
	return false
}

// categoryArticles returns the merged articles of a category, served from
// the snapshot cache while fresh.
func (s *FeedSource) categoryArticles(ctx context.Context, category string) ([]models.Article, error) {
	if _, exists := s.feeds[category]; !exists {
		return nil, nil
	}

	if cached, found := s.snapshots.Get(snapshotKey(category)); found {
		if articles, ok := cached.([]models.Article); ok {
			return articles, nil
		}
	}
	return s.refresh(ctx, category)
}

// Categories lists the configured categories in sorted order.
func (s *FeedSource) Categories() []string {
	categories := make([]string, 0, len(s.feeds))
	for category := range s.feeds {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Refresh re-reads the feeds of a category and replaces its snapshot.
func (s *FeedSource) Refresh(ctx context.Context, category string) (int, error) {
	if _, exists := s.feeds[category]; !exists {
		return 0, fmt.Errorf("unknown category %q", category)
	}
	articles, err := s.refresh(ctx, category)
	return len(articles), err
}

func (s *FeedSource) refresh(ctx context.Context, category string) ([]models.Article, error) {
	articles, err := s.fetchFeedsParallel(ctx, s.feeds[category].URLs)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].Categories = appendUnique(articles[i].Categories, category)
	}

	s.snapshots.Set(snapshotKey(category), articles, 0)
	return articles, nil
}

func snapshotKey(category string) string {
	return "feed:" + category
}

func (s *FeedSource) fetchFeedsParallel(ctx context.Context, feedURLs []string) ([]models.Article, error) {
	var wg sync.WaitGroup
	results := make(chan feedResult, len(feedURLs))

	for _, url := range feedURLs {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()
			articles, err := s.fetchFeed(ctx, feedURL)
			results <- feedResult{URL: feedURL, Articles: articles, Err: err}
		}(url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var allArticles []models.Article
	var lastErr error
	succeeded := 0
	for result := range results {
		if result.Err != nil {
			log.Printf("Error fetching feed %s: %v", result.URL, result.Err)
			lastErr = result.Err
			continue
		}
		succeeded++
		allArticles = append(allArticles, result.Articles...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return allArticles, nil
}

func (s *FeedSource) fetchFeed(ctx context.Context, url string) ([]models.Article, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		description := s.plainText(item.Description)
		if description == "" {
			description = s.plainText(item.Content)
		}

		article := models.Article{
			UUID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(item.Link)).String(),
			Title:       s.plainText(item.Title),
			Description: description,
			Snippet:     snippet(description),
			URL:         item.Link,
			Source:      feed.Title,
			Categories:  []string{},
			PublishedAt: time.Now().UTC(),
		}
		if item.Image != nil {
			article.ImageURL = item.Image.URL
		} else if feed.Image != nil {
			article.ImageURL = feed.Image.URL
		}
		if len(item.Categories) > 0 {
			article.Keywords = strings.Join(item.Categories, ", ")
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			article.PublishedAt = item.UpdatedParsed.UTC()
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func (s *FeedSource) plainText(raw string) string {
	text := html.UnescapeString(s.sanitizer.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}

// filterLanguage keeps the articles detected as one of the requested
// comma-separated languages and tags every kept article with it.
func (s *FeedSource) filterLanguage(articles []models.Article, language string) []models.Article {
	wanted := make(map[string]bool)
	for _, code := range strings.Split(language, ",") {
		if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
			wanted[code] = true
		}
	}
	filtered := articles[:0:0]
	for _, article := range articles {
		detected := s.detectLanguage(article.Title + ". " + article.Description)
		if !wanted[detected] {
			continue
		}
		article.Language = detected
		filtered = append(filtered, article)
	}
	return filtered
}

func (s *FeedSource) detectLanguage(text string) string {
	language, exists := s.detector.DetectLanguageOf(text)
	if !exists {
		return "en"
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// filterArticles keeps articles matching any of the terms (OR logic).
func filterArticles(articles []models.Article, terms []string) []models.Article {
	var filtered []models.Article
	for _, article := range articles {
		if articleMatches(article, terms) {
			filtered = append(filtered, article)
		}
	}
	return filtered
}

func articleMatches(article models.Article, terms []string) bool {
	articleText := strings.ToLower(strings.Join([]string{
		article.Title,
		article.Description,
		article.Keywords,
		strings.Join(article.Categories, " "),
	}, " "))

	for _, term := range terms {
		if strings.Contains(articleText, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]int, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if i, ok := seen[a.UUID]; ok {
			for _, c := range a.Categories {
				out[i].Categories = appendUnique(out[i].Categories, c)
			}
			continue
		}
		seen[a.UUID] = len(out)
		a.Categories = append([]string(nil), a.Categories...)
		out = append(out, a)
	}
	return out
}

func paginate(articles []models.Article, page, limit int) models.PageResult {
	start := (page - 1) * limit
	if start > len(articles) {
		start = len(articles)
	}
	end := start + limit
	if end > len(articles) {
		end = len(articles)
	}

	data := articles[start:end]
	if data == nil {
		data = []models.Article{}
	}
	return models.PageResult{
		Meta: models.Meta{
			Found:    len(articles),
			Returned: len(data),
			Limit:    limit,
			Page:     page,
		},
		Data: data,
	}
}

func snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:snippetLength])) + "…"
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
