package fetch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/career-admin/internal/logging"
)

// DefaultPostingTTL is how long extracted posting text is reused
const DefaultPostingTTL = time.Hour

// DefaultMaxPostings caps the number of cached postings
const DefaultMaxPostings = 256

// ErrEmptyPosting is returned when no posting text could be extracted
var ErrEmptyPosting = errors.New("no posting text found")

// PostingFetcher fetches job postings and caches the extracted text in memory.
type PostingFetcher struct {
	options *Options
	render  RenderFunc // nil disables the browser fallback
	ttl     time.Duration
	max     int
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedPosting
}

type cachedPosting struct {
	text      string
	fetchedAt time.Time
}

// PostingFetcherConfig holds configuration for the posting fetcher.
type PostingFetcherConfig struct {
	Options    *Options
	Render     RenderFunc
	TTL        time.Duration
	MaxEntries int
	Logger     *slog.Logger
}

// NewPostingFetcher creates a posting fetcher.
func NewPostingFetcher(cfg PostingFetcherConfig) *PostingFetcher {
	if cfg.Options == nil {
		cfg.Options = DefaultOptions()
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultPostingTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxPostings
	}
	return &PostingFetcher{
		options: cfg.Options,
		render:  cfg.Render,
		ttl:     cfg.TTL,
		max:     cfg.MaxEntries,
		logger:  logging.OrDiscard(cfg.Logger),
		now:     time.Now,
		cache:   make(map[string]cachedPosting),
	}
}

// FetchPosting returns the plain text of the job posting at urlStr.
// The HTML fetch runs first; the browser renderer is tried when the page
// is known to render client-side or the extracted text is too short.
func (f *PostingFetcher) FetchPosting(ctx context.Context, urlStr string) (string, error) {
	if text, ok := f.cached(urlStr); ok {
		return text, nil
	}
	if err := ValidateURL(urlStr); err != nil {
		return "", err
	}
	if !f.options.AllowPrivateHosts {
		// checked before the renderer, which would otherwise load the page itself
		if err := CheckHost(ctx, urlStr); err != nil {
			return "", err
		}
	}

	platform := DetectPlatform(urlStr)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	var text string
	result, fetchErr := URL(ctx, urlStr, f.options)
	if fetchErr == nil {
		text, _ = ExtractMainText(result.HTML, content, noise...)
	}

	if f.render != nil && (fetchErr != nil || RendersClientSide(platform) || ShouldUseBrowser(text)) {
		html, err := f.render(ctx, urlStr)
		switch {
		case err != nil:
			f.logger.Warn("browser fallback failed", "url", urlStr, "error", err)
		default:
			if rendered, _ := ExtractMainText(html, content, noise...); len(rendered) > len(text) {
				text = rendered
				fetchErr = nil
			}
		}
	}

	if fetchErr != nil {
		return "", fetchErr
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "extraction failed", Cause: ErrEmptyPosting}
	}

	f.store(urlStr, text)
	f.logger.Debug("fetched job posting", "url", urlStr, "platform", platform, "chars", len(text))
	return text, nil
}

func (f *PostingFetcher) cached(urlStr string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.cache[urlStr]
	if !ok {
		return "", false
	}
	if f.now().Sub(entry.fetchedAt) > f.ttl {
		delete(f.cache, urlStr)
		return "", false
	}
	return entry.text, true
}

// store adds a posting, first dropping expired entries and then the oldest
// entries while the cache is full
func (f *PostingFetcher) store(urlStr, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for key, entry := range f.cache {
		if now.Sub(entry.fetchedAt) > f.ttl {
			delete(f.cache, key)
		}
	}
	delete(f.cache, urlStr)
	for len(f.cache) >= f.max {
		var (
			oldestKey string
			oldest    time.Time
		)
		for key, entry := range f.cache {
			if oldestKey == "" || entry.fetchedAt.Before(oldest) {
				oldestKey, oldest = key, entry.fetchedAt
			}
		}
		delete(f.cache, oldestKey)
	}
	f.cache[urlStr] = cachedPosting{text: text, fetchedAt: now}
}

// Len reports how many postings are cached
func (f *PostingFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}

// Invalidate drops a cached posting so the next fetch goes to the network
func (f *PostingFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, urlStr)
}
