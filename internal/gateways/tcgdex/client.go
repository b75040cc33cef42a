package tcgdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

const imageQuality = "/high.png"

// Client reads the card catalog from the TCGdex v2 REST API. Every request,
// including the parallel detail fetches, shares one rate limiter.
type Client struct {
	baseURL     string
	language    string
	limit       int
	concurrency int
	userAgent   string

	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithLimit caps how many cards of the list get a detail fetch. Zero keeps
// every card.
func WithLimit(n int) Option {
	return func(c *Client) { c.limit = n }
}

func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBackoff(initial, ceiling time.Duration) Option {
	return func(c *Client) {
		c.initialBackoff = initial
		c.maxBackoff = ceiling
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     config.DefaultFeedURL,
		language:    config.DefaultFeedLanguage,
		limit:       config.DefaultFeedLimit,
		concurrency: config.DefaultFeedConcurrency,
		userAgent:   "HoloPack/1.0",
		httpClient: &http.Client{
			Timeout: config.FeedRequestTimeout,
		},
		rateLimiter:    rate.NewLimiter(rate.Limit(config.DefaultFeedRatePerSec), 1),
		maxRetries:     config.FeedMaxRetries,
		initialBackoff: config.FeedInitialBackoff,
		maxBackoff:     config.FeedMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCards returns the brief card list.
func (c *Client) ListCards(ctx context.Context) ([]BriefCard, error) {
	var cards []BriefCard
	if err := c.doRequest(ctx, c.endpoint("cards"), &cards); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.doRequest(ctx, c.endpoint("cards", id), &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// FetchCards lists the cards, then fetches details for the first limit of
// them in parallel. A card whose detail fetch fails is still returned, built
// from its list entry.
func (c *Client) FetchCards(ctx context.Context) ([]catalog.Card, error) {
	start := time.Now()

	briefs, err := c.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	if c.limit > 0 && len(briefs) > c.limit {
		briefs = briefs[:c.limit]
	}

	cards := make([]catalog.Card, len(briefs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, brief := range briefs {
		g.Go(func() error {
			detail, err := c.GetCard(gctx, brief.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					slog.Warn("Card detail unavailable, using list entry",
						slog.String("type", "feed"),
						slog.String("card", brief.ID),
						slog.Any("error", err))
				}
				cards[i] = fromBrief(brief)
				return nil
			}
			cards[i] = fromDetail(detail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch card details: %w", err)
	}

	slog.Info("Fetched catalog from feed",
		slog.String("type", "feed"),
		slog.Int("cards", len(cards)),
		slog.Duration("took", time.Since(start)))
	return cards, nil
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/v2/%s/%s", c.baseURL, c.language, strings.Join(escaped, "/"))
}

// doRequest performs a GET with rate limiting. Network errors and 429 and 5xx
// responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, c.maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		retry, err := c.handleResponse(resp, url, result)
		if !retry {
			return err
		}
		lastErr = err
		if wait := retryAfter(resp); wait > backoff {
			backoff = min(wait, c.maxBackoff)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) handleResponse(resp *http.Response, url string, result any) (retry bool, err error) {
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, &NotFoundError{URL: url}
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limited (HTTP 429)")
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server error (HTTP %d)", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func imageURL(base string) string {
	if base == "" {
		return ""
	}
	return base + imageQuality
}

func fromBrief(b BriefCard) catalog.Card {
	return catalog.Normalize(catalog.Card{
		ID:     b.ID,
		Name:   b.Name,
		Number: b.LocalID,
		Image:  imageURL(b.Image),
	})
}

func fromDetail(d *Card) catalog.Card {
	card := catalog.Card{
		ID:          d.ID,
		Name:        d.Name,
		Number:      d.LocalID,
		Rarity:      d.Rarity,
		Set:         d.Set.Name,
		Image:       imageURL(d.Image),
		Description: d.Description,
	}
	if len(d.Types) > 0 {
		card.Type = d.Types[0]
	}
	for _, a := range d.Abilities {
		card.Abilities = append(card.Abilities, catalog.Ability{Name: a.Name, Description: a.Effect})
	}
	for _, a := range d.Attacks {
		card.Abilities = append(card.Abilities, catalog.Ability{
			Name:        a.Name,
			Damage:      string(a.Damage),
			Description: a.Effect,
		})
	}
	return catalog.Normalize(card)
}
