// Package research looks up grants and news for a US state through a
// generative AI service with web search grounding.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"grantbot/internal/metrics"
	"grantbot/internal/model"
)

// DefaultNewsLimit is the number of news links returned by News.
const DefaultNewsLimit = 5

// Operation names used in logs and metrics.
const (
	OpGrants = "grants"
	OpNews   = "news"
)

// ErrMalformedResponse is returned when the grant response is not valid JSON.
var ErrMalformedResponse = errors.New("malformed response")

// Completion is the answer text of a model call plus the web pages it cited.
type Completion struct {
	Text      string
	Citations []model.Source
}

// Model sends a single prompt to a generative AI service.
type Model interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}

// Recorder receives lookup metrics.
type Recorder interface {
	RecordLookup(operation, outcome string, d time.Duration)
	RecordResults(grants, sources int)
}

// Options tune a Client. Zero values select defaults.
type Options struct {
	NewsLimit         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client runs grant and news lookups against a Model.
type Client struct {
	model     Model
	limiter   *rate.Limiter
	timeout   time.Duration
	newsLimit int
	rec       Recorder
	log       *slog.Logger
}

// NewClient creates a Client. rec may be nil.
func NewClient(m Model, opts Options, rec Recorder, log *slog.Logger) *Client {
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	if opts.NewsLimit <= 0 {
		opts.NewsLimit = DefaultNewsLimit
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Client{
		model: m,
		// Burst of two lets a grant and a news lookup start together.
		limiter:   rate.NewLimiter(limit, 2),
		timeout:   opts.Timeout,
		newsLimit: opts.NewsLimit,
		rec:       rec,
		log:       log,
	}
}

// Grants returns the active grants for state and the sources backing them.
// An empty model answer yields an empty result.
func (c *Client) Grants(ctx context.Context, state string) (model.SearchResult, error) {
	start := time.Now()
	comp, err := c.generate(ctx, grantsPrompt(state))
	if err != nil {
		c.fail(OpGrants, state, metrics.OutcomeError, start, err)
		return model.SearchResult{}, fmt.Errorf("fetch grants for %s: %w", state, err)
	}

	grants, err := ParseGrants(comp.Text)
	if err != nil {
		c.fail(OpGrants, state, metrics.OutcomeMalformed, start, err)
		return model.SearchResult{}, fmt.Errorf("parse grants for %s: %w", state, err)
	}
	if len(grants) == 0 {
		c.log.Warn("model returned no grants", "state", state)
	}

	res := model.SearchResult{
		Grants:  grants,
		Sources: DedupeSources(comp.Citations, 0),
	}
	c.succeed(OpGrants, state, start, len(res.Grants), len(res.Sources))
	return res, nil
}

// News returns up to the configured number of news links about grants in state.
// No citations is an empty list, not an error.
func (c *Client) News(ctx context.Context, state string) ([]model.Source, error) {
	start := time.Now()
	comp, err := c.generate(ctx, newsPrompt(state))
	if err != nil {
		c.fail(OpNews, state, metrics.OutcomeError, start, err)
		return nil, fmt.Errorf("fetch news for %s: %w", state, err)
	}

	articles := DedupeSources(comp.Citations, c.newsLimit)
	if len(articles) == 0 {
		c.log.Warn("model returned no news citations", "state", state)
	}
	c.succeed(OpNews, state, start, 0, len(articles))
	return articles, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("wait for rate limiter: %w", err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.model.Generate(ctx, prompt)
}

func (c *Client) fail(op, state, outcome string, start time.Time, err error) {
	d := time.Since(start)
	c.rec.RecordLookup(op, outcome, d)
	c.log.Error("lookup failed", "operation", op, "state", state, "duration", d, "error", err)
}

func (c *Client) succeed(op, state string, start time.Time, grants, sources int) {
	d := time.Since(start)
	c.rec.RecordLookup(op, metrics.OutcomeSuccess, d)
	c.rec.RecordResults(grants, sources)
	c.log.Info("lookup done", "operation", op, "state", state, "duration", d,
		"grants", grants, "sources", sources)
}

type nopRecorder struct{}

func (nopRecorder) RecordLookup(string, string, time.Duration) {}
func (nopRecorder) RecordResults(int, int)                    {}
