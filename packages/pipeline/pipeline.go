// Package pipeline turns a product page URL into an ExtractionResult: fetch,
// classify currency, extract price and name.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"pricealert/packages/config"
	"pricealert/packages/crawler"
	"pricealert/packages/currency"
	"pricealert/packages/document"
	"pricealert/packages/domain"
	"pricealert/packages/extractor"
	"pricealert/packages/metrics"
)

const (
	testScheme      = "test://"
	testProductName = "Test Product"

	// Bounds stay inside (10, 500) after rounding to cents.
	testMinPrice = 10.01
	testMaxPrice = 499.99
)

// Fetcher performs a single GET. Any HTTP response is a page; only transport
// failures are errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.FetchedPage, error)
}

type Option func(*Coordinator)

// WithRand replaces the random source used for test:// results.
func WithRand(r *rand.Rand) Option {
	return func(c *Coordinator) {
		c.randFloat = r.Float64
	}
}

type Coordinator struct {
	fetcher    Fetcher
	classifier *currency.Classifier
	prices     *extractor.PriceExtractor
	names      *extractor.NameExtractor
	randFloat  func() float64
}

func New(fetcher Fetcher, classifier *currency.Classifier, opts ...Option) *Coordinator {
	if classifier == nil {
		classifier = currency.Default()
	}
	c := &Coordinator{
		fetcher:    fetcher,
		classifier: classifier,
		prices:     extractor.NewPriceExtractor(),
		names:      extractor.NewNameExtractor(),
		randFloat:  rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	res, err := c.run(ctx, strings.TrimSpace(req.URL))
	metrics.ExtractionsTotal.WithLabelValues(outcome(res, err)).Inc()
	return res, err
}

func (c *Coordinator) run(ctx context.Context, rawURL string) (*domain.ExtractionResult, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL is required", domain.ErrInvalidURL)
	}

	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, testScheme) {
		return c.testResult(), nil
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, domain.ErrInvalidURL
	}

	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, rawURL)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if page.StatusCode < http.StatusOK || page.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.HTTPStatusError{Status: page.StatusCode}
	}

	profile := c.classifier.Classify(rawURL)

	doc, err := document.Parse(bytes.NewReader(page.Body))
	if err != nil {
		slog.Debug("Failed to parse page", "url", rawURL, "error", err)
		return nil, domain.ErrPriceNotFound
	}

	price, ok := c.prices.Extract(doc)
	if !ok {
		slog.Debug("No price candidate accepted", "url", rawURL)
		return nil, domain.ErrPriceNotFound
	}
	metrics.PriceTierTotal.WithLabelValues(price.Tier.String()).Inc()
	slog.Debug("Price found", "url", rawURL, "tier", price.Tier.String(), "raw", price.RawText, "price", price.Value)

	return &domain.ExtractionResult{
		Price:          price.Value,
		Currency:       profile.Code,
		CurrencySymbol: profile.Symbol,
		ProductName:    c.names.Extract(doc, rawURL),
	}, nil
}

func (c *Coordinator) testResult() *domain.ExtractionResult {
	price := testMinPrice + c.randFloat()*(testMaxPrice-testMinPrice)
	return &domain.ExtractionResult{
		Price:          math.Round(price*100) / 100,
		Currency:       currency.Fallback.Code,
		CurrencySymbol: currency.Fallback.Symbol,
		ProductName:    testProductName,
		TestMode:       true,
	}
}

func outcome(res *domain.ExtractionResult, err error) string {
	var statusErr *domain.HTTPStatusError
	var fetchErr *domain.FetchError
	switch {
	case err == nil && res.TestMode:
		return metrics.OutcomeTestMode
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInvalidURL):
		return metrics.OutcomeInvalidURL
	case errors.As(err, &statusErr):
		return metrics.OutcomeHTTPStatus
	case errors.As(err, &fetchErr):
		return metrics.OutcomeFetchFailed
	default:
		return metrics.OutcomePriceMissing
	}
}

// NewFromConfig wires the default fetcher and the built-in currency table plus
// any rules from CurrencyRulesFile.
func NewFromConfig(cfg config.Config, opts ...Option) (*Coordinator, error) {
	rules := currency.DefaultRules
	if cfg.CurrencyRulesFile != "" {
		loaded, err := currency.LoadRules(cfg.CurrencyRulesFile)
		if err != nil {
			return nil, fmt.Errorf("load currency rules: %w", err)
		}
		rules = loaded
	}
	return New(crawler.New(cfg.FetchTimeout), currency.NewClassifier(rules), opts...), nil
}
