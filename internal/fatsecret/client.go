package fatsecret

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
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the FatSecret REST endpoint. Every method is a GET on
// this one URL, selected by the "method" parameter.
const DefaultBaseURL = "https://platform.fatsecret.com/rest/server.api"

// ErrFetchFailed is returned for every upstream failure: transport error,
// non-2xx status, a body that is not JSON, or a FatSecret error envelope.
var ErrFetchFailed = errors.New("failed to fetch")

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	BaseURL        string
	// Timeout bounds each outbound call, including reading the body.
	Timeout time.Duration
	// RateLimit is the sustained requests per second sent upstream.
	// Zero or negative disables throttling.
	RateLimit float64
}

// Client calls the FatSecret API. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	now   func() time.Time
	nonce func() string
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		now:     time.Now,
		nonce:   uuid.NewString,
	}
}

// SearchFoods runs foods.search and returns FatSecret's JSON unchanged.
func (c *Client) SearchFoods(ctx context.Context, query string, page, maxResults int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("method", "foods.search")
	params.Set("search_expression", query)
	params.Set("page_number", strconv.Itoa(page))
	params.Set("max_results", strconv.Itoa(maxResults))
	return c.call(ctx, params)
}

// FoodDetail runs food.get.v2 for one food id.
func (c *Client) FoodDetail(ctx context.Context, foodID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("method", "food.get.v2")
	params.Set("food_id", foodID)
	return c.call(ctx, params)
}

// errorEnvelope is how FatSecret reports failures, usually with HTTP 200.
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, params url.Values) (json.RawMessage, error) {
	method := params.Get("method")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: waiting for rate limiter: %v", ErrFetchFailed, method, err)
	}

	params.Set("format", "json")
	signed := Sign(http.MethodGet, c.cfg.BaseURL, params,
		c.cfg.ConsumerKey, c.cfg.ConsumerSecret, c.nonce(), c.now().Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+signed.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: building request: %v", ErrFetchFailed, method, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("fatsecret request failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrFetchFailed, method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("fatsecret returned non-2xx",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, method, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: response is not JSON", ErrFetchFailed, method)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		c.logger.Warn("fatsecret returned an error",
			slog.String("method", method),
			slog.Int("code", envelope.Error.Code),
			slog.String("message", envelope.Error.Message),
		)
		return nil, fmt.Errorf("%w: %s: code %d: %s", ErrFetchFailed, method,
			envelope.Error.Code, envelope.Error.Message)
	}

	c.logger.Debug("fatsecret request completed",
		slog.String("method", method),
		slog.Duration("duration", time.Since(start)),
	)
	return json.RawMessage(body), nil
}
