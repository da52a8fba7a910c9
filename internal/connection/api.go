package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/desertthunder/bcx/internal/httpcache"
	"github.com/desertthunder/bcx/internal/metrics"
	"github.com/desertthunder/bcx/internal/shared"
)

var _ Connection = (*APIConnection)(nil)

// Options configure an [APIConnection].
type Options struct {
	ReadToken  string
	WriteToken string
	ReadURL    string
	WriteURL   string

	// Client credentials. When both are set requests carry a bearer token and
	// the read/write tokens become optional.
	ClientID     string
	ClientSecret string
	TokenURL     string

	// RateLimit is the number of requests per second; zero means unlimited.
	RateLimit float64
	Timeout   time.Duration

	// Cache, when set, stores successful reads for CacheTTL.
	Cache    httpcache.Storage
	CacheTTL time.Duration

	// HTTPClient replaces the default client. Its transport is wrapped by the
	// cache and the OAuth2 transport when those are configured.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// OptionsFromConfig maps the [brightcove] config section onto [Options].
func OptionsFromConfig(cfg shared.BrightcoveConfig) Options {
	return Options{
		ReadToken:    cfg.ReadToken,
		WriteToken:   cfg.WriteToken,
		ReadURL:      cfg.ReadURL,
		WriteURL:     cfg.WriteURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		RateLimit:    cfg.RateLimit,
		Timeout:      cfg.Timeout(),
	}
}

// APIConnection is the HTTP [Connection]. It is safe for concurrent use.
type APIConnection struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
	oauth   bool
	cache   *httpcache.Transport
}

// New builds an [APIConnection] from opts.
func New(opts Options) *APIConnection {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	var cache *httpcache.Transport
	if opts.Cache != nil {
		cache = httpcache.NewTransport(client.Transport, opts.Cache, opts.CacheTTL)
		cache.OnLookup = metrics.ObserveCacheLookup
		cache.Cacheable = cacheableRead
		client.Transport = cache
	}

	oauth := opts.ClientID != "" && opts.ClientSecret != ""
	if oauth {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &client)
		authed := cc.Client(ctx)
		authed.Timeout = client.Timeout
		client = *authed
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &APIConnection{
		opts:    opts,
		client:  &client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		oauth:   oauth,
		cache:   cache,
	}
}

// cacheableRead rejects read bodies carrying an error object.
func cacheableRead(body []byte) bool {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return true
	}
	return len(envelope.Error) == 0 || string(envelope.Error) == "null"
}

// GetItem runs a read command that returns a single record.
func (c *APIConnection) GetItem(ctx context.Context, command string, params Params) (json.RawMessage, error) {
	body, err := c.read(ctx, command, params)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, fmt.Errorf("%s: %w", command, shared.ErrNoDataFound)
	}
	return json.RawMessage(trimmed), nil
}

// GetList runs a read command that returns a page of records.
func (c *APIConnection) GetList(ctx context.Context, command string, params Params) (*ItemCollection, error) {
	body, err := c.read(ctx, command, params)
	if err != nil {
		return nil, err
	}

	var page ItemCollection
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%s: failed to decode list: %w", command, err)
	}
	return &page, nil
}

// Post runs a write method and returns the result member of the response.
func (c *APIConnection) Post(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	if c.opts.WriteToken == "" && !c.oauth {
		return nil, fmt.Errorf("%w: write token is not configured", shared.ErrMissingCredentials)
	}

	p := params.Clone()
	if c.opts.WriteToken != "" {
		p["token"] = c.opts.WriteToken
	}
	payload, err := json.Marshal(map[string]any{"method": method, "params": p})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", method, err)
	}

	form := url.Values{"json": {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.WriteURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, method)
	if err != nil {
		return nil, err
	}
	// The write reached the server, so any stored read may now be stale.
	if c.cache != nil {
		if err := c.cache.Invalidate(); err != nil {
			c.logger.Warn("failed to purge response cache", "method", method, "error", err)
		}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
		ID     any             `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", method, err)
	}
	if apiErr := parseAPIError(method, http.StatusOK, envelope.Error); apiErr != nil {
		return nil, apiErr
	}
	return envelope.Result, nil
}

func (c *APIConnection) read(ctx context.Context, command string, params Params) ([]byte, error) {
	if c.opts.ReadToken == "" && !c.oauth {
		return nil, fmt.Errorf("%w: read token is not configured", shared.ErrMissingCredentials)
	}

	u, err := url.Parse(c.opts.ReadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: read url: %v", shared.ErrInvalidConfig, err)
	}
	q := EncodeParams(params)
	q.Set("command", command)
	if c.opts.ReadToken != "" {
		q.Set("token", c.opts.ReadToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req, command)
	if err != nil {
		return nil, err
	}

	// Reads report failures as a top-level error object alongside a 200.
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if apiErr := parseAPIError(command, http.StatusOK, envelope.Error); apiErr != nil {
			return nil, apiErr
		}
	}
	return body, nil
}

// do waits for the limiter, sends req and returns the body of a 2xx response.
func (c *APIConnection) do(req *http.Request, command string) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	metrics.APIRequestsInFlight.Inc()
	defer metrics.APIRequestsInFlight.Dec()

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(command, 0, time.Since(start))
		c.logger.Debug("api request failed", "command", command, "error", err)
		return nil, fmt.Errorf("%s: request failed: %w", command, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ObserveAPIRequest(command, resp.StatusCode, elapsed)
	c.logger.Debug("api request", "command", command, "status", resp.StatusCode, "duration", elapsed)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", command, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Command: command, StatusCode: resp.StatusCode}
		var envelope struct {
			Error json.RawMessage `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			if parsed := parseAPIError(command, resp.StatusCode, envelope.Error); parsed != nil {
				apiErr = parsed
			}
		}
		return nil, apiErr
	}
	return body, nil
}

// EncodeParams renders params as a read query. Slices are comma-joined and nil
// values are skipped.
func EncodeParams(params Params) url.Values {
	q := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		q.Set(k, formatValue(v))
	}
	return q
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []string:
		return strings.Join(x, ",")
	case []int64:
		return shared.JoinInts(x)
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
