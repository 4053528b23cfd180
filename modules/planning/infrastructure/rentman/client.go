package rentman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/iota-uz/crewplan/modules/planning/infrastructure/cache"
)

var tracer = otel.Tracer("crewplan-rentman")

var ErrInvalidConfig = errors.New("invalid rentman client configuration")

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

type Options struct {
	BaseURL string
	Token   string

	// Timeout bounds every single request attempt.
	Timeout    time.Duration
	MaxRetries int
	MaxBackoff time.Duration
	JitterMax  time.Duration

	// Cache is optional; without it every Get reaches the network.
	Cache *cache.ResponseCache

	HTTPClient *http.Client
	Rand       *rand.Rand
	Logger     *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 120 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 8 * time.Second
	}
	if o.JitterMax == 0 {
		o.JitterMax = 250 * time.Millisecond
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

// Client is a read-only client of the Rentman REST API. GET responses are cached by
// request fingerprint and identical in-flight requests are collapsed into one.
type Client struct {
	baseURL string
	token   string
	opts    Options
	rand    *lockedRand
	logger  *logrus.Entry
	metrics *metrics
	group   singleflight.Group
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, invalidConfig("base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, invalidConfig("base url is malformed")
	}
	opts.setDefaults()
	return &Client{
		baseURL: base,
		token:   opts.Token,
		opts:    opts,
		rand:    &lockedRand{r: opts.Rand},
		logger:  opts.Logger.WithField("component", "rentman"),
		metrics: getMetrics(),
	}, nil
}

func (c *Client) Cache() *cache.ResponseCache {
	return c.opts.Cache
}

// Get fetches endpoint with params and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	key := cache.Fingerprint(endpoint, params)
	if c.opts.Cache != nil {
		if payload, ok := c.opts.Cache.Get(ctx, key); ok {
			c.metrics.requests.WithLabelValues(resultCached).Inc()
			return payload, nil
		}
	}

	rawURL := c.requestURL(endpoint, params)
	// The shared fetch outlives any single caller; each caller only stops waiting.
	ch := c.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		body, err := c.fetchWithRetry(shared, rawURL)
		if err != nil {
			return nil, err
		}
		if c.opts.Cache != nil {
			if err := c.opts.Cache.Put(shared, key, body); err != nil {
				c.logger.WithError(err).WithField("endpoint", endpoint).Warn("cache write failed")
			}
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, &TransportError{URL: rawURL, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

func (c *Client) requestURL(endpoint string, params url.Values) string {
	u := c.baseURL + endpoint
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.fetch(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if attempt >= c.opts.MaxRetries || !retryable(err) || ctx.Err() != nil {
			return nil, err
		}

		wait := backoff(attempt+1, c.opts.MaxBackoff) + c.rand.jitter(c.opts.JitterMax)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Debug("retrying upstream request")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
}

func (c *Client) fetch(ctx context.Context, rawURL string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "rentman.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", rawURL),
		),
	)
	defer span.End()

	start := time.Now()
	body, status, err := c.roundTrip(ctx, rawURL)
	result := resultOK
	if err != nil {
		result = resultTransport
		err = &TransportError{URL: rawURL, Err: err}
	} else if status < 200 || status > 299 {
		result = resultHTTPError
		err = &UpstreamError{Status: status, Message: errorMessage(status, body), URL: rawURL}
	} else if !json.Valid(body) {
		result = resultDecode
		err = &DecodeError{URL: rawURL, Err: errors.New("body is not valid JSON")}
	}

	c.metrics.requests.WithLabelValues(result).Inc()
	c.metrics.latency.WithLabelValues(result).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("rentman.result", result),
	)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) roundTrip(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return bytes.TrimSpace(body), resp.StatusCode, nil
}

type page struct {
	Data []json.RawMessage `json:"data"`
}

// FetchAllPages walks limit/offset pages until a page holds fewer than pageSize
// records. A full last page always costs one more, empty, request.
func (c *Client) FetchAllPages(ctx context.Context, endpoint string, params url.Values, pageSize int) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var all []json.RawMessage
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := cloneValues(params)
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		body, err := c.Get(ctx, endpoint, q)
		if err != nil {
			return nil, err
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &DecodeError{URL: c.requestURL(endpoint, q), Err: err}
		}
		all = append(all, p.Data...)
		if len(p.Data) < pageSize {
			return all, nil
		}
	}
}

// FetchAllPagesCached stores the concatenated pages under one logical cache key.
func (c *Client) FetchAllPagesCached(ctx context.Context, endpoint string, params url.Values, pageSize int, logicalKey string) ([]json.RawMessage, error) {
	key := cache.LogicalKey(logicalKey)
	if c.opts.Cache != nil {
		if payload, ok := c.opts.Cache.Get(ctx, key); ok {
			var records []json.RawMessage
			if err := json.Unmarshal(payload, &records); err == nil {
				return records, nil
			}
		}
	}

	records, err := c.FetchAllPages(ctx, endpoint, params, pageSize)
	if err != nil {
		return nil, err
	}

	if c.opts.Cache != nil {
		if records == nil {
			records = []json.RawMessage{}
		}
		payload, err := json.Marshal(records)
		if err == nil {
			err = c.opts.Cache.Put(ctx, key, payload)
		}
		if err != nil {
			c.logger.WithError(err).WithField("key", logicalKey).Warn("cache write failed")
		}
	}
	return records, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
