// Package provider holds the HTTP plumbing shared by the news provider
// adapters: API key injection, outbound pacing, circuit breaking, tracing,
// metrics and classification of failures into Error kinds.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/logging"
	"newshub/internal/observability/metrics"
	"newshub/internal/observability/tracing"
	"newshub/internal/resilience/circuitbreaker"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 10 << 20

// maxMessageBytes bounds the upstream error text kept in Error.Message.
const maxMessageBytes = 256

// KeyPlacement says where the API key travels.
type KeyPlacement int

const (
	// KeyInHeader sends the key as a request header.
	KeyInHeader KeyPlacement = iota
	// KeyInQuery sends the key as a query parameter.
	KeyInQuery
)

// Config describes one provider endpoint. It is read-only after New.
type Config struct {
	Provider entity.ProviderID
	BaseURL  string
	APIKey   string
	// KeyName is the header or query parameter carrying APIKey.
	KeyName string
	KeyIn   KeyPlacement
	// Timeout is the transport-level timeout of one request.
	Timeout time.Duration
	// RequestsPerSecond and Burst configure the outbound token bucket.
	// A zero RequestsPerSecond disables pacing.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Provider == "" {
		return errors.New("provider: name is required")
	}
	if err := entity.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("provider %s: base url: %w", c.Provider, err)
	}
	if c.KeyName == "" {
		return fmt.Errorf("provider %s: key name is required", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("provider %s: timeout must not be negative", c.Provider)
	}
	if c.RequestsPerSecond < 0 || c.Burst < 0 {
		return fmt.Errorf("provider %s: rate limit must not be negative", c.Provider)
	}
	return nil
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer replaces the tracer used for provider spans.
func WithTracer(tr trace.Tracer) Option {
	return func(c *Client) { c.tracer = tr }
}

// WithLogger replaces the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBreaker replaces the circuit breaker configuration.
func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) { c.breakerCfg = cfg }
}

// Client performs GET requests returning JSON against one provider.
type Client struct {
	cfg        Config
	base       string
	http       *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	breakerCfg circuitbreaker.Config
	tracer     trace.Tracer
	logger     *slog.Logger
}

// errCallerGone marks failures caused by the caller's context so they do not count against the breaker.
var errCallerGone = errors.New("caller context done")

// New builds a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		cfg:        cfg,
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		breakerCfg: circuitbreaker.ProviderConfig(cfg.Provider.String()),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.ForProvider(c.logger, cfg.Provider.String())

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	bc := c.breakerCfg
	bc.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errCallerGone)
	}
	provider := cfg.Provider.String()
	bc.OnStateChange = func(_ string, _, to gobreaker.State) {
		metrics.SetCircuitState(provider, circuitbreaker.StateValue(to))
	}
	c.breaker = circuitbreaker.New(bc)
	metrics.SetCircuitState(provider, 0)

	return c, nil
}

// Provider returns the provider this client talks to.
func (c *Client) Provider() entity.ProviderID {
	return c.cfg.Provider
}

// Status describes the client for health reporting.
type Status struct {
	Provider   entity.ProviderID `json:"provider"`
	KeySet     bool              `json:"keySet"`
	Circuit    string            `json:"circuit"`
	RatePerSec float64           `json:"ratePerSec,omitempty"`
}

// Status reports whether a key is configured and the breaker state.
func (c *Client) Status() Status {
	return Status{
		Provider:   c.cfg.Provider,
		KeySet:     c.cfg.APIKey != "",
		Circuit:    c.breaker.State().String(),
		RatePerSec: c.cfg.RequestsPerSecond,
	}
}

// GetJSON issues GET base+path with query and decodes the JSON body into out.
// Every failure is returned as *Error.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) (err error) {
	start := time.Now()
	ctx, span := tracing.StartProviderSpan(ctx, c.tracer, c.cfg.Provider.String(), path)
	defer func() {
		c.record(ctx, path, err, time.Since(start))
		tracing.EndWithError(span, err)
	}()

	if c.cfg.APIKey == "" {
		return c.fail(KindAuth, 0, "", ErrMissingAPIKey)
	}

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return c.fail(KindTransport, 0, "", fmt.Errorf("rate limiter: %w", werr))
		}
	}

	_, berr := c.breaker.Execute(func() (interface{}, error) {
		if derr := c.do(ctx, path, query, out); derr != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(errCallerGone, derr)
			}
			return nil, derr
		}
		return nil, nil
	})
	if berr == nil {
		return nil
	}
	if circuitbreaker.IsRejection(berr) {
		return c.fail(KindCircuitOpen, 0, "", berr)
	}
	var pe *Error
	if errors.As(berr, &pe) {
		return pe
	}
	return c.fail(KindTransport, 0, "", berr)
}

func (c *Client) do(ctx context.Context, path string, query url.Values, out any) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.cfg.KeyIn == KeyInQuery {
		q.Set(c.cfg.KeyName, c.cfg.APIKey)
	}

	target := c.base + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return c.fail(KindTransport, 0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.KeyIn == KeyInHeader {
		req.Header.Set(c.cfg.KeyName, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(KindTransport, 0, "", redact(err, c.cfg.APIKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(KindTransport, resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(kindForStatus(resp.StatusCode), resp.StatusCode, upstreamMessage(body), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(KindDecode, resp.StatusCode, "", err)
	}
	return nil
}

func (c *Client) fail(kind Kind, status int, msg string, err error) *Error {
	return &Error{Provider: c.cfg.Provider, Kind: kind, StatusCode: status, Message: msg, Err: err}
}

// record logs and counts one call. Rate limiting and rejected credentials get
// their own messages so quota exhaustion is easy to tell apart from bad keys.
func (c *Client) record(ctx context.Context, path string, err error, d time.Duration) {
	provider := c.cfg.Provider.String()
	if err == nil {
		metrics.RecordProviderRequest(provider, "success", "", d)
		return
	}

	kind := KindOf(err)
	metrics.RecordProviderRequest(provider, "failure", string(kind), d)

	logger := logging.WithRequestID(ctx, c.logger)
	var pe *Error
	status := 0
	if errors.As(err, &pe) {
		status = pe.StatusCode
	}
	attrs := []any{
		slog.String("endpoint", path),
		slog.String("kind", string(kind)),
		slog.Int("status_code", status),
		slog.Duration("duration", d),
	}
	switch kind {
	case KindRateLimit:
		logger.Warn("provider rate limit exceeded", attrs...)
	case KindAuth:
		logger.Warn("provider rejected credentials", attrs...)
	case KindCircuitOpen:
		logger.Debug("provider circuit open, skipping call", attrs...)
	default:
		logger.Warn("provider request failed", append(attrs, slog.Any("error", err))...)
	}
}

// upstreamMessage extracts a short error text from the known provider error bodies.
func upstreamMessage(body []byte) string {
	var envelope struct {
		Message  string `json:"message"`
		Response struct {
			Message string `json:"message"`
		} `json:"response"`
		Fault struct {
			FaultString string `json:"faultstring"`
		} `json:"fault"`
	}
	msg := ""
	if json.Unmarshal(body, &envelope) == nil {
		switch {
		case envelope.Message != "":
			msg = envelope.Message
		case envelope.Response.Message != "":
			msg = envelope.Response.Message
		case envelope.Fault.FaultString != "":
			msg = envelope.Fault.FaultString
		}
	}
	if len(msg) > maxMessageBytes {
		msg = msg[:maxMessageBytes]
	}
	return msg
}

// redact strips the API key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
