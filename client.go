// Package awsclient issues GET/POST requests against AWS-compatible API
// endpoints, optionally signing them with AWS Signature Version 4 via the
// sigv4 subpackage, and decodes responses with a caller-chosen strategy.
package awsclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jayantasamaddar/go-awsclient/auth"
	"github.com/jayantasamaddar/go-awsclient/sigv4"
)

// Client dispatches Requests. It holds no per-call state and is safe for
// concurrent use. Retries, timeouts and cancellation belong to the supplied
// http.Client and the caller's context.
type Client struct {
	httpClient       *http.Client
	signer           auth.Signer
	creds            *auth.Credentials
	now              func() time.Time
	logger           *zap.Logger
	unsignedFallback bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCredentials makes the client sign every request with the given
// credentials, scoped to the execute-api service.
func WithCredentials(creds auth.Credentials) Option {
	return func(c *Client) {
		c.creds = &creds
	}
}

// WithSigner supplies a pre-built signer. Takes precedence over WithCredentials.
func WithSigner(s auth.Signer) Option {
	return func(c *Client) {
		c.signer = s
	}
}

// WithClock replaces the signing clock. Only meaningful together with
// WithCredentials.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithUnsignedFallback sends the request unsigned when signing fails, instead
// of failing the call. The downgrade is logged at Warn level. Without this
// option a signing failure aborts the call.
func WithUnsignedFallback() Option {
	return func(c *Client) {
		c.unsignedFallback = true
	}
}

// NewClient creates a Client. Unless credentials or a signer are configured,
// requests are dispatched unsigned.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.signer == nil && c.creds != nil {
		var sopts []sigv4.Option
		if c.now != nil {
			sopts = append(sopts, sigv4.WithClock(c.now))
		}
		signer, err := sigv4.NewSigner(*c.creds, sopts...)
		if err != nil {
			return nil, err
		}
		c.signer = signer
	}
	return c, nil
}

// Do builds, signs (when a signer is configured) and dispatches r, then feeds
// the response body to decode. It returns nil or exactly one *Error; there is
// no retry and no partial success.
func (c *Client) Do(ctx context.Context, r Request, decode Decoder) error {
	requestID := uuid.NewString()

	req, err := r.build(ctx)
	if err != nil {
		c.logger.Debug("request build failed", zap.String("request_id", requestID), zap.Error(err))
		return err
	}

	if c.signer != nil {
		signed, err := c.signer.Sign(req)
		switch {
		case err == nil:
			req = signed
		case c.unsignedFallback:
			c.logger.Warn("dispatching request unsigned after signing failure",
				zap.String("request_id", requestID), zap.Error(err))
		default:
			return wrapError(err, KindInvalidURL, "request signing failed")
		}
	}

	c.logger.Debug("dispatching request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapError(err, KindNetworkError, "transport failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err, KindNetworkError, "reading response body failed")
	}

	c.logger.Debug("response received",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	if decode == nil {
		return nil
	}
	if err := decode(body); err != nil {
		return wrapError(err, KindInvalidResponse, fmt.Sprintf("cannot decode response (status %d)", resp.StatusCode))
	}
	return nil
}

// DoAsync runs Do in a goroutine. The returned channel delivers the single
// outcome exactly once and is closed afterwards.
func (c *Client) DoAsync(ctx context.Context, r Request, decode Decoder) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- c.Do(ctx, r, decode)
	}()
	return out
}
