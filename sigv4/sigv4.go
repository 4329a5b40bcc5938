package sigv4

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jayantasamaddar/go-awsclient/auth"
	"github.com/jayantasamaddar/go-awsclient/utils"
)

// Fixed wire constants of the signing scheme.
const (
	// Algorithm tag embedded in the string-to-sign and the Authorization header.
	Algorithm = "AWS4-HMAC-SHA256"
	// ServiceName scopes every signature to API Gateway's execute-api service.
	ServiceName = "execute-api"
	// TerminationString ends the credential scope and the key-derivation ladder.
	TerminationString = "aws4_request"
	// TimeFormat is basic ISO-8601, UTC, second precision. E.g. 20200108T153000Z
	TimeFormat = "20060102T150405Z"
	// ShortTimeFormat is the date portion of TimeFormat.
	ShortTimeFormat = "20060102"
	// DateHeader carries the signing timestamp on the wire.
	DateHeader = "X-Amz-Date"
	// EmptyStringSHA256 is the payload hash of a request without a body.
	EmptyStringSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// Errors
const (
	ERROR_NO_HOST             = "request has no resolvable host"
	ERROR_NO_METHOD           = "request has no HTTP method"
	ERROR_MISSING_CREDENTIALS = "missing ACCESS_KEY_ID or SECRET_ACCESS_KEY"
)

// SigV4 signs HTTP requests with AWS Signature Version 4. Signing is a pure
// function of the request, the credentials and the clock: no state is kept
// between calls, so a single SigV4 value is safe for concurrent use.
type SigV4 struct {
	creds auth.Credentials
	now   func() time.Time
}

// Option configures a SigV4 signer.
type Option func(*SigV4)

// WithClock replaces the system clock. The signer formats whatever instant the
// clock returns as UTC, which makes signatures reproducible in tests.
func WithClock(now func() time.Time) Option {
	return func(s *SigV4) {
		if now != nil {
			s.now = now
		}
	}
}

// Constructor to create a Signer Object. The region defaults to
// `auth.DefaultRegion` when the credentials carry none.
func NewSigner(creds auth.Credentials, opts ...Option) (*SigV4, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%s", ERROR_MISSING_CREDENTIALS)
	}
	s := &SigV4{
		creds: creds.WithDefaultRegion(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ auth.Signer = (*SigV4)(nil)

// Sign produces a signed copy of req carrying the three additional headers
// `Host`, `X-Amz-Date` and `Authorization`. The input request is never mutated;
// on failure it is returned unchanged alongside the error so the caller decides
// the fallback policy.
func (s *SigV4) Sign(req *http.Request) (*http.Request, error) {
	if req.Method == "" {
		return req, fmt.Errorf("%s", ERROR_NO_METHOD)
	}
	host := req.Host
	if host == "" && req.URL != nil {
		host = req.URL.Host
	}
	if host == "" {
		return req, fmt.Errorf("%s", ERROR_NO_HOST)
	}

	signed := req.Clone(req.Context())
	if signed.Header == nil {
		// A hand-constructed request may carry no header map at all.
		signed.Header = make(http.Header)
	}
	body, err := requestBody(req, signed)
	if err != nil {
		return req, err
	}

	t := s.now().UTC()
	full := t.Format(TimeFormat)
	short := t.Format(ShortTimeFormat)

	// Host and X-Amz-Date participate in signing, so they are injected before
	// canonicalization.
	signed.Host = host
	signed.Header.Set("Host", host)
	signed.Header.Set(DateHeader, full)

	cr, signedHeaders := canonicalRequest(signed, utils.Hash(body))
	s2s := stringToSign(full, s.creds.Region, cr)

	key, err := signingKey(s.creds.SecretAccessKey, short, s.creds.Region)
	if err != nil {
		return req, err
	}
	signature, err := generateSignature(key, s2s)
	if err != nil {
		return req, err
	}

	signed.Header.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm,
		s.creds.AccessKeyID,
		credentialScope(short, s.creds.Region),
		signedHeaders,
		signature,
	))
	return signed, nil
}

// requestBody captures the request payload for hashing. A replayable body
// (bytes.Reader et al. set http.Request.GetBody) is re-materialized for the
// signed clone; a one-shot body is drained and both requests get fresh readers
// over the captured bytes.
func requestBody(req, signed *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		if signed.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
		return body, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	signed.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
