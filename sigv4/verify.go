package sigv4

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jayantasamaddar/go-awsclient/auth"
	"github.com/jayantasamaddar/go-awsclient/utils"
)

// Errors
const (
	ERROR_INCORRECT_FORMAT_HEADER = "incorrectly formatted Authorization header"
	ERROR_INCORRECT_ALGORITHM     = "incorrect algorithm found"
	ERROR_INCORRECT_SERVICE       = "credential scoped to an unsupported service"
	ERROR_MISSING_DATE_HEADER     = "missing or mismatched X-Amz-Date header"
	ERROR_SIGNATURE_MISMATCH      = "computed signature does not match received signature"
)

// All components that make up the `Authorization` header.
type AuthHeader struct {
	Algorithm     string
	AccessKeyID   string
	Date          string // Format: YYYYMMDD
	Region        string
	Service       string
	SignedHeaders []string
	Signature     string
}

// `fmt.Stringer` implementation. Reassembles the header in the signer's format.
func (h *AuthHeader) String() string {
	return fmt.Sprintf("%s Credential=%s/%s/%s/%s/%s, SignedHeaders=%s, Signature=%s",
		h.Algorithm,
		h.AccessKeyID, h.Date, h.Region, h.Service, TerminationString,
		strings.Join(h.SignedHeaders, ";"),
		h.Signature,
	)
}

// ParseAuthHeader splits an `Authorization` header value into its components.
// Both `, ` and `,` are accepted as part separators.
func ParseAuthHeader(str string) (*AuthHeader, error) {
	algorithm, rest, found := strings.Cut(str, " ")
	if !found {
		return nil, fmt.Errorf("%s", ERROR_INCORRECT_FORMAT_HEADER)
	}
	h := &AuthHeader{Algorithm: algorithm}

	parts := strings.Split(rest, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%s", ERROR_INCORRECT_FORMAT_HEADER)
	}

	for _, part := range parts {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("%s", ERROR_INCORRECT_FORMAT_HEADER)
		}
		switch name {
		case "Credential":
			credentialValues := strings.Split(value, "/")
			if len(credentialValues) != 5 || credentialValues[4] != TerminationString {
				return nil, fmt.Errorf("%s: Credential format error", ERROR_INCORRECT_FORMAT_HEADER)
			}
			h.AccessKeyID = credentialValues[0]
			h.Date = credentialValues[1]
			h.Region = credentialValues[2]
			h.Service = credentialValues[3]
		case "SignedHeaders":
			h.SignedHeaders = strings.Split(value, ";")
		case "Signature":
			h.Signature = value
		default:
			return nil, fmt.Errorf("%s: unknown part %q", ERROR_INCORRECT_FORMAT_HEADER, name)
		}
	}

	if h.AccessKeyID == "" || len(h.SignedHeaders) == 0 || h.Signature == "" {
		return nil, fmt.Errorf("%s", ERROR_INCORRECT_FORMAT_HEADER)
	}
	return h, nil
}

// SecretResolver maps an access key ID to its secret access key. Intended to be
// supplied server-side, where the secret store lives.
type SecretResolver func(ctx context.Context, accessKeyID string) (string, error)

// Verifier validates requests signed by a `SigV4` signer. Usually deployed
// server-side.
type Verifier struct {
	resolve SecretResolver
}

// Constructor to create a Verifier Object.
func NewVerifier(resolve SecretResolver) (*Verifier, error) {
	if resolve == nil {
		return nil, fmt.Errorf("Mandatory field not specified: resolve")
	}
	return &Verifier{resolve: resolve}, nil
}

var _ auth.Verifier = (*Verifier)(nil)

// VerifySignature recomputes the signature of req from the signed headers
// reported in its Authorization header and compares it, in constant time,
// against the received signature.
func (v *Verifier) VerifySignature(req *http.Request) error {
	h, err := ParseAuthHeader(req.Header.Get("Authorization"))
	if err != nil {
		return err
	}
	if h.Algorithm != Algorithm {
		return fmt.Errorf("%s", ERROR_INCORRECT_ALGORITHM)
	}
	if h.Service != ServiceName {
		return fmt.Errorf("%s: %s", ERROR_INCORRECT_SERVICE, h.Service)
	}

	date := req.Header.Get(DateHeader)
	if len(date) < len(ShortTimeFormat) || date[:len(ShortTimeFormat)] != h.Date {
		return fmt.Errorf("%s", ERROR_MISSING_DATE_HEADER)
	}

	secret, err := v.resolve(req.Context(), h.AccessKeyID)
	if err != nil || secret == "" {
		return fmt.Errorf("failed to retrieve secret for %s: %v", h.AccessKeyID, err)
	}

	// The body gets read for the payload hash and needs to be reassigned.
	var body []byte
	if req.Body != nil {
		if body, err = io.ReadAll(req.Body); err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	cr, err := verifyCanonicalRequest(req, h.SignedHeaders, utils.Hash(body))
	if err != nil {
		return err
	}

	key, err := signingKey(secret, h.Date, h.Region)
	if err != nil {
		return err
	}
	computed, err := generateSignature(key, stringToSign(date, h.Region, cr))
	if err != nil {
		return err
	}

	if !hmac.Equal([]byte(computed), []byte(h.Signature)) {
		return fmt.Errorf("%s", ERROR_SIGNATURE_MISMATCH)
	}
	return nil
}

// verifyCanonicalRequest rebuilds the canonical request covering exactly the
// signed headers the client reported, in their reported order.
func verifyCanonicalRequest(req *http.Request, signedHeaders []string, payloadHash string) (string, error) {
	lines := make([]string, 0, len(signedHeaders))
	for _, name := range signedHeaders {
		values := req.Header.Values(name)
		if name == "host" && len(values) == 0 {
			values = []string{req.Host}
		}
		if len(values) == 0 {
			return "", fmt.Errorf("signed header %q not present on request", name)
		}
		lines = append(lines, name+":"+strings.TrimSpace(strings.Join(values, ",")))
	}

	path := req.URL.EscapedPath()
	if path == "" {
		path = "/"
	}

	return strings.Join([]string{
		strings.ToUpper(req.Method),
		path,
		req.URL.RawQuery,
		strings.Join(lines, "\n"),
		"",
		strings.Join(signedHeaders, ";"),
		payloadHash,
	}, "\n"), nil
}

type secretRetrievalResponse struct {
	SecretAccessKey string `json:"secret_access_key"`
}

// NewHTTPSecretResolver returns a SecretResolver that POSTs
// `{"access_key_id": ...}` to url and expects `{"secret_access_key": ...}`
// back, retrying up to 3 times with exponential backoff.
func NewHTTPSecretResolver(url string) SecretResolver {
	const maxAttempts = 3
	client := &http.Client{Timeout: 15 * time.Second}

	return func(ctx context.Context, accessKeyID string) (string, error) {
		var lastErr error
		for attempt := 0; attempt < maxAttempts; attempt++ {
			if attempt > 0 {
				delay := time.Duration(1<<attempt) * time.Second
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}

			secret, err := retrieveSecret(ctx, client, url, accessKeyID)
			if err == nil {
				return secret, nil
			}
			lastErr = err
		}
		return "", fmt.Errorf("exceeded maximum attempts: %w", lastErr)
	}
}

// retrieveSecret makes one attempt to retrieve the secret access key, observing
// the provided context's deadline.
func retrieveSecret(ctx context.Context, client *http.Client, url, accessKeyID string) (string, error) {
	payload, err := json.Marshal(map[string]string{"access_key_id": accessKeyID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}

	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(res.Body) // Ignoring error on purpose, main error is from status code
		return "", fmt.Errorf("non-OK HTTP status: %d, body: %s", res.StatusCode, string(bodyBytes))
	}

	var resp secretRetrievalResponse
	if err = json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", err
	}
	return resp.SecretAccessKey, nil
}
