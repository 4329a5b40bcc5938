package auth

import "net/http"

// Signer interface to be implemented by any signing mechanism.
// Sign returns a signed copy of the request; the input request is not mutated.
type Signer interface {
	Sign(req *http.Request) (*http.Request, error)
}

// Verifier interface to be implemented by any verification mechanism.
type Verifier interface {
	VerifySignature(req *http.Request) error
}
