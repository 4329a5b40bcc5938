package awsclient

import (
	"encoding/json"
	"fmt"
)

// A Decoder turns a raw response body into the caller's declared result.
// Decoding strategy is chosen explicitly by the caller rather than inferred
// from the result type at runtime.
type Decoder func(body []byte) error

// JSON decodes the response body into v.
func JSON(v any) Decoder {
	return func(body []byte) error {
		if len(body) == 0 {
			return fmt.Errorf("empty response body")
		}
		return json.Unmarshal(body, v)
	}
}

// RawText stores the response body into s verbatim, without decoding.
func RawText(s *string) Decoder {
	return func(body []byte) error {
		*s = string(body)
		return nil
	}
}

// Discard ignores the response body.
func Discard() Decoder {
	return func([]byte) error { return nil }
}
