package awsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Request describes one HTTP call before dispatch: method, endpoint, query
// parameters, headers and an optional body. The value is immutable; every
// With* method returns a copy, so a Request can be shared and reused and the
// signature always covers exactly what is transmitted.
type Request struct {
	method   string
	endpoint string
	query    url.Values
	headers  http.Header
	body     []byte
}

// Get describes a GET request to endpoint.
func Get(endpoint string) Request {
	return Request{method: http.MethodGet, endpoint: endpoint}
}

// Post describes a POST request to endpoint.
func Post(endpoint string) Request {
	return Request{method: http.MethodPost, endpoint: endpoint}
}

// WithQuery returns a copy with an added query parameter.
func (r Request) WithQuery(key, value string) Request {
	q := make(url.Values, len(r.query)+1)
	for k, v := range r.query {
		q[k] = append([]string(nil), v...)
	}
	q.Add(key, value)
	r.query = q
	return r
}

// WithHeader returns a copy with an added header.
func (r Request) WithHeader(key, value string) Request {
	h := make(http.Header, len(r.headers)+1)
	for k, v := range r.headers {
		h[k] = append([]string(nil), v...)
	}
	h.Add(key, value)
	r.headers = h
	return r
}

// WithBody returns a copy carrying raw body bytes and their content type.
func (r Request) WithBody(contentType string, body []byte) Request {
	r.body = append([]byte(nil), body...)
	if contentType != "" {
		r = r.WithHeader("Content-Type", contentType)
	}
	return r
}

// WithJSONBody returns a copy carrying v marshalled as a JSON body with
// `application/json` content type.
func (r Request) WithJSONBody(v any) (Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return r, err
	}
	return r.WithBody("application/json", body), nil
}

// build assembles the transport request. Endpoint parse failures and
// unresolvable hosts report KindInvalidURL before any network activity.
func (r Request) build(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return nil, wrapError(err, KindInvalidURL, "cannot parse endpoint")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(KindInvalidURL, "endpoint scheme must be http or https")
	}
	if u.Host == "" {
		return nil, newError(KindInvalidURL, "endpoint has no host")
	}

	if len(r.query) > 0 {
		encoded := r.query.Encode()
		if u.RawQuery != "" {
			u.RawQuery += "&" + encoded
		} else {
			u.RawQuery = encoded
		}
	}

	var body *bytes.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.method, u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.method, u.String(), nil)
	}
	if err != nil {
		return nil, wrapError(err, KindInvalidURL, "cannot build request")
	}

	for k, values := range r.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}
