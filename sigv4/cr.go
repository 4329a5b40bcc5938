package sigv4

import (
	"net/http"
	"sort"
	"strings"
)

// # (1) Create the Canonical Request
//
// The `CanonicalRequest` is built out of 6 parts, joined by a new line
// character ("\n") after each part.
//
// (a) `HTTPMethod`: The HTTP method in upper case, such as GET or POST.
//
// (b) `CanonicalURI`: The path component of the URL as it will appear on the
// wire, without the query string. If the absolute path is empty, use a forward
// slash character "/".
//
// (c) `CanonicalQueryString`: The raw query string exactly as the caller built
// it. It is not re-encoded and not re-sorted: the signature must cover the
// bytes that are actually transmitted. If the URI does not include a '?', the
// canonical query string is an empty string ("").
//
// (d) `CanonicalHeaders`: A list of request headers with their values, one per
// line, sorted lexicographically by the lowercased name:
//
//	Lowercase(<HeaderName>)+":"+Trim(<value>)
//
// Multiple values for one header are comma separated. A single empty line
// terminates the block.
//
// (e) `SignedHeaders`: An alphabetically sorted, semicolon-separated list of
// the lowercase request header names from (d). The same list is reported in
// the final `Authorization` header.
//
// (f) `HashedPayload`: Hex(SHA256Hash(<payload>)), using lowercase hexadecimal
// characters. If there is no payload in the request, you compute a hash of the
// empty string:
//
//	Hex(SHA256Hash(""))
//
// canonicalRequest returns the joined string and the signed-header list.
func canonicalRequest(req *http.Request, payloadHash string) (cr string, signedHeaders string) {
	ch, sh := canonicalHeaders(req.Header)

	path := req.URL.EscapedPath()
	if path == "" {
		path = "/"
	}

	return strings.Join([]string{
		strings.ToUpper(req.Method),
		path,
		req.URL.RawQuery,
		ch,
		"",
		sh,
		payloadHash,
	}, "\n"), sh
}

// canonicalHeaders returns the canonical header block (d) and the signed-header
// list (e) as two values.
func canonicalHeaders(h http.Header) (canonical, signed string) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		values := h.Values(name)
		lines = append(lines, name+":"+strings.TrimSpace(strings.Join(values, ",")))
	}
	return strings.Join(lines, "\n"), strings.Join(names, ";")
}
