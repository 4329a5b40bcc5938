package awsclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jayantasamaddar/go-awsclient/auth"
)

var testCredentials = auth.Credentials{
	AccessKeyID:     "AKIDEXAMPLE",
	SecretAccessKey: "secret",
	Region:          "us-east-1",
}

func frozenClock() time.Time {
	return time.Date(2015, time.August, 30, 12, 36, 0, 0, time.UTC)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// failingSigner always refuses to sign.
type failingSigner struct{}

func (failingSigner) Sign(req *http.Request) (*http.Request, error) {
	return req, errors.New("signing refused")
}

func Test_Do_JSONDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"gizmo","count":3}`))
	}))
	defer srv.Close()

	client, err := NewClient(WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err = client.Do(context.Background(), Get(srv.URL+"/v1/items"), JSON(&out))
	require.NoError(t, err)
	assert.Equal(t, "gizmo", out.Name)
	assert.Equal(t, 3, out.Count)
}

func Test_Do_RawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	client, err := NewClient()
	require.NoError(t, err)

	var out string
	require.NoError(t, client.Do(context.Background(), Get(srv.URL+"/ping"), RawText(&out)))
	assert.Equal(t, "pong", out)
}

func Test_Do_InvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not json"))
	}))
	defer srv.Close()

	client, err := NewClient()
	require.NoError(t, err)

	var out struct{}
	err = client.Do(context.Background(), Get(srv.URL), JSON(&out))
	assert.True(t, IsKind(err, KindInvalidResponse), "got %v", err)
}

func Test_Do_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient()
	require.NoError(t, err)

	err = client.Do(context.Background(), Get(url), Discard())
	assert.True(t, IsKind(err, KindNetworkError), "got %v", err)
}

func Test_Do_InvalidURL_NoNetworkCall(t *testing.T) {
	calls := 0
	client, err := NewClient(WithHTTPClient(&http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("should not be reached")
		}),
	}))
	require.NoError(t, err)

	for _, endpoint := range []string{"", "://missing-scheme", "ftp://example.com", "https://"} {
		err := client.Do(context.Background(), Get(endpoint), Discard())
		assert.True(t, IsKind(err, KindInvalidURL), "endpoint %q: got %v", endpoint, err)
	}
	assert.Zero(t, calls)
}

func Test_Do_Signed(t *testing.T) {
	var authz, amzDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		amzDate = r.Header.Get("X-Amz-Date")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(WithCredentials(testCredentials), WithClock(frozenClock))
	require.NoError(t, err)

	require.NoError(t, client.Do(context.Background(), Get(srv.URL+"/v1/items").WithQuery("foo", "bar"), Discard()))

	assert.Equal(t, "20150830T123600Z", amzDate)
	assert.True(t, strings.HasPrefix(authz,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/execute-api/aws4_request, SignedHeaders="), authz)
	assert.Contains(t, authz, "host;x-amz-date")
}

func Test_Do_Idempotent(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewClient(WithCredentials(testCredentials), WithClock(frozenClock))
	require.NoError(t, err)

	r := Get(srv.URL + "/v1/items").WithQuery("foo", "bar").WithHeader("X-Custom-Token", "abc")
	require.NoError(t, client.Do(context.Background(), r, Discard()))
	require.NoError(t, client.Do(context.Background(), r, Discard()))

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])
}

func Test_Do_SigningFailureAbortsByDefault(t *testing.T) {
	calls := 0
	client, err := NewClient(
		WithSigner(failingSigner{}),
		WithHTTPClient(&http.Client{
			Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
				calls++
				return nil, errors.New("should not be reached")
			}),
		}),
	)
	require.NoError(t, err)

	err = client.Do(context.Background(), Get("https://api.example.com/v1/items"), Discard())
	assert.True(t, IsKind(err, KindInvalidURL), "got %v", err)
	assert.Zero(t, calls)
}

func Test_Do_UnsignedFallback(t *testing.T) {
	var authz string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewClient(
		WithSigner(failingSigner{}),
		WithUnsignedFallback(),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)

	require.NoError(t, client.Do(context.Background(), Get(srv.URL), Discard()))
	assert.Empty(t, authz)
}

func Test_DoAsync_SingleCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewClient()
	require.NoError(t, err)

	out := client.DoAsync(context.Background(), Get(srv.URL), Discard())

	result, ok := <-out
	require.True(t, ok)
	assert.NoError(t, result)

	_, ok = <-out
	assert.False(t, ok, "channel must be closed after the single completion")
}

func Test_NewClient_InvalidCredentials(t *testing.T) {
	_, err := NewClient(WithCredentials(auth.Credentials{}))
	assert.Error(t, err)
}

func Test_Do_POSTWithJSONBody(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(WithCredentials(testCredentials), WithClock(frozenClock))
	require.NoError(t, err)

	r, err := Post(srv.URL + "/v1/items").WithJSONBody(map[string]string{"name": "gizmo"})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Do(context.Background(), r, JSON(&out)))
	assert.True(t, out.OK)
	assert.Equal(t, `{"name":"gizmo"}`, received)
}
