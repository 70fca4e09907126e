package qqapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a Client whose endpoints all point at the fixture
// server.
func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.Endpoints = Endpoints{
		Search:   server.URL + "/search",
		Musicu:   server.URL + "/musicu",
		Lyric:    server.URL + "/lyric",
		Album:    server.URL + "/album",
		Playlist: server.URL + "/playlist",
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	return NewClient(opts)
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestUnwrapJSONP(t *testing.T) {
	plain := []byte(`{"code":0}`)
	assert.Equal(t, plain, unwrapJSONP(plain))

	wrapped := []byte(`callback({"code":0})`)
	assert.JSONEq(t, `{"code":0}`, string(unwrapJSONP(wrapped)))

	wrapped = []byte("MusicJsonCallback({\"code\":0,\"data\":{\"x\":\"(y)\"}});")
	assert.JSONEq(t, `{"code":0,"data":{"x":"(y)"}}`, string(unwrapJSONP(wrapped)))

	garbage := []byte("not json at all")
	assert.Equal(t, garbage, unwrapJSONP(garbage))
}

func TestNewGUIDShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		guid := newGUID()
		require.Regexp(t, regexp.MustCompile(`^[1-9]\d{9}$`), guid)
	}
}

func TestUinExtraction(t *testing.T) {
	client := NewClient(Options{Cookie: "pgv=x; uin=123456789; qm_keyst=abc"})
	assert.Equal(t, "123456789", client.uin)
	assert.True(t, client.Authenticated())

	anonymous := NewClient(Options{})
	assert.Equal(t, "0", anonymous.uin)
	assert.False(t, anonymous.Authenticated())
}

func TestRequestSendsStandardHeaders(t *testing.T) {
	var gotCookie, gotReferer, gotOrigin string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotReferer = r.Header.Get("Referer")
		gotOrigin = r.Header.Get("Origin")
		_, _ = w.Write([]byte(`{"code":0,"lyric":"aGVsbG8="}`))
	})
	client := newTestClient(t, handler, Options{Cookie: "uin=42;"})

	_, err := client.Lyric(context.Background(), "mid1")
	require.NoError(t, err)

	assert.Equal(t, "uin=42;", gotCookie)
	assert.Equal(t, lyricReferer, gotReferer)
	assert.Equal(t, defaultOrigin, gotOrigin)
}

func TestRequestUpstreamStatusClassification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), Options{})

	_, err := client.SongDetail(context.Background(), "mid1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAVAILABLE")

	client = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), Options{})

	_, err = client.SongDetail(context.Background(), "mid1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM")
}

func TestRequestMalformedBody(t *testing.T) {
	client := newTestClient(t, jsonHandler("<html>rate limited</html>"), Options{})
	_, err := client.SongDetail(context.Background(), "mid1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM")
}
