package qqapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qqmusicmcp/internal/domain"
)

func vkeyHandler(t *testing.T, hits *atomic.Int64, respond func(mid string) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		var payload vkeyRequest
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("data")), &payload))
		require.Len(t, payload.Req0.Param.SongMid, 1)
		_, _ = w.Write([]byte(respond(payload.Req0.Param.SongMid[0])))
	})
}

func vkeySuccess(mid string) string {
	return fmt.Sprintf(`{"code":0,"req_0":{"data":{"sip":["https://dl.example.com/"],"midurlinfo":[{"songmid":%q,"purl":"%s.mp3?vkey=abc","filesize":12345}]}}}`, mid, mid)
}

func TestSongURLSuccess(t *testing.T) {
	client := newTestClient(t, vkeyHandler(t, nil, vkeySuccess), Options{})

	songURL, err := client.SongURL(context.Background(), "mid-a", domain.Quality128)
	require.NoError(t, err)

	assert.Equal(t, "mid-a", songURL.Mid)
	assert.Equal(t, "https://dl.example.com/mid-a.mp3?vkey=abc", songURL.URL)
	assert.Equal(t, domain.Quality128, songURL.Quality)
	assert.Equal(t, int64(12345), songURL.Size)
}

func TestSongURLVIPWithoutCookie(t *testing.T) {
	var hits atomic.Int64
	client := newTestClient(t, vkeyHandler(t, &hits, vkeySuccess), Options{})

	for _, quality := range []domain.QualityCode{domain.Quality320, domain.QualityFLAC, domain.QualityHiRes, domain.QualityAtmos} {
		_, err := client.SongURL(context.Background(), "mid-a", quality)
		require.Error(t, err, string(quality))
		assert.Equal(t, domain.CodeUnauthenticated, domain.CodeFrom(err))
	}
	// The gate rejects before any network call.
	assert.Equal(t, int64(0), hits.Load())
}

func TestSongURLLoginFlagWithCookie(t *testing.T) {
	var gotLoginFlag int
	var gotUin string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload vkeyRequest
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("data")), &payload))
		gotLoginFlag = payload.Req0.Param.LoginFlag
		gotUin = payload.Req0.Param.Uin
		_, _ = w.Write([]byte(vkeySuccess("mid-a")))
	})
	client := newTestClient(t, handler, Options{Cookie: "uin=555; qm_keyst=k"})

	_, err := client.SongURL(context.Background(), "mid-a", domain.QualityFLAC)
	require.NoError(t, err)
	assert.Equal(t, 1, gotLoginFlag)
	assert.Equal(t, "555", gotUin)
}

func TestSongURLEmptyPurlIsUnavailable(t *testing.T) {
	client := newTestClient(t, vkeyHandler(t, nil, func(mid string) string {
		return fmt.Sprintf(`{"code":0,"req_0":{"data":{"sip":["https://dl.example.com/"],"midurlinfo":[{"songmid":%q,"purl":""}]}}}`, mid)
	}), Options{})

	_, err := client.SongURL(context.Background(), "mid-a", domain.Quality128)
	require.Error(t, err)
	assert.Equal(t, domain.CodeUnavailable, domain.CodeFrom(err))
}

func TestSongURLMissingEntryIsNotFound(t *testing.T) {
	client := newTestClient(t, vkeyHandler(t, nil, func(string) string {
		return `{"code":0,"req_0":{"data":{"sip":[],"midurlinfo":[]}}}`
	}), Options{})

	_, err := client.SongURL(context.Background(), "ghost", domain.Quality128)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeFrom(err))
}

func TestBatchSongURLsPartialFailure(t *testing.T) {
	client := newTestClient(t, vkeyHandler(t, nil, func(mid string) string {
		if mid == "bad" {
			return `{"code":0,"req_0":{"data":{"sip":[],"midurlinfo":[]}}}`
		}
		return vkeySuccess(mid)
	}), Options{})

	results := client.BatchSongURLs(context.Background(), []string{"good-1", "bad", "good-2"}, domain.Quality128, 2)
	require.Len(t, results, 3)

	// Order mirrors the input.
	assert.Equal(t, "good-1", results[0].Mid)
	assert.Equal(t, "bad", results[1].Mid)
	assert.Equal(t, "good-2", results[2].Mid)

	require.NotNil(t, results[0].URL)
	assert.Equal(t, "https://dl.example.com/good-1.mp3?vkey=abc", results[0].URL.URL)

	require.Error(t, results[1].Err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeFrom(results[1].Err))

	// The sibling failure must not remove good-2's success.
	require.NotNil(t, results[2].URL)
	assert.Equal(t, "https://dl.example.com/good-2.mp3?vkey=abc", results[2].URL.URL)
}

func TestBatchSongURLsBoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)

		var payload vkeyRequest
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("data")), &payload))
		_, _ = w.Write([]byte(vkeySuccess(payload.Req0.Param.SongMid[0])))
	})
	client := newTestClient(t, handler, Options{})

	mids := make([]string, 10)
	for i := range mids {
		mids[i] = fmt.Sprintf("mid-%d", i)
	}
	results := client.BatchSongURLs(context.Background(), mids, domain.Quality128, 2)

	require.Len(t, results, 10)
	for _, res := range results {
		require.NoError(t, res.Err)
	}
	assert.LessOrEqual(t, peak.Load(), int64(2))
}
