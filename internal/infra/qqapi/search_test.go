package qqapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qqmusicmcp/internal/domain"
)

const searchFixture = `{
  "code": 0,
  "data": {
    "song": {
      "totalnum": 2,
      "list": [
        {
          "id": 101,
          "mid": "mid-a",
          "name": "Song A",
          "interval": 215,
          "album": {"id": 11, "mid": "alb-a", "name": "Album A"},
          "singer": [{"id": 1, "mid": "sng-1", "name": "Artist One"}],
          "pay": {"pay_play": 0}
        },
        {
          "id": 102,
          "mid": "mid-b",
          "name": "Song B",
          "interval": 180,
          "album": {"id": 12, "mid": "alb-b", "name": "Album B"},
          "singer": [
            {"id": 2, "mid": "sng-2", "name": "Artist Two"},
            {"id": 3, "mid": "sng-3", "name": "Artist Three"}
          ],
          "pay": {"pay_play": 1}
        }
      ]
    }
  }
}`

func TestSearchReshapesMatches(t *testing.T) {
	var gotQuery map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"w": r.URL.Query().Get("w"),
			"p": r.URL.Query().Get("p"),
			"n": r.URL.Query().Get("n"),
			"t": r.URL.Query().Get("t"),
		}
		_, _ = w.Write([]byte(searchFixture))
	})
	client := newTestClient(t, handler, Options{})

	result, err := client.Search(context.Background(), "hello", domain.SearchTypeSong, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"w": "hello", "p": "2", "n": "10", "t": "0"}, gotQuery)
	assert.Equal(t, "hello", result.Keyword)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 10, result.PageSize)

	require.Len(t, result.Songs, 2)
	want := domain.Song{
		ID:       101,
		Mid:      "mid-a",
		Name:     "Song A",
		AlbumID:  11,
		AlbumMid: "alb-a",
		Album:    "Album A",
		Singers:  []domain.Singer{{ID: 1, Mid: "sng-1", Name: "Artist One"}},
		Duration: 215,
	}
	if diff := cmp.Diff(want, result.Songs[0]); diff != "" {
		t.Fatalf("song mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Artist Two / Artist Three", result.Songs[1].SingerNames())
	assert.Equal(t, 1, result.Songs[1].PayPlay)
}

func TestSearchIsIdempotent(t *testing.T) {
	client := newTestClient(t, jsonHandler(searchFixture), Options{})

	first, err := client.Search(context.Background(), "x", domain.SearchTypeSong, 1, 20)
	require.NoError(t, err)
	second, err := client.Search(context.Background(), "x", domain.SearchTypeSong, 1, 20)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ between identical calls:\n%s", diff)
	}
}

func TestSearchDefaultsPaging(t *testing.T) {
	client := newTestClient(t, jsonHandler(searchFixture), Options{})

	result, err := client.Search(context.Background(), "x", domain.SearchTypeSong, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSearchPage, result.Page)
	assert.Equal(t, domain.DefaultSearchPageSize, result.PageSize)
}

func TestSearchUpstreamFailureCode(t *testing.T) {
	client := newTestClient(t, jsonHandler(`{"code":500}`), Options{})

	_, err := client.Search(context.Background(), "x", domain.SearchTypeSong, 1, 20)
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.CodeFrom(err))
}
