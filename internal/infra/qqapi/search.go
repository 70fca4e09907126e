package qqapi

import (
	"context"
	"net/url"
	"strconv"

	"qqmusicmcp/internal/domain"
)

type searchResponse struct {
	Code int `json:"code"`
	Data struct {
		Song struct {
			TotalNum int              `json:"totalnum"`
			List     []searchSongItem `json:"list"`
		} `json:"song"`
	} `json:"data"`
}

type searchSongItem struct {
	ID       int64  `json:"id"`
	Mid      string `json:"mid"`
	Name     string `json:"name"`
	Interval int    `json:"interval"`
	Album    struct {
		ID   int64  `json:"id"`
		Mid  string `json:"mid"`
		Name string `json:"name"`
	} `json:"album"`
	Singer []wireSinger `json:"singer"`
	Pay    struct {
		PayPlay int `json:"pay_play"`
	} `json:"pay"`
}

type wireSinger struct {
	ID   int64  `json:"id"`
	Mid  string `json:"mid"`
	Name string `json:"name"`
}

func singersFromWire(wire []wireSinger) []domain.Singer {
	singers := make([]domain.Singer, 0, len(wire))
	for _, s := range wire {
		singers = append(singers, domain.Singer{ID: s.ID, Mid: s.Mid, Name: s.Name})
	}
	return singers
}

// Search queries the upstream search endpoint and reshapes the song matches.
func (c *Client) Search(ctx context.Context, keyword string, searchType domain.SearchType, page, pageSize int) (domain.SearchResult, error) {
	const op = "search"

	if page <= 0 {
		page = domain.DefaultSearchPage
	}
	if pageSize <= 0 {
		pageSize = domain.DefaultSearchPageSize
	}

	params := url.Values{}
	params.Set("w", keyword)
	params.Set("p", strconv.Itoa(page))
	params.Set("n", strconv.Itoa(pageSize))
	params.Set("t", strconv.Itoa(searchType.Code()))
	params.Set("format", "json")
	params.Set("inCharset", "utf8")
	params.Set("outCharset", "utf-8")
	params.Set("new_json", "1")
	params.Set("aggr", "1")
	params.Set("cr", "1")
	params.Set("lossless", "0")

	var resp searchResponse
	if err := c.getJSON(ctx, op, c.endpoints.Search, params, "", &resp); err != nil {
		return domain.SearchResult{}, err
	}
	if resp.Code != 0 {
		return domain.SearchResult{}, domain.E(domain.CodeUpstream, op, "upstream code "+strconv.Itoa(resp.Code), nil)
	}

	songs := make([]domain.Song, 0, len(resp.Data.Song.List))
	for _, item := range resp.Data.Song.List {
		songs = append(songs, domain.Song{
			ID:       item.ID,
			Mid:      item.Mid,
			Name:     item.Name,
			AlbumID:  item.Album.ID,
			AlbumMid: item.Album.Mid,
			Album:    item.Album.Name,
			Singers:  singersFromWire(item.Singer),
			Duration: item.Interval,
			PayPlay:  item.Pay.PayPlay,
		})
	}

	return domain.SearchResult{
		Keyword:  keyword,
		Total:    resp.Data.Song.TotalNum,
		Page:     page,
		PageSize: pageSize,
		Songs:    songs,
	}, nil
}
