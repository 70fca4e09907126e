package qqapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"qqmusicmcp/internal/domain"
)

const albumCoverTemplate = "https://y.qq.com/music/photo_new/T002R%dx%dM000%s.jpg"

type albumResponse struct {
	Code int `json:"code"`
	Data struct {
		ID           int64           `json:"id"`
		Mid          string          `json:"mid"`
		Name         string          `json:"name"`
		ADate        string          `json:"aDate"`
		Desc         string          `json:"desc"`
		TotalSongNum int             `json:"total_song_num"`
		List         []albumSongItem `json:"list"`
	} `json:"data"`
}

type albumSongItem struct {
	SongID    int64        `json:"songid"`
	SongMid   string       `json:"songmid"`
	SongName  string       `json:"songname"`
	AlbumID   int64        `json:"albumid"`
	AlbumMid  string       `json:"albummid"`
	AlbumName string       `json:"albumname"`
	Interval  int          `json:"interval"`
	Singer    []wireSinger `json:"singer"`
}

func (c *Client) fetchAlbum(ctx context.Context, op, albumMid string) (albumResponse, error) {
	params := url.Values{}
	params.Set("albummid", albumMid)
	params.Set("format", "json")
	params.Set("inCharset", "utf8")
	params.Set("outCharset", "utf-8")

	var resp albumResponse
	if err := c.getJSON(ctx, op, c.endpoints.Album, params, "", &resp); err != nil {
		return albumResponse{}, err
	}
	if resp.Code != 0 {
		return albumResponse{}, domain.E(domain.CodeUpstream, op, "upstream code "+strconv.Itoa(resp.Code), nil)
	}
	if resp.Data.Mid == "" {
		return albumResponse{}, domain.E(domain.CodeNotFound, op, "album "+albumMid+" not found", nil)
	}
	return resp, nil
}

// AlbumDetail fetches and reshapes the album metadata. The album payload
// carries no singer field of its own, so singers come from the first track.
func (c *Client) AlbumDetail(ctx context.Context, albumMid string) (domain.Album, error) {
	const op = "album_detail"

	resp, err := c.fetchAlbum(ctx, op, albumMid)
	if err != nil {
		return domain.Album{}, err
	}

	var singers []domain.Singer
	if len(resp.Data.List) > 0 {
		singers = singersFromWire(resp.Data.List[0].Singer)
	}
	songCount := resp.Data.TotalSongNum
	if songCount == 0 {
		songCount = len(resp.Data.List)
	}

	return domain.Album{
		ID:          resp.Data.ID,
		Mid:         resp.Data.Mid,
		Name:        resp.Data.Name,
		Singers:     singers,
		PublishDate: resp.Data.ADate,
		Desc:        resp.Data.Desc,
		SongCount:   songCount,
	}, nil
}

// AlbumSongs fetches the album's track list.
func (c *Client) AlbumSongs(ctx context.Context, albumMid string) ([]domain.Song, error) {
	const op = "album_songs"

	resp, err := c.fetchAlbum(ctx, op, albumMid)
	if err != nil {
		return nil, err
	}

	songs := make([]domain.Song, 0, len(resp.Data.List))
	for _, item := range resp.Data.List {
		songs = append(songs, domain.Song{
			ID:       item.SongID,
			Mid:      item.SongMid,
			Name:     item.SongName,
			AlbumID:  item.AlbumID,
			AlbumMid: item.AlbumMid,
			Album:    item.AlbumName,
			Singers:  singersFromWire(item.Singer),
			Duration: item.Interval,
		})
	}
	return songs, nil
}

// AlbumCoverURL builds the cover image URL for an album mid. Pure string
// construction from the documented template; no network call.
func AlbumCoverURL(albumMid string, pixels int) string {
	if pixels <= 0 {
		pixels = domain.CoverMedium.Pixels()
	}
	return fmt.Sprintf(albumCoverTemplate, pixels, pixels, albumMid)
}
