package qqapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"qqmusicmcp/internal/domain"
)

// flexInt64 decodes a JSON value that may be a number or a numeric string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt64(n)
	return nil
}

type playlistResponse struct {
	Code   int `json:"code"`
	CDList []struct {
		// dissid arrives as a bare number or a quoted string depending on
		// the upstream version.
		DissID   flexInt64 `json:"dissid"`
		DissName string `json:"dissname"`
		Logo     string `json:"logo"`
		Nick     string `json:"nick"`
		VisitNum int64  `json:"visitnum"`
		SongNum  int    `json:"songnum"`
		SongList []struct {
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
		} `json:"songlist"`
	} `json:"cdlist"`
}

// PlaylistDetail fetches a playlist's metadata together with its songs.
func (c *Client) PlaylistDetail(ctx context.Context, playlistID int64) (domain.Playlist, []domain.Song, error) {
	const op = "playlist_detail"

	params := url.Values{}
	params.Set("type", "1")
	params.Set("json", "1")
	params.Set("utf8", "1")
	params.Set("onlysong", "0")
	params.Set("disstid", strconv.FormatInt(playlistID, 10))
	params.Set("format", "json")
	params.Set("inCharset", "utf8")
	params.Set("outCharset", "utf-8")

	var resp playlistResponse
	if err := c.getJSON(ctx, op, c.endpoints.Playlist, params, "", &resp); err != nil {
		return domain.Playlist{}, nil, err
	}
	if resp.Code != 0 {
		return domain.Playlist{}, nil, domain.E(domain.CodeUpstream, op, "upstream code "+strconv.Itoa(resp.Code), nil)
	}
	if len(resp.CDList) == 0 {
		return domain.Playlist{}, nil, domain.E(domain.CodeNotFound, op,
			"playlist "+strconv.FormatInt(playlistID, 10)+" not found", nil)
	}

	cd := resp.CDList[0]
	playlist := domain.Playlist{
		ID:          int64(cd.DissID),
		Name:        cd.DissName,
		Cover:       cd.Logo,
		Creator:     cd.Nick,
		ListenCount: cd.VisitNum,
		SongCount:   cd.SongNum,
	}

	songs := make([]domain.Song, 0, len(cd.SongList))
	for _, item := range cd.SongList {
		songs = append(songs, domain.Song{
			ID:       item.ID,
			Mid:      item.Mid,
			Name:     item.Name,
			AlbumID:  item.Album.ID,
			AlbumMid: item.Album.Mid,
			Album:    item.Album.Name,
			Singers:  singersFromWire(item.Singer),
			Duration: item.Interval,
		})
	}
	return playlist, songs, nil
}
