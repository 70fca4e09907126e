package qqapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"qqmusicmcp/internal/domain"
)

type songDetailRequest struct {
	SongInfo struct {
		Method string `json:"method"`
		Module string `json:"module"`
		Param  struct {
			SongMid string `json:"song_mid"`
		} `json:"param"`
	} `json:"songinfo"`
}

type songDetailResponse struct {
	Code     int `json:"code"`
	SongInfo struct {
		Data struct {
			TrackInfo struct {
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
				File struct {
					Size96AAC  int64 `json:"size_96aac"`
					Size128MP3 int64 `json:"size_128mp3"`
					Size320MP3 int64 `json:"size_320mp3"`
					SizeFLAC   int64 `json:"size_flac"`
					SizeAPE    int64 `json:"size_ape"`
					SizeHiRes  int64 `json:"size_hires"`
					SizeDolby  int64 `json:"size_dolby"`
				} `json:"file"`
			} `json:"track_info"`
		} `json:"data"`
	} `json:"songinfo"`
}

// SongDetail fetches and reshapes the track metadata for a song mid.
func (c *Client) SongDetail(ctx context.Context, songMid string) (domain.Song, error) {
	const op = "song_detail"

	var payload songDetailRequest
	payload.SongInfo.Method = "get_song_detail_yqq"
	payload.SongInfo.Module = "music.pf_song_detail_svr"
	payload.SongInfo.Param.SongMid = songMid

	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Song{}, domain.E(domain.CodeInternal, op, "encode request", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("data", string(raw))

	var resp songDetailResponse
	if err := c.getJSON(ctx, op, c.endpoints.Musicu, params, "", &resp); err != nil {
		return domain.Song{}, err
	}
	if resp.Code != 0 {
		return domain.Song{}, domain.E(domain.CodeUpstream, op, "upstream code "+strconv.Itoa(resp.Code), nil)
	}

	track := resp.SongInfo.Data.TrackInfo
	if track.Mid == "" {
		return domain.Song{}, domain.E(domain.CodeNotFound, op, "song "+songMid+" not found", nil)
	}

	return domain.Song{
		ID:       track.ID,
		Mid:      track.Mid,
		Name:     track.Name,
		AlbumID:  track.Album.ID,
		AlbumMid: track.Album.Mid,
		Album:    track.Album.Name,
		Singers:  singersFromWire(track.Singer),
		Duration: track.Interval,
		PayPlay:  track.Pay.PayPlay,
		File: &domain.SongFile{
			SizeM4A:   track.File.Size96AAC,
			Size128:   track.File.Size128MP3,
			Size320:   track.File.Size320MP3,
			SizeFLAC:  track.File.SizeFLAC,
			SizeAPE:   track.File.SizeAPE,
			SizeHiRes: track.File.SizeHiRes,
			SizeAtmos: track.File.SizeDolby,
		},
	}, nil
}
