package qqapi

import (
	"context"
	"encoding/base64"
	"net/url"

	"qqmusicmcp/internal/domain"
)

type lyricResponse struct {
	Code  int    `json:"code"`
	Lyric string `json:"lyric"`
	Trans string `json:"trans"`
}

// Lyric fetches the lyric for a song mid. Both the lyric and its translation
// arrive base64-encoded; a payload that fails to decode is passed through
// verbatim, which is what the upstream web player does as well.
func (c *Client) Lyric(ctx context.Context, songMid string) (domain.Lyric, error) {
	const op = "lyric"

	params := url.Values{}
	params.Set("songmid", songMid)
	params.Set("g_tk", "5381")
	params.Set("format", "json")
	params.Set("inCharset", "utf8")
	params.Set("outCharset", "utf-8")
	params.Set("nobase64", "0")

	var resp lyricResponse
	if err := c.getJSON(ctx, op, c.endpoints.Lyric, params, lyricReferer, &resp); err != nil {
		return domain.Lyric{}, err
	}
	if resp.Code != 0 || resp.Lyric == "" {
		return domain.Lyric{}, domain.E(domain.CodeNotFound, op, "no lyric for song "+songMid, nil)
	}

	return domain.Lyric{
		Lyric:       decodeLyric(resp.Lyric),
		Translation: decodeLyric(resp.Trans),
	}, nil
}

func decodeLyric(encoded string) string {
	if encoded == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(decoded)
}
