package qqapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"

	"qqmusicmcp/internal/domain"
)

type vkeyRequest struct {
	Req0 struct {
		Module string `json:"module"`
		Method string `json:"method"`
		Param  struct {
			GUID      string   `json:"guid"`
			SongMid   []string `json:"songmid"`
			SongType  []int    `json:"songtype"`
			Uin       string   `json:"uin"`
			LoginFlag int      `json:"loginflag"`
			Platform  string   `json:"platform"`
			Filename  []string `json:"filename"`
		} `json:"param"`
	} `json:"req_0"`
}

type vkeyResponse struct {
	Code int `json:"code"`
	Req0 struct {
		Data struct {
			Sip        []string `json:"sip"`
			MidURLInfo []struct {
				SongMid  string `json:"songmid"`
				Purl     string `json:"purl"`
				Filesize int64  `json:"filesize"`
			} `json:"midurlinfo"`
		} `json:"data"`
	} `json:"req_0"`
}

// SongURL resolves a playback URL for one song at the given quality.
// VIP-gated tiers fail with UNAUTHENTICATED before any network call when no
// session cookie is configured.
func (c *Client) SongURL(ctx context.Context, songMid string, quality domain.QualityCode) (domain.SongURL, error) {
	const op = "song_url"

	if quality.RequiresVIP() && !c.Authenticated() {
		return domain.SongURL{}, domain.E(domain.CodeUnauthenticated, op,
			"quality "+string(quality)+" requires a VIP session cookie (set QQMUSIC_COOKIE)", nil)
	}

	var payload vkeyRequest
	payload.Req0.Module = "vkey.GetVkeyServer"
	payload.Req0.Method = "CgiGetVkey"
	param := &payload.Req0.Param
	param.GUID = c.guid
	param.SongMid = []string{songMid}
	param.SongType = []int{0}
	param.Uin = c.uin
	if c.Authenticated() {
		param.LoginFlag = 1
	}
	param.Platform = "20"
	param.Filename = []string{quality.Filename(songMid)}

	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.SongURL{}, domain.E(domain.CodeInternal, op, "encode request", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("data", string(raw))

	var resp vkeyResponse
	if err := c.getJSON(ctx, op, c.endpoints.Musicu, params, "", &resp); err != nil {
		return domain.SongURL{}, err
	}
	if resp.Code != 0 {
		return domain.SongURL{}, domain.E(domain.CodeUpstream, op, "upstream code "+strconv.Itoa(resp.Code), nil)
	}

	data := resp.Req0.Data
	if len(data.MidURLInfo) == 0 {
		return domain.SongURL{}, domain.E(domain.CodeNotFound, op, "song "+songMid+" not found", nil)
	}
	info := data.MidURLInfo[0]
	if info.Purl == "" {
		return domain.SongURL{}, domain.E(domain.CodeUnavailable, op,
			"upstream produced no playback URL for song "+songMid+" at quality "+string(quality), nil)
	}

	var host string
	if len(data.Sip) > 0 {
		host = data.Sip[0]
	}
	return domain.SongURL{
		Mid:     info.SongMid,
		URL:     host + info.Purl,
		Quality: quality,
		Size:    info.Filesize,
	}, nil
}

// BatchURLResult pairs a song mid with either its resolved URL or the error
// that prevented resolving it.
type BatchURLResult struct {
	Mid string
	URL *domain.SongURL
	Err error
}

// BatchSongURLs resolves playback URLs for several mids with bounded
// concurrency. Each mid is resolved independently; one failure never aborts
// the siblings. Results preserve input order.
func (c *Client) BatchSongURLs(ctx context.Context, songMids []string, quality domain.QualityCode, concurrency int) []BatchURLResult {
	if concurrency <= 0 {
		concurrency = domain.DefaultBatchConcurrency
	}

	results := make([]BatchURLResult, len(songMids))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, mid := range songMids {
		wg.Add(1)
		go func(idx int, songMid string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[idx] = BatchURLResult{Mid: songMid, Err: classifyTransportError("song_url", ctx.Err())}
				return
			}
			defer func() { <-semaphore }()

			songURL, err := c.SongURL(ctx, songMid, quality)
			if err != nil {
				results[idx] = BatchURLResult{Mid: songMid, Err: err}
				return
			}
			results[idx] = BatchURLResult{Mid: songMid, URL: &songURL}
		}(i, mid)
	}

	wg.Wait()
	return results
}
