package gateway

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"qqmusicmcp/internal/domain"
	"qqmusicmcp/internal/infra/qqapi"
)

// decodeArgs parses tool arguments, classifying malformed JSON as an
// argument error so it never reaches the network layer.
func decodeArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return domain.E(domain.CodeInvalidArgument, "", "malformed arguments", err)
	}
	return nil
}

func validatePaging(page, pageSize int) error {
	if page < 0 {
		return domain.E(domain.CodeInvalidArgument, "", "page must be >= 1", nil)
	}
	if pageSize < 0 {
		return domain.E(domain.CodeInvalidArgument, "", "page_size must be >= 1", nil)
	}
	return nil
}

// songPayload is the reshaped song object returned to callers. It keeps the
// caller-relevant fields (title, artists, album, duration) and drops the
// upstream envelope.
type songPayload struct {
	Mid                string   `json:"mid"`
	Name               string   `json:"name"`
	Singers            string   `json:"singers"`
	Album              string   `json:"album"`
	AlbumMid           string   `json:"album_mid"`
	DurationSeconds    int      `json:"duration_seconds"`
	AvailableQualities []string `json:"available_qualities"`
}

func formatSong(song domain.Song) songPayload {
	qualities := make([]string, 0)
	for _, q := range song.AvailableQualities() {
		qualities = append(qualities, string(q))
	}
	return songPayload{
		Mid:                song.Mid,
		Name:               song.Name,
		Singers:            song.SingerNames(),
		Album:              song.Album,
		AlbumMid:           song.AlbumMid,
		DurationSeconds:    song.Duration,
		AvailableQualities: qualities,
	}
}

func formatSongs(songs []domain.Song) []songPayload {
	out := make([]songPayload, 0, len(songs))
	for _, song := range songs {
		out = append(out, formatSong(song))
	}
	return out
}

type searchMusicArgs struct {
	Keyword  string `json:"keyword"`
	Type     string `json:"type"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func (g *Gateway) handleSearchMusic(ctx context.Context, raw json.RawMessage) (any, error) {
	var args searchMusicArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Keyword) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "search_music", "keyword is required", nil)
	}
	searchType, err := domain.ParseSearchType(args.Type)
	if err != nil {
		return nil, err
	}
	if err := validatePaging(args.Page, args.PageSize); err != nil {
		return nil, err
	}

	result, err := g.client.Search(ctx, args.Keyword, searchType, args.Page, args.PageSize)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"keyword":   result.Keyword,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
		"songs":     formatSongs(result.Songs),
	}, nil
}

type songMidArgs struct {
	SongMid string `json:"song_mid"`
}

func (a songMidArgs) validate(op string) error {
	if strings.TrimSpace(a.SongMid) == "" {
		return domain.E(domain.CodeInvalidArgument, op, "song_mid is required", nil)
	}
	return nil
}

func (g *Gateway) handleGetSongDetail(ctx context.Context, raw json.RawMessage) (any, error) {
	var args songMidArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := args.validate("get_song_detail"); err != nil {
		return nil, err
	}
	song, err := g.client.SongDetail(ctx, args.SongMid)
	if err != nil {
		return nil, err
	}
	return formatSong(song), nil
}

func (g *Gateway) handleGetSongQuality(ctx context.Context, raw json.RawMessage) (any, error) {
	var args songMidArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := args.validate("get_song_quality"); err != nil {
		return nil, err
	}
	song, err := g.client.SongDetail(ctx, args.SongMid)
	if err != nil {
		return nil, err
	}

	qualities := make([]string, 0)
	sizes := make(map[string]int64)
	if song.File != nil {
		for _, q := range song.File.AvailableQualities() {
			qualities = append(qualities, string(q))
			sizes[string(q)] = song.File.Size(q)
		}
	}
	return map[string]any{
		"mid":                 song.Mid,
		"name":                song.Name,
		"available_qualities": qualities,
		"file_sizes":          sizes,
	}, nil
}

func (g *Gateway) handleGetLyric(ctx context.Context, raw json.RawMessage) (any, error) {
	var args songMidArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := args.validate("get_lyric"); err != nil {
		return nil, err
	}
	lyric, err := g.client.Lyric(ctx, args.SongMid)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mid":         args.SongMid,
		"lyric":       lyric.Lyric,
		"translation": lyric.Translation,
	}, nil
}

type songURLArgs struct {
	SongMid string `json:"song_mid"`
	Quality string `json:"quality"`
}

func (g *Gateway) handleGetSongURL(ctx context.Context, raw json.RawMessage) (any, error) {
	var args songURLArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.SongMid) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "get_song_url", "song_mid is required", nil)
	}
	quality, err := domain.ParseQuality(args.Quality)
	if err != nil {
		return nil, err
	}

	songURL, err := g.client.SongURL(ctx, args.SongMid, quality)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mid":     songURL.Mid,
		"url":     songURL.URL,
		"quality": string(songURL.Quality),
		"size":    songURL.Size,
	}, nil
}

type batchSongURLArgs struct {
	Mids    string `json:"mids"`
	Quality string `json:"quality"`
}

type batchURLEntry struct {
	Mid   string     `json:"mid"`
	URL   string     `json:"url,omitempty"`
	Size  int64      `json:"size,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func (g *Gateway) handleGetBatchSongURLs(ctx context.Context, raw json.RawMessage) (any, error) {
	var args batchSongURLArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	var mids []string
	for _, part := range strings.Split(args.Mids, ",") {
		if mid := strings.TrimSpace(part); mid != "" {
			mids = append(mids, mid)
		}
	}
	if len(mids) == 0 {
		return nil, domain.E(domain.CodeInvalidArgument, "get_batch_song_urls", "mids must contain at least one song mid", nil)
	}
	quality, err := domain.ParseQuality(args.Quality)
	if err != nil {
		return nil, err
	}

	results := g.client.BatchSongURLs(ctx, mids, quality, g.batchConcurrency)
	entries := make([]batchURLEntry, 0, len(results))
	for _, res := range results {
		entry := batchURLEntry{Mid: res.Mid}
		if res.Err != nil {
			entry.Error = &errorBody{
				Code:    domain.CodeFrom(res.Err),
				Message: res.Err.Error(),
			}
		} else if res.URL != nil {
			entry.URL = res.URL.URL
			entry.Size = res.URL.Size
		}
		entries = append(entries, entry)
	}
	return map[string]any{
		"quality": string(quality),
		"urls":    entries,
	}, nil
}

type albumMidArgs struct {
	AlbumMid string `json:"album_mid"`
}

func (a albumMidArgs) validate(op string) error {
	if strings.TrimSpace(a.AlbumMid) == "" {
		return domain.E(domain.CodeInvalidArgument, op, "album_mid is required", nil)
	}
	return nil
}

type albumPayload struct {
	Mid         string `json:"mid"`
	Name        string `json:"name"`
	Singers     string `json:"singers"`
	PublishDate string `json:"publish_date"`
	Description string `json:"description"`
	SongCount   int    `json:"song_count"`
	CoverURL    string `json:"cover_url"`
}

func (g *Gateway) handleGetAlbumDetail(ctx context.Context, raw json.RawMessage) (any, error) {
	var args albumMidArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := args.validate("get_album_detail"); err != nil {
		return nil, err
	}
	album, err := g.client.AlbumDetail(ctx, args.AlbumMid)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(album.Singers))
	for _, s := range album.Singers {
		names = append(names, s.Name)
	}
	return albumPayload{
		Mid:         album.Mid,
		Name:        album.Name,
		Singers:     strings.Join(names, " / "),
		PublishDate: album.PublishDate,
		Description: album.Desc,
		SongCount:   album.SongCount,
		CoverURL:    qqapi.AlbumCoverURL(album.Mid, domain.CoverLarge.Pixels()),
	}, nil
}

type albumSongsArgs struct {
	AlbumMid string `json:"album_mid"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func (g *Gateway) handleGetAlbumSongs(ctx context.Context, raw json.RawMessage) (any, error) {
	var args albumSongsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := (albumMidArgs{AlbumMid: args.AlbumMid}).validate("get_album_songs"); err != nil {
		return nil, err
	}
	if err := validatePaging(args.Page, args.PageSize); err != nil {
		return nil, err
	}

	songs, err := g.client.AlbumSongs(ctx, args.AlbumMid)
	if err != nil {
		return nil, err
	}

	// The album endpoint returns the whole track list; paging is applied
	// here when the caller asks for it.
	paged := songs
	if args.PageSize > 0 {
		page := args.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * args.PageSize
		if start >= len(songs) {
			paged = nil
		} else {
			end := start + args.PageSize
			if end > len(songs) {
				end = len(songs)
			}
			paged = songs[start:end]
		}
	}

	return map[string]any{
		"album_mid":  args.AlbumMid,
		"song_count": len(songs),
		"songs":      formatSongs(paged),
	}, nil
}

type playlistArgs struct {
	PlaylistID int64 `json:"playlist_id"`
}

func (g *Gateway) handleGetPlaylistDetail(ctx context.Context, raw json.RawMessage) (any, error) {
	var args playlistArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.PlaylistID <= 0 {
		return nil, domain.E(domain.CodeInvalidArgument, "get_playlist_detail", "playlist_id is required", nil)
	}

	playlist, songs, err := g.client.PlaylistDetail(ctx, args.PlaylistID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":           playlist.ID,
		"name":         playlist.Name,
		"cover":        playlist.Cover,
		"creator":      playlist.Creator,
		"listen_count": playlist.ListenCount,
		"song_count":   playlist.SongCount,
		"songs":        formatSongs(songs),
	}, nil
}

type albumCoverArgs struct {
	AlbumMid string `json:"album_mid"`
	Size     string `json:"size"`
}

func parseCoverSize(raw string) (int, error) {
	if raw == "" {
		return domain.CoverMedium.Pixels(), nil
	}
	if px := domain.CoverSize(raw).Pixels(); px > 0 {
		return px, nil
	}
	px, err := strconv.Atoi(raw)
	if err != nil || px <= 0 {
		return 0, domain.E(domain.CodeInvalidArgument, "get_album_cover",
			"size must be small, medium, large or a positive pixel count", nil)
	}
	return px, nil
}

func (g *Gateway) handleGetAlbumCover(_ context.Context, raw json.RawMessage) (any, error) {
	var args albumCoverArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := (albumMidArgs{AlbumMid: args.AlbumMid}).validate("get_album_cover"); err != nil {
		return nil, err
	}
	pixels, err := parseCoverSize(args.Size)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"album_mid": args.AlbumMid,
		"size":      pixels,
		"url":       qqapi.AlbumCoverURL(args.AlbumMid, pixels),
	}, nil
}
