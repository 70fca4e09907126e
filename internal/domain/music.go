package domain

import "strings"

// Singer identifies a performing artist.
type Singer struct {
	ID   int64  `json:"id"`
	Mid  string `json:"mid"`
	Name string `json:"name"`
}

// SongFile carries the per-quality media file sizes reported by the song
// detail endpoint. A size greater than zero means the tier exists upstream.
type SongFile struct {
	SizeM4A   int64 `json:"size_m4a"`
	Size128   int64 `json:"size_128"`
	Size320   int64 `json:"size_320"`
	SizeFLAC  int64 `json:"size_flac"`
	SizeAPE   int64 `json:"size_ape"`
	SizeHiRes int64 `json:"size_hires"`
	SizeAtmos int64 `json:"size_atmos"`
}

// AvailableQualities derives the quality tiers present for the song.
func (f SongFile) AvailableQualities() []QualityCode {
	sizes := map[QualityCode]int64{
		QualityM4A:   f.SizeM4A,
		Quality128:   f.Size128,
		Quality320:   f.Size320,
		QualityFLAC:  f.SizeFLAC,
		QualityAPE:   f.SizeAPE,
		QualityHiRes: f.SizeHiRes,
		QualityAtmos: f.SizeAtmos,
	}
	var out []QualityCode
	for _, q := range AllQualities {
		if sizes[q] > 0 {
			out = append(out, q)
		}
	}
	return out
}

// Size returns the file size for a quality tier, zero when absent.
func (f SongFile) Size(q QualityCode) int64 {
	switch q {
	case QualityM4A:
		return f.SizeM4A
	case Quality128:
		return f.Size128
	case Quality320:
		return f.Size320
	case QualityFLAC:
		return f.SizeFLAC
	case QualityAPE:
		return f.SizeAPE
	case QualityHiRes:
		return f.SizeHiRes
	case QualityAtmos:
		return f.SizeAtmos
	default:
		return 0
	}
}

// Song is the reshaped track metadata returned to callers.
type Song struct {
	ID       int64     `json:"id"`
	Mid      string    `json:"mid"`
	Name     string    `json:"name"`
	AlbumID  int64     `json:"album_id"`
	AlbumMid string    `json:"album_mid"`
	Album    string    `json:"album"`
	Singers  []Singer  `json:"singers"`
	Duration int       `json:"duration_seconds"`
	PayPlay  int       `json:"pay_play"`
	File     *SongFile `json:"file,omitempty"`
}

// SingerNames joins the artist names the way the upstream UI renders them.
func (s Song) SingerNames() string {
	names := make([]string, 0, len(s.Singers))
	for _, singer := range s.Singers {
		names = append(names, singer.Name)
	}
	return strings.Join(names, " / ")
}

// AvailableQualities lists the tiers present for the song, empty when the
// detail endpoint did not report file sizes.
func (s Song) AvailableQualities() []QualityCode {
	if s.File == nil {
		return nil
	}
	return s.File.AvailableQualities()
}

// Album is the reshaped album metadata.
type Album struct {
	ID          int64    `json:"id"`
	Mid         string   `json:"mid"`
	Name        string   `json:"name"`
	Singers     []Singer `json:"singers"`
	PublishDate string   `json:"publish_date"`
	Desc        string   `json:"description"`
	SongCount   int      `json:"song_count"`
}

// Playlist is the reshaped playlist metadata.
type Playlist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Cover       string `json:"cover"`
	Creator     string `json:"creator"`
	ListenCount int64  `json:"listen_count"`
	SongCount   int    `json:"song_count"`
}

// Lyric holds the decoded lyric text and its translation when present.
type Lyric struct {
	Lyric       string `json:"lyric"`
	Translation string `json:"translation"`
}

// SongURL is a resolved playback URL for one song at one quality tier.
type SongURL struct {
	Mid     string      `json:"mid"`
	URL     string      `json:"url"`
	Quality QualityCode `json:"quality"`
	Size    int64       `json:"size"`
}

// SearchResult is a reshaped page of search matches.
type SearchResult struct {
	Keyword  string `json:"keyword"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Songs    []Song `json:"songs"`
}
