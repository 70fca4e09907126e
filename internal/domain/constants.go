package domain

// Defaults shared by the config loader and CLI flags.
const (
	DefaultRequestTimeoutSeconds = 30
	DefaultBatchConcurrency      = 4
	DefaultSearchPage            = 1
	DefaultSearchPageSize        = 20
	DefaultMetricsListenAddress  = "127.0.0.1:9090"
)

// SearchType is the upstream search category.
type SearchType string

const (
	SearchTypeSong     SearchType = "song"
	SearchTypeAlbum    SearchType = "album"
	SearchTypePlaylist SearchType = "playlist"
	SearchTypeMV       SearchType = "mv"
	SearchTypeLyric    SearchType = "lyric"
	SearchTypeUser     SearchType = "user"
)

var searchTypeCodes = map[SearchType]int{
	SearchTypeSong:     0,
	SearchTypeAlbum:    2,
	SearchTypePlaylist: 3,
	SearchTypeMV:       4,
	SearchTypeLyric:    7,
	SearchTypeUser:     8,
}

// ParseSearchType validates a search type string, defaulting to song.
func ParseSearchType(raw string) (SearchType, error) {
	if raw == "" {
		return SearchTypeSong, nil
	}
	st := SearchType(raw)
	if _, ok := searchTypeCodes[st]; !ok {
		return "", E(CodeInvalidArgument, "", "unknown search type "+raw, nil)
	}
	return st, nil
}

// Code returns the numeric category the upstream search endpoint expects.
func (s SearchType) Code() int {
	return searchTypeCodes[s]
}

// CoverSize is a named album cover dimension.
type CoverSize string

const (
	CoverSmall  CoverSize = "small"
	CoverMedium CoverSize = "medium"
	CoverLarge  CoverSize = "large"
)

var coverPixels = map[CoverSize]int{
	CoverSmall:  150,
	CoverMedium: 300,
	CoverLarge:  500,
}

// Pixels returns the pixel dimension for a named cover size, zero when the
// name is unknown.
func (c CoverSize) Pixels() int {
	return coverPixels[c]
}
