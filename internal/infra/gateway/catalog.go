package gateway

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var qualityEnum = []string{"m4a", "128", "320", "flac", "ape", "hires", "atmos"}

const qualityDescription = "Quality tier: m4a (AAC), 128 (128kbps MP3, default), 320 (320kbps MP3), flac, ape, hires (24bit/192kHz master), atmos (Dolby Atmos). Tiers above 128 need a VIP session cookie."

// Catalog returns the fixed tool catalog. It is built once at startup and
// never changes afterwards.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		SearchMusicTool(),
		GetSongDetailTool(),
		GetSongQualityTool(),
		GetLyricTool(),
		GetSongURLTool(),
		GetBatchSongURLsTool(),
		GetAlbumDetailTool(),
		GetAlbumSongsTool(),
		GetPlaylistDetailTool(),
		GetAlbumCoverTool(),
	}
}

// SearchMusicTool returns the MCP tool definition for search_music.
func SearchMusicTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_music",
		Description: "Search QQ Music for songs, albums or playlists. Returns matches with title, artists, album and the mid identifiers used by the other tools.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"keyword": map[string]any{
					"type":        "string",
					"description": "Search keyword, e.g. a song title or artist name.",
				},
				"type": map[string]any{
					"type":        "string",
					"enum":        []string{"song", "album", "playlist", "mv", "lyric", "user"},
					"description": "Search category. Defaults to song.",
				},
				"page": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Result page, starting at 1.",
				},
				"page_size": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Matches per page. Defaults to 20.",
				},
			},
			"required": []string{"keyword"},
		},
	}
}

// GetSongDetailTool returns the MCP tool definition for get_song_detail.
func GetSongDetailTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_song_detail",
		Description: "Fetch a song's metadata: title, artists, album, duration and the quality tiers available for playback.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"song_mid": map[string]any{
					"type":        "string",
					"description": "The song mid identifier, as returned by search_music.",
				},
			},
			"required": []string{"song_mid"},
		},
	}
}

// GetSongQualityTool returns the MCP tool definition for get_song_quality.
func GetSongQualityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_song_quality",
		Description: "List the quality tiers available for a song, with the media file size of each tier.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"song_mid": map[string]any{
					"type":        "string",
					"description": "The song mid identifier.",
				},
			},
			"required": []string{"song_mid"},
		},
	}
}

// GetLyricTool returns the MCP tool definition for get_lyric.
func GetLyricTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_lyric",
		Description: "Fetch a song's lyric (usually LRC-timestamped) and its translation when one exists.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"song_mid": map[string]any{
					"type":        "string",
					"description": "The song mid identifier.",
				},
			},
			"required": []string{"song_mid"},
		},
	}
}

// GetSongURLTool returns the MCP tool definition for get_song_url.
func GetSongURLTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_song_url",
		Description: "Resolve a playback URL for one song at a quality tier.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"song_mid": map[string]any{
					"type":        "string",
					"description": "The song mid identifier.",
				},
				"quality": map[string]any{
					"type":        "string",
					"enum":        qualityEnum,
					"description": qualityDescription,
				},
			},
			"required": []string{"song_mid"},
		},
	}
}

// GetBatchSongURLsTool returns the MCP tool definition for get_batch_song_urls.
func GetBatchSongURLsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_batch_song_urls",
		Description: "Resolve playback URLs for several songs at once. Each song is resolved independently: the result maps every mid to either a URL or an error, and one failure never drops the others.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mids": map[string]any{
					"type":        "string",
					"description": "Comma-separated song mids, e.g. \"mid1,mid2,mid3\".",
				},
				"quality": map[string]any{
					"type":        "string",
					"enum":        qualityEnum,
					"description": qualityDescription,
				},
			},
			"required": []string{"mids"},
		},
	}
}

// GetAlbumDetailTool returns the MCP tool definition for get_album_detail.
func GetAlbumDetailTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_album_detail",
		Description: "Fetch an album's metadata: name, artists, publish date, description, song count and cover URL.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"album_mid": map[string]any{
					"type":        "string",
					"description": "The album mid identifier.",
				},
			},
			"required": []string{"album_mid"},
		},
	}
}

// GetAlbumSongsTool returns the MCP tool definition for get_album_songs.
func GetAlbumSongsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_album_songs",
		Description: "List the songs on an album.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"album_mid": map[string]any{
					"type":        "string",
					"description": "The album mid identifier.",
				},
				"page": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Result page, starting at 1. Omit for the whole album.",
				},
				"page_size": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Songs per page.",
				},
			},
			"required": []string{"album_mid"},
		},
	}
}

// GetPlaylistDetailTool returns the MCP tool definition for get_playlist_detail.
func GetPlaylistDetailTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_playlist_detail",
		Description: "Fetch a playlist's metadata and its songs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"playlist_id": map[string]any{
					"type":        "integer",
					"description": "The numeric playlist id.",
				},
			},
			"required": []string{"playlist_id"},
		},
	}
}

// GetAlbumCoverTool returns the MCP tool definition for get_album_cover.
func GetAlbumCoverTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_album_cover",
		Description: "Build the cover image URL for an album. No network call is made.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"album_mid": map[string]any{
					"type":        "string",
					"description": "The album mid identifier.",
				},
				"size": map[string]any{
					"type":        "string",
					"description": "Cover size: small (150px), medium (300px, default), large (500px), or a bare pixel count such as 300.",
				},
			},
			"required": []string{"album_mid"},
		},
	}
}
