package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"qqmusicmcp/internal/domain"
	"qqmusicmcp/internal/infra/qqapi"
)

const serverVersion = "0.1.0"

// Options configures a Gateway.
type Options struct {
	Client           *qqapi.Client
	BatchConcurrency int
	Logger           *zap.Logger
	Metrics          domain.Metrics
}

// Gateway exposes the fixed tool catalog over MCP and executes each
// invocation by delegating to the upstream client. It holds no mutable
// state, so concurrent invocations need no coordination.
type Gateway struct {
	client           *qqapi.Client
	batchConcurrency int
	logger           *zap.Logger
	metrics          domain.Metrics
	server           *mcp.Server
}

// New builds a Gateway and registers the tool catalog on its MCP server.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	concurrency := opts.BatchConcurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultBatchConcurrency
	}

	g := &Gateway{
		client:           opts.Client,
		batchConcurrency: concurrency,
		logger:           logger.Named("gateway"),
		metrics:          metrics,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "qqmusic-mcp",
		Version: serverVersion,
	}, &mcp.ServerOptions{
		HasTools: true,
	})
	for _, tool := range Catalog() {
		t := tool
		server.AddTool(&t, g.dispatch(t.Name))
	}
	g.server = server
	return g
}

// Server exposes the underlying MCP server, mainly for in-memory tests.
func (g *Gateway) Server() *mcp.Server {
	return g.server
}

// Run serves the gateway over the stdio transport until ctx is canceled.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("gateway starting (stdio transport)")
	return g.server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPOptions configures the streamable HTTP transport.
type HTTPOptions struct {
	Addr         string
	Path         string
	JSONResponse bool
}

// RunStreamableHTTP serves the gateway over streamable HTTP until ctx is
// canceled.
func (g *Gateway) RunStreamableHTTP(ctx context.Context, opts HTTPOptions) error {
	path := opts.Path
	if path == "" {
		path = "/mcp"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return g.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: opts.JSONResponse})

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		g.logger.Info("gateway starting (streamable http transport)",
			zap.String("addr", opts.Addr),
			zap.String("path", path),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("gateway http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			g.logger.Error("gateway http server shutdown error", zap.Error(err))
			return err
		}
		g.logger.Info("gateway http server stopped")
		return nil
	}
}

// toolFunc executes one invocation and returns the payload to serialize.
type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

func (g *Gateway) toolFuncFor(name string) toolFunc {
	switch name {
	case "search_music":
		return g.handleSearchMusic
	case "get_song_detail":
		return g.handleGetSongDetail
	case "get_song_quality":
		return g.handleGetSongQuality
	case "get_lyric":
		return g.handleGetLyric
	case "get_song_url":
		return g.handleGetSongURL
	case "get_batch_song_urls":
		return g.handleGetBatchSongURLs
	case "get_album_detail":
		return g.handleGetAlbumDetail
	case "get_album_songs":
		return g.handleGetAlbumSongs
	case "get_playlist_detail":
		return g.handleGetPlaylistDetail
	case "get_album_cover":
		return g.handleGetAlbumCover
	default:
		return nil
	}
}

// dispatch wraps a tool handler with metrics and error-to-result mapping.
// Every failure becomes a structured IsError result; nothing propagates far
// enough to take the process down.
func (g *Gateway) dispatch(name string) mcp.ToolHandler {
	fn := g.toolFuncFor(name)
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if fn == nil {
			return errorResult(domain.E(domain.CodeNotFound, name, "unknown tool", nil)), nil
		}

		args := json.RawMessage(req.Params.Arguments)
		start := time.Now()
		payload, err := fn(ctx, args)
		g.metrics.ObserveToolCall(name, time.Since(start), err)
		if err != nil {
			g.logger.Warn("tool call failed",
				zap.String("tool", name),
				zap.String("code", string(domain.CodeFrom(err))),
				zap.Error(err),
			)
			return errorResult(err), nil
		}
		return jsonResult(payload)
	}
}

type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func errorResult(err error) *mcp.CallToolResult {
	body := errorBody{
		Code:    domain.CodeFrom(err),
		Message: err.Error(),
	}
	raw, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		raw = []byte(`{"code":"INTERNAL","message":"failed to encode error"}`)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult(domain.E(domain.CodeInternal, "", "encode result", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil
}
