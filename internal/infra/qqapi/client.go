package qqapi

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qqmusicmcp/internal/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultReferer   = "https://y.qq.com/"
	defaultOrigin    = "https://y.qq.com"

	// The lyric endpoint rejects requests without the player referer.
	lyricReferer = "https://y.qq.com/portal/player.html"

	maxResponseBytes = 8 << 20
)

// Endpoints holds the upstream URLs. Tests point them at local fixtures.
type Endpoints struct {
	Search   string
	Musicu   string
	Lyric    string
	Album    string
	Playlist string
}

// DefaultEndpoints returns the production QQ Music endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Search:   "https://c.y.qq.com/soso/fcgi-bin/client_search_cp",
		Musicu:   "https://u.y.qq.com/cgi-bin/musicu.fcg",
		Lyric:    "https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg",
		Album:    "https://c.y.qq.com/v8/fcg-bin/fcg_v8_album_info_cp.fcg",
		Playlist: "https://c.y.qq.com/qzone/fcg-bin/fcg_ucc_getcdinfo_byids_cp.fcg",
	}
}

// Options configures a Client.
type Options struct {
	// Cookie is the optional session credential for VIP-tier requests.
	Cookie    string
	Timeout   time.Duration
	Endpoints Endpoints
	Logger    *zap.Logger
	Metrics   domain.Metrics
	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the QQ Music HTTP API. It is immutable after construction
// and safe for concurrent use; every request runs under its own deadline
// derived from the caller context.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	cookie    string
	uin       string
	guid      string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   domain.Metrics
}

var uinPattern = regexp.MustCompile(`uin=(\d+)`)

// NewClient builds a Client from options, filling in defaults.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeoutSeconds * time.Second
	}
	endpoints := opts.Endpoints
	if endpoints == (Endpoints{}) {
		endpoints = DefaultEndpoints()
	}

	uin := "0"
	if m := uinPattern.FindStringSubmatch(opts.Cookie); m != nil {
		uin = m[1]
	}

	return &Client{
		http:      httpClient,
		endpoints: endpoints,
		cookie:    strings.TrimSpace(opts.Cookie),
		uin:       uin,
		guid:      newGUID(),
		timeout:   timeout,
		logger:    logger.Named("qqapi"),
		metrics:   metrics,
	}
}

// Authenticated reports whether a session cookie is configured.
func (c *Client) Authenticated() bool {
	return c.cookie != ""
}

// newGUID produces the ten-digit device guid the vkey endpoint expects.
// One guid per process is enough; upstream only requires it to be stable
// within a vkey request.
func newGUID() string {
	u := uuid.New()
	n := int64(binary.BigEndian.Uint64(u[:8]) % 9000000000)
	return strconv.FormatInt(1000000000+n, 10)
}

// getJSON issues a GET with the standard headers, unwraps a JSONP envelope
// when present and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, endpoint string, params url.Values, referer string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.E(domain.CodeInternal, op, "build request", err)
	}
	if referer == "" {
		referer = defaultReferer
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Origin", defaultOrigin)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveUpstreamRequest(op, time.Since(start), err)
	if err != nil {
		return classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := domain.CodeUpstream
		if resp.StatusCode >= http.StatusInternalServerError {
			code = domain.CodeUnavailable
		}
		return domain.E(code, op, fmt.Sprintf("upstream status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(op, err)
	}
	body = unwrapJSONP(body)
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("upstream response decode failed", zap.String("op", op), zap.Error(err))
		return domain.E(domain.CodeUpstream, op, "decode upstream response", err)
	}
	return nil
}

func classifyTransportError(op string, err error) *domain.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.E(domain.CodeDeadlineExceeded, op, "upstream request timed out", err)
	case errors.Is(err, context.Canceled):
		return domain.E(domain.CodeCanceled, op, "request canceled", err)
	default:
		return domain.E(domain.CodeUnavailable, op, "", err)
	}
}

var jsonpPattern = regexp.MustCompile(`(?s)^\s*\w+\((\{.*\})\)\s*;?\s*$`)

// unwrapJSONP strips a callback(...) envelope, returning the body untouched
// when no envelope is present.
func unwrapJSONP(body []byte) []byte {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		return body
	}
	if m := jsonpPattern.FindStringSubmatch(trimmed); m != nil {
		return []byte(m[1])
	}
	return body
}
