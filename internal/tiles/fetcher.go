package tiles

import (
	"context"
	"io"
	"net/http"

	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog/log"
)

const defaultUserAgent = "pass-image-api/1.0.0"

// Fetcher retrieves single tiles over HTTP. It performs no retries and
// no caching; every call issues exactly one GET.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher. A nil client falls back to
// http.DefaultClient; callers that need a deadline wrap the context
// they pass to FetchTile instead of configuring one here.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// FetchTile retrieves the raw bytes of one tile. It succeeds only on a
// 200 response whose declared content type is exactly image/png; the
// three failure modes (transport, status, content type) surface as
// distinct error types, each naming the request URL.
func (f *Fetcher) FetchTile(ctx context.Context, src Source, tile maptile.Tile) ([]byte, error) {
	url := src.URL(tile)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	log.Ctx(ctx).Debug().Str("url", url).Msg("Fetching tile")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamStatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		return nil, &ContentTypeError{URL: url, ContentType: ct}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	return body, nil
}
