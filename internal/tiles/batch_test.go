package tiles

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/geo"
)

func rectAt(x0, y0, x1, y1 float64, z maptile.Zoom) geo.TileRect {
	return geo.TileRect{
		TopLeft:     geo.FractionalTile{X: x0, Y: y0, Z: z},
		BottomRight: geo.FractionalTile{X: x1, Y: y1, Z: z},
	}
}

func TestEnumerateSingleTile(t *testing.T) {
	tiles := enumerate(rectAt(5, 7, 5, 7, 4))

	require.Len(t, tiles, 1)
	assert.Equal(t, maptile.New(5, 7, 4), tiles[0])
}

func TestEnumerateGrid(t *testing.T) {
	// floor(10.2)=10 .. ceil(12.5)=13 and floor(20.9)=20 .. ceil(22.1)=23,
	// both inclusive: 4x4 tiles.
	tiles := enumerate(rectAt(10.2, 20.9, 12.5, 22.1, 15))

	require.Len(t, tiles, 16)
	for _, tile := range tiles {
		assert.Equal(t, maptile.Zoom(15), tile.Z)
		assert.GreaterOrEqual(t, tile.X, uint32(10))
		assert.LessOrEqual(t, tile.X, uint32(13))
		assert.GreaterOrEqual(t, tile.Y, uint32(20))
		assert.LessOrEqual(t, tile.Y, uint32(23))
	}
}

func TestFetchBatchFetchesEveryTileOnce(t *testing.T) {
	var requests int64
	body := makeTilePNG(t, color.RGBA{G: 255, A: 255}, 256)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	retriever := NewBatchRetriever(NewFetcher(nil, ""), 0)
	batch, err := retriever.FetchBatch(context.Background(), testTemplate(server), rectAt(3.5, 4.5, 5.5, 5.5, 8))

	require.NoError(t, err)
	// Columns 3..6, rows 4..6.
	assert.Len(t, batch, 12)
	assert.EqualValues(t, 12, atomic.LoadInt64(&requests))
	for tile, data := range batch {
		assert.Equal(t, maptile.Zoom(8), tile.Z)
		assert.Equal(t, body, data)
	}
}

func TestFetchBatchBoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight int64
	var mu sync.Mutex

	body := makeTilePNG(t, color.RGBA{B: 255, A: 255}, 256)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if cur > maxInFlight {
			maxInFlight = cur
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)

		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	retriever := NewBatchRetriever(NewFetcher(nil, ""), DefaultConcurrency)
	// Columns 0..7, rows 0..4: 40 tiles, four waves at the default cap.
	batch, err := retriever.FetchBatch(context.Background(), testTemplate(server), rectAt(0, 0, 7, 4, 10))

	require.NoError(t, err)
	assert.Len(t, batch, 40)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxInFlight, int64(DefaultConcurrency))
	assert.Greater(t, maxInFlight, int64(1))
}

func TestFetchBatchAllOrNothing(t *testing.T) {
	var requests int64
	body := makeTilePNG(t, color.RGBA{R: 255, A: 255}, 256)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		if strings.HasSuffix(r.URL.Path, "/5/5.png") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	retriever := NewBatchRetriever(NewFetcher(nil, ""), 4)
	batch, err := retriever.FetchBatch(context.Background(), testTemplate(server), rectAt(4, 4, 6, 6, 9))

	assert.Nil(t, batch)

	var statusErr *UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, server.URL+"/9/5/5.png", statusErr.URL)

	// Every enumerated tile was still attempted; nothing was cancelled.
	assert.EqualValues(t, 9, atomic.LoadInt64(&requests))
}
