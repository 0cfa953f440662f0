package tiles

import (
	"context"
	"math"
	"sync"

	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/geo"
)

// DefaultConcurrency bounds the number of in-flight tile fetches per
// batch.
const DefaultConcurrency = 10

// Batch maps tile indices to their raw PNG bytes. All keys share one
// zoom level.
type Batch map[maptile.Tile][]byte

// tileResult holds one slot of a batch fan-out.
type tileResult struct {
	tile maptile.Tile
	data []byte
	err  error
}

// BatchRetriever fetches every tile covering a tile-space rectangle,
// with a bounded number of fetches in flight at any time.
type BatchRetriever struct {
	fetcher     *Fetcher
	concurrency int64
}

// NewBatchRetriever creates a retriever running at most concurrency
// fetches in parallel. Values below 1 fall back to DefaultConcurrency.
func NewBatchRetriever(fetcher *Fetcher, concurrency int) *BatchRetriever {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &BatchRetriever{
		fetcher:     fetcher,
		concurrency: int64(concurrency),
	}
}

// enumerate lists every tile index covering rect: columns
// floor(tl.x)..ceil(br.x) and rows floor(tl.y)..ceil(br.y), both
// inclusive. A degenerate rectangle still covers one tile.
func enumerate(rect geo.TileRect) []maptile.Tile {
	zoom := rect.Zoom()
	x0 := uint32(math.Floor(rect.TopLeft.X))
	x1 := uint32(math.Ceil(rect.BottomRight.X))
	y0 := uint32(math.Floor(rect.TopLeft.Y))
	y1 := uint32(math.Ceil(rect.BottomRight.Y))

	tiles := make([]maptile.Tile, 0, (x1-x0+1)*(y1-y0+1))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			tiles = append(tiles, maptile.New(x, y, zoom))
		}
	}
	return tiles
}

// FetchBatch retrieves all tiles covering rect from src. The batch is
// all-or-nothing: it waits for every dispatched fetch to finish, and
// if any failed it returns the first error encountered and discards
// everything fetched. In-flight siblings are not cancelled on failure.
//
// Each fetch writes its own result slot, so no ordering among
// completions is assumed or required.
func (b *BatchRetriever) FetchBatch(ctx context.Context, src Source, rect geo.TileRect) (Batch, error) {
	tiles := enumerate(rect)

	log.Ctx(ctx).Debug().
		Int("tiles", len(tiles)).
		Uint32("zoom", uint32(rect.Zoom())).
		Msg("Fetching tile batch")

	sem := semaphore.NewWeighted(b.concurrency)
	results := make([]tileResult, len(tiles))

	var wg sync.WaitGroup
	for i, tile := range tiles {
		wg.Add(1)
		go func(i int, tile maptile.Tile) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = tileResult{tile: tile, err: &TransportError{URL: src.URL(tile), Err: err}}
				return
			}
			defer sem.Release(1)

			data, err := b.fetcher.FetchTile(ctx, src, tile)
			results[i] = tileResult{tile: tile, data: data, err: err}
		}(i, tile)
	}
	wg.Wait()

	batch := make(Batch, len(results))
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		batch[res.tile] = res.data
	}

	return batch, nil
}
