package tiles

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/geo"
)

// Snapshotter combines projection, batch retrieval and mosaic assembly
// into the single "image centered on a point" operation. All state is
// request-scoped; nothing is cached between calls.
type Snapshotter struct {
	projector geo.WebMercator
	retriever *BatchRetriever
	assembler *Assembler
}

// NewSnapshotter creates a snapshotter on top of fetcher, running at
// most concurrency tile fetches in parallel per request.
func NewSnapshotter(fetcher *Fetcher, concurrency int) *Snapshotter {
	projector := geo.WebMercator{}
	return &Snapshotter{
		projector: projector,
		retriever: NewBatchRetriever(fetcher, concurrency),
		assembler: NewAssembler(projector),
	}
}

// Snapshot fetches a PNG snapshot from src, centered on center,
// covering at least radiusKm on each side, sizePx pixels square.
func (s *Snapshotter) Snapshot(ctx context.Context, src Source, center geo.Point, radiusKm float64, sizePx int) ([]byte, error) {
	box := s.projector.RectAround(center, radiusKm, sizePx)

	log.Ctx(ctx).Debug().
		Float64("lat", center.Lat).
		Float64("lon", center.Lon).
		Float64("radius_km", radiusKm).
		Int("size_px", sizePx).
		Uint32("zoom", uint32(box.Rect.Zoom())).
		Msg("Computed snapshot rectangle")

	batch, err := s.retriever.FetchBatch(ctx, src, box.Rect)
	if err != nil {
		return nil, err
	}

	return s.assembler.Assemble(box, batch)
}
