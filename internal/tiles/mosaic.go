package tiles

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/geo"
)

// Assembler composites a tile batch into one canvas and crops it so
// the output is centered on the requested point at the requested size.
type Assembler struct {
	projector geo.Projector
}

// NewAssembler creates an assembler that uses projector to locate the
// center point in tile-space when computing the crop.
func NewAssembler(projector geo.Projector) *Assembler {
	return &Assembler{projector: projector}
}

// Assemble decodes every tile in batch, composites them at their grid
// offsets, crops the result to box.Width x box.Height centered on
// box.Center, and returns the crop as PNG bytes.
//
// The canvas dimensions derive from the requested rectangle, and the
// batch must match that grid exactly; a mismatch means the retriever
// and the assembler disagree about which tiles exist and is an
// explicit GeometryError rather than a silently resized canvas.
func (a *Assembler) Assemble(box geo.SizedTileRect, batch Batch) ([]byte, error) {
	rect := box.Rect
	outer := box.OuterTopLeft()

	cols := int(math.Ceil(rect.BottomRight.X)) - int(math.Floor(rect.TopLeft.X)) + 1
	rows := int(math.Ceil(rect.BottomRight.Y)) - int(math.Floor(rect.TopLeft.Y)) + 1

	if len(batch) != cols*rows {
		return nil, &GeometryError{Msg: fmt.Sprintf(
			"batch holds %d tiles but the rectangle spans a %dx%d grid", len(batch), cols, rows)}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cols*geo.TileSize, rows*geo.TileSize))

	for tile, data := range batch {
		col := int(tile.X) - int(outer.X)
		row := int(tile.Y) - int(outer.Y)
		if col < 0 || col >= cols || row < 0 || row >= rows {
			return nil, &GeometryError{Msg: fmt.Sprintf(
				"tile %d/%d/%d lies outside the %dx%d grid anchored at %d/%d",
				tile.Z, tile.X, tile.Y, cols, rows, outer.X, outer.Y)}
		}

		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Tile: tile, Err: err}
		}
		b := img.Bounds()
		if b.Dx() != geo.TileSize || b.Dy() != geo.TileSize {
			return nil, &DecodeError{Tile: tile, Err: fmt.Errorf(
				"got %dx%d tile, expected %dx%d", b.Dx(), b.Dy(), geo.TileSize, geo.TileSize)}
		}

		xOff := col * geo.TileSize
		yOff := row * geo.TileSize
		draw.Draw(canvas, image.Rect(xOff, yOff, xOff+geo.TileSize, yOff+geo.TileSize), img, b.Min, draw.Src)
	}

	// Crop origin relative to the canvas top-left tile. Signed math: a
	// center too close to the canvas edge is a geometry error, never a
	// wraparound.
	center := a.projector.FractionalTileAt(box.Center, rect.Zoom())
	centerX := int((center.X - float64(outer.X)) * geo.TileSize)
	centerY := int((center.Y - float64(outer.Y)) * geo.TileSize)

	originX := centerX - box.Width/2
	originY := centerY - box.Height/2

	if originX < 0 || originY < 0 ||
		originX+box.Width > canvas.Bounds().Dx() ||
		originY+box.Height > canvas.Bounds().Dy() {
		return nil, &GeometryError{Msg: fmt.Sprintf(
			"crop origin (%d,%d) with size %dx%d falls outside the %dx%d canvas",
			originX, originY, box.Width, box.Height, canvas.Bounds().Dx(), canvas.Bounds().Dy())}
	}

	cropped := canvas.SubImage(image.Rect(originX, originY, originX+box.Width, originY+box.Height))

	var out bytes.Buffer
	if err := png.Encode(&out, cropped); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return out.Bytes(), nil
}
