// Package geo holds the geographic and tile-space coordinate types
// shared by the tile retrieval and mosaic code, plus the Web-Mercator
// projector that maps between them.
package geo

import (
	"math"

	"github.com/paulmach/orb/maptile"
)

// TileSize is the pixel edge length of a slippy-map tile.
const TileSize = 256

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// FractionalTile is the continuous tile-space position of a point at a
// zoom level. The integer parts index a tile, the fractional parts
// locate the point within it.
type FractionalTile struct {
	X float64
	Y float64
	Z maptile.Zoom
}

// Tile returns the tile containing the position.
func (f FractionalTile) Tile() maptile.Tile {
	return maptile.New(uint32(math.Floor(f.X)), uint32(math.Floor(f.Y)), f.Z)
}

// TileRect is an axis-aligned rectangle in tile-space. Both corners
// share one zoom level and TopLeft is never below or right of
// BottomRight.
type TileRect struct {
	TopLeft     FractionalTile
	BottomRight FractionalTile
}

// Zoom returns the zoom level of the rectangle.
func (r TileRect) Zoom() maptile.Zoom { return r.TopLeft.Z }

// SizedTileRect couples a tile-space rectangle with the point it was
// built around and the output size the caller asked for.
type SizedTileRect struct {
	Rect   TileRect
	Center Point
	Width  int
	Height int
}

// OuterTopLeft is the floor-rounded top-left tile of the rectangle.
func (s SizedTileRect) OuterTopLeft() maptile.Tile {
	return s.Rect.TopLeft.Tile()
}
