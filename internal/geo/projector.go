package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Projector converts geographic points into tile-space.
type Projector interface {
	FractionalTileAt(p Point, z maptile.Zoom) FractionalTile
}

// equatorResolution is the ground resolution in meters per pixel at
// zoom 0 on the equator (2*pi*6378137 / 256).
const equatorResolution = 156543.03392

// maxZoom is the finest grid the supported tile sources serve.
const maxZoom = 19

// WebMercator projects points onto the standard slippy-map grid
// (EPSG:3857).
type WebMercator struct{}

// FractionalTileAt projects p into tile-space at zoom z.
func (WebMercator) FractionalTileAt(p Point, z maptile.Zoom) FractionalTile {
	f := maptile.Fraction(orb.Point{p.Lon, p.Lat}, z)
	return FractionalTile{X: f[0], Y: f[1], Z: z}
}

// groundResolution returns meters per pixel at the given latitude and
// zoom level.
func groundResolution(lat float64, z maptile.Zoom) float64 {
	return equatorResolution * math.Cos(lat*math.Pi/180) / float64(uint64(1)<<z)
}

// RectAround computes the tile-space rectangle that, once fetched and
// cropped, yields an imagePixels x imagePixels snapshot centered on
// center and spanning at least radiusKm on each side of it.
//
// The zoom is the smallest one at which 2*radiusKm covers imagePixels
// pixels, capped at maxZoom. The rectangle itself spans exactly
// imagePixels of tile-space around the center; the inclusive
// floor/ceil tile enumeration downstream provides the overscan the
// centered crop needs.
func (w WebMercator) RectAround(center Point, radiusKm float64, imagePixels int) SizedTileRect {
	zoom := maptile.Zoom(maxZoom)
	for z := maptile.Zoom(0); z <= maxZoom; z++ {
		span := 2 * radiusKm * 1000 / groundResolution(center.Lat, z)
		if span >= float64(imagePixels) {
			zoom = z
			break
		}
	}

	c := w.FractionalTileAt(center, zoom)
	half := float64(imagePixels) / 2 / TileSize

	return SizedTileRect{
		Rect: TileRect{
			TopLeft:     FractionalTile{X: c.X - half, Y: c.Y - half, Z: zoom},
			BottomRight: FractionalTile{X: c.X + half, Y: c.Y + half, Z: zoom},
		},
		Center: center,
		Width:  imagePixels,
		Height: imagePixels,
	}
}
