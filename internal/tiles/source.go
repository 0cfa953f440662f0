// Package tiles retrieves raster map tiles from public slippy-map
// sources and assembles them into a single cropped PNG centered on a
// geographic point.
package tiles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// Source resolves a tile index to a request URL.
type Source interface {
	URL(tile maptile.Tile) string
}

// URLTemplate is a Source defined directly by a URL template with
// {z}, {x} and {y} placeholders.
type URLTemplate string

// URL substitutes zoom, column and row into the template.
func (u URLTemplate) URL(tile maptile.Tile) string {
	url := string(u)
	url = strings.ReplaceAll(url, "{z}", strconv.Itoa(int(tile.Z)))
	url = strings.ReplaceAll(url, "{x}", strconv.FormatUint(uint64(tile.X), 10))
	url = strings.ReplaceAll(url, "{y}", strconv.FormatUint(uint64(tile.Y), 10))
	// Handle {s} for subdomains (simple implementation)
	if strings.Contains(url, "{s}") {
		subdomain := string(rune('a' + (tile.X+tile.Y)%3))
		url = strings.ReplaceAll(url, "{s}", subdomain)
	}
	return url
}

// TileSet identifies one of the built-in tile providers.
type TileSet string

// Built-in providers.
const (
	TileSetOSM       TileSet = "osm"
	TileSetSwisstopo TileSet = "swisstopo"
)

var tileSetTemplates = map[TileSet]URLTemplate{
	TileSetOSM:       "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	TileSetSwisstopo: "https://wmts.geo.admin.ch/1.0.0/ch.swisstopo.landeskarte-farbe-10/default/current/3857/{z}/{x}/{y}.png",
}

// ParseTileSet maps a provider name to its TileSet identifier.
func ParseTileSet(s string) (TileSet, error) {
	t := TileSet(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tileSetTemplates[t]; !ok {
		return "", fmt.Errorf("unknown tile set %q", s)
	}
	return t, nil
}

// URL builds the request URL for a single tile.
func (t TileSet) URL(tile maptile.Tile) string {
	return tileSetTemplates[t].URL(tile)
}

// DefaultSources lists the built-in providers by name.
func DefaultSources() map[string]Source {
	sources := make(map[string]Source, len(tileSetTemplates))
	for name := range tileSetTemplates {
		sources[string(name)] = name
	}
	return sources
}
