package tiles

import (
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileSetURL(t *testing.T) {
	url := TileSetOSM.URL(maptile.New(3366, 2431, 12))
	assert.Equal(t, "https://tile.openstreetmap.org/12/3366/2431.png", url)

	url = TileSetSwisstopo.URL(maptile.New(536, 358, 10))
	assert.Equal(t, "https://wmts.geo.admin.ch/1.0.0/ch.swisstopo.landeskarte-farbe-10/default/current/3857/10/536/358.png", url)
}

func TestURLTemplateSubdomainRotation(t *testing.T) {
	tmpl := URLTemplate("https://{s}.tiles.example.com/{z}/{x}/{y}.png")

	assert.Equal(t, "https://a.tiles.example.com/3/1/2.png", tmpl.URL(maptile.New(1, 2, 3)))
	assert.Equal(t, "https://b.tiles.example.com/3/2/2.png", tmpl.URL(maptile.New(2, 2, 3)))
}

func TestParseTileSet(t *testing.T) {
	set, err := ParseTileSet("osm")
	require.NoError(t, err)
	assert.Equal(t, TileSetOSM, set)

	set, err = ParseTileSet(" Swisstopo ")
	require.NoError(t, err)
	assert.Equal(t, TileSetSwisstopo, set)

	_, err = ParseTileSet("bing")
	assert.Error(t, err)
}

func TestDefaultSourcesCoversAllProviders(t *testing.T) {
	sources := DefaultSources()

	require.Len(t, sources, 2)
	assert.Contains(t, sources, "osm")
	assert.Contains(t, sources, "swisstopo")
}
