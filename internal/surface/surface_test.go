package surface

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zagreb = orb.Point{15.981, 45.815}

func TestScreenToGeo_CenterMapsToCenter(t *testing.T) {
	v := Viewport{Center: zagreb, Zoom: 13, Width: 800, Height: 600}

	p := v.ScreenToGeo(400, 300)
	assert.InDelta(t, zagreb.Lon(), p.Lon(), 1e-9)
	assert.InDelta(t, zagreb.Lat(), p.Lat(), 1e-9)
}

func TestScreenToGeo_Orientation(t *testing.T) {
	v := Viewport{Center: zagreb, Zoom: 13, Width: 800, Height: 600}

	topLeft := v.ScreenToGeo(0, 0)
	assert.Less(t, topLeft.Lon(), zagreb.Lon(), "left of centre is west")
	assert.Greater(t, topLeft.Lat(), zagreb.Lat(), "above centre is north")
}

func TestGeoToScreen_RoundTrip(t *testing.T) {
	v := Viewport{Center: zagreb, Zoom: 15, Width: 1024, Height: 768}

	p := v.ScreenToGeo(123, 456)
	x, y := v.GeoToScreen(p)
	assert.InDelta(t, 123, x, 1e-6)
	assert.InDelta(t, 456, y, 1e-6)
}

func TestBounds(t *testing.T) {
	v := Viewport{Center: zagreb, Zoom: 13, Width: 800, Height: 600}
	b := v.Bounds()

	assert.True(t, b.Contains(zagreb))
	assert.False(t, b.Contains(orb.Point{16.5, 45.815}))
	assert.Less(t, b.Min.Lat(), b.Max.Lat())
	assert.Less(t, b.Min.Lon(), b.Max.Lon())
}

func TestMetersPerPixel_HalvesPerZoom(t *testing.T) {
	assert.InDelta(t, MetersPerPixel(10)/2, MetersPerPixel(11), 1e-9)
	assert.InDelta(t, 156543.03, MetersPerPixel(0), 0.01)
}

func TestEventKinds(t *testing.T) {
	for _, k := range []EventKind{DragStart, ZoomStart, MoveStart} {
		assert.True(t, k.InterruptsPress(), k)
		assert.False(t, k.Settles(), k)
	}
	for _, k := range []EventKind{MoveEnd, ZoomEnd, LayerAdd, LayerRemove} {
		assert.True(t, k.Settles(), k)
		assert.False(t, k.InterruptsPress(), k)
	}

	_, ok := ParseEventKind("click")
	assert.False(t, ok)
}

func TestBasemapTheme(t *testing.T) {
	b, err := ParseBasemap("light")
	require.NoError(t, err)
	assert.True(t, b.LightTheme())
	assert.False(t, Dark.LightTheme())
	assert.False(t, Topo.LightTheme())
	assert.Equal(t, 17, Topo.Info().MaxZoom)

	_, err = ParseBasemap("satellite")
	assert.Error(t, err)
}

func TestViewport_Valid(t *testing.T) {
	v := Viewport{Center: zagreb, Zoom: 13, Width: 800, Height: 600}
	assert.True(t, v.Valid())

	sized := v
	sized.Width = 0
	assert.False(t, sized.Valid(), "no pixel size reported yet")

	nan := v
	nan.Center = orb.Point{math.NaN(), zagreb.Lat()}
	assert.False(t, nan.Valid())

	inf := v
	inf.Center = orb.Point{zagreb.Lon(), math.Inf(1)}
	assert.False(t, inf.Valid())
}
