// Package surface models the map surface the browser renders: the current
// viewport, its projection between screen pixels and coordinates, the
// lifecycle events it emits and the available basemaps.
package surface

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// TileSize is the pixel size of one web map tile.
const TileSize = 256

const earthRadius = 6378137.0

// Viewport is the visible region of the map: a centre, a zoom level and the
// pixel size of the map container. Screen coordinates are container
// relative with the origin at the top-left corner.
type Viewport struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// MetersPerPixel returns the Web Mercator ground resolution at zoom.
func MetersPerPixel(zoom float64) float64 {
	return 2 * math.Pi * earthRadius / (TileSize * math.Pow(2, zoom))
}

// ScreenToGeo converts a container point to a coordinate.
func (v Viewport) ScreenToGeo(x, y float64) orb.Point {
	c := project.WGS84.ToMercator(v.Center)
	res := MetersPerPixel(v.Zoom)
	m := orb.Point{
		c.X() + (x-v.Width/2)*res,
		c.Y() - (y-v.Height/2)*res,
	}
	return project.Mercator.ToWGS84(m)
}

// GeoToScreen converts a coordinate to a container point.
func (v Viewport) GeoToScreen(p orb.Point) (x, y float64) {
	c := project.WGS84.ToMercator(v.Center)
	m := project.WGS84.ToMercator(p)
	res := MetersPerPixel(v.Zoom)
	x = v.Width/2 + (m.X()-c.X())/res
	y = v.Height/2 - (m.Y()-c.Y())/res
	return x, y
}

// Bounds returns the geographic box covered by the container.
func (v Viewport) Bounds() orb.Bound {
	nw := v.ScreenToGeo(0, 0)
	se := v.ScreenToGeo(v.Width, v.Height)
	return orb.Bound{
		Min: orb.Point{nw.Lon(), se.Lat()},
		Max: orb.Point{se.Lon(), nw.Lat()},
	}
}

// Valid reports whether the viewport has a usable size, zoom and a finite
// centre.
func (v Viewport) Valid() bool {
	if v.Width <= 0 || v.Height <= 0 || v.Zoom < 0 {
		return false
	}
	for _, c := range v.Center {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
