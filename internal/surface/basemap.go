package surface

import "fmt"

// Basemap is a raster tile layer the map can show underneath the pins.
type Basemap string

const (
	Dark  Basemap = "dark"
	Light Basemap = "light"
	Topo  Basemap = "topo"
)

// DefaultBasemap is shown at startup.
const DefaultBasemap = Dark

// Basemaps lists the available basemaps in menu order.
var Basemaps = []Basemap{Dark, Light, Topo}

// BasemapInfo describes how the browser loads a basemap.
type BasemapInfo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Subdomains  string `json:"subdomains,omitempty"`
	MaxZoom     int    `json:"maxZoom"`
	Attribution string `json:"attribution"`
}

const (
	osmAttribution   = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	cartoAttribution = osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`
)

var basemapTable = map[Basemap]BasemapInfo{
	Dark: {
		Name:        "Dark Matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Subdomains:  "abcd",
		MaxZoom:     20,
		Attribution: cartoAttribution,
	},
	Light: {
		Name:        "Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Subdomains:  "abcd",
		MaxZoom:     20,
		Attribution: cartoAttribution,
	},
	Topo: {
		Name:        "OpenTopoMap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		MaxZoom:     17,
		Attribution: `Map data: ` + osmAttribution + `, <a href="http://viewfinderpanoramas.org">SRTM</a> | Map style: &copy; <a href="https://opentopomap.org">OpenTopoMap</a>`,
	},
}

// ParseBasemap returns the basemap for a menu key.
func ParseBasemap(key string) (Basemap, error) {
	b := Basemap(key)
	if _, ok := basemapTable[b]; !ok {
		return "", fmt.Errorf("unknown basemap %q", key)
	}
	return b, nil
}

// Info returns the tile source of b.
func (b Basemap) Info() BasemapInfo {
	return basemapTable[b]
}

// LightTheme reports whether pins are drawn in the light theme over b.
// Only the light basemap uses it; topo keeps the dark UI.
func (b Basemap) LightTheme() bool {
	return b == Light
}
