package markers

// Radius is the circle radius of every pin, in pixels.
const Radius = 8

// LightBorder is the pin outline colour in the light theme.
const LightBorder = "#333"

// Style is the visual style of a pin. It is always derived from the pin's
// category colour and the theme, never edited directly.
type Style struct {
	FillColor   string  `json:"fillColor"`
	BorderColor string  `json:"color"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
	Radius      int     `json:"radius"`
}

// StyleFor returns the style of a pin with the given category colour.
// The dark theme outlines the pin in its own colour to make it glow.
func StyleFor(color string, light bool) Style {
	if light {
		return Style{
			FillColor:   color,
			BorderColor: LightBorder,
			Weight:      1,
			Opacity:     0.8,
			FillOpacity: 0.9,
			Radius:      Radius,
		}
	}
	return Style{
		FillColor:   color,
		BorderColor: color,
		Weight:      2,
		Opacity:     1,
		FillOpacity: 0.6,
		Radius:      Radius,
	}
}

// locationColor is the gold of the user location indicator.
const locationColor = "#FFD700"

// LocationStyle is the fixed style of the user location indicator.
func LocationStyle() Style {
	return Style{
		FillColor:   locationColor,
		BorderColor: "#fff",
		Weight:      2,
		Opacity:     1,
		FillOpacity: 0.8,
		Radius:      Radius,
	}
}
