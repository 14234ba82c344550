package mood

// Category is the kind of sound recorded at a pin. Values outside the known
// set are kept verbatim and rendered with defaults.
type Category string

const (
	Priroda Category = "Priroda"
	Voda    Category = "Voda"
	Ljudi   Category = "Ljudi"
	Buka    Category = "Buka"
)

// Categories lists the known categories in menu order.
var Categories = []Category{Priroda, Voda, Ljudi, Buka}

const (
	// DefaultColor is used for categories missing from the colour table.
	DefaultColor = "#ffffff"
	// DefaultIcon is used for categories missing from the icon table.
	DefaultIcon = "📍"
	// UnknownCategory labels an empty category in statistics.
	UnknownCategory = "Nepoznato"
)

var categoryColors = map[Category]string{
	Priroda: "#22c55e",
	Voda:    "#3b82f6",
	Ljudi:   "#eab308",
	Buka:    "#ef4444",
}

var categoryIcons = map[Category]string{
	Priroda: "🌲",
	Voda:    "💧",
	Ljudi:   "☕",
	Buka:    "📢",
}

// Color returns the fixed display colour of c, or DefaultColor.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return DefaultColor
}

// Icon returns the emoji shown in popup headers, or DefaultIcon.
func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return DefaultIcon
}

// Known reports whether c is one of the four categories.
func (c Category) Known() bool {
	_, ok := categoryColors[c]
	return ok
}
