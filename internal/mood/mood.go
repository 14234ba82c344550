// Package mood holds the fixed vocabularies of the sound map: the four
// feelings a pin can carry and the four sound categories.
package mood

import "strings"

// Feeling is the mood tag of a pin. Exactly four values exist and each one
// owns a marker layer.
type Feeling string

const (
	Relaxed  Feeling = "relaxed"
	Happy    Feeling = "happy"
	Neutral  Feeling = "neutral"
	Stressed Feeling = "stressed"
)

// Feelings lists every feeling in layer order.
var Feelings = []Feeling{Relaxed, Happy, Neutral, Stressed}

type feelingInfo struct {
	label string
	emoji string
	icon  string // lucide icon name
}

var feelingTable = map[Feeling]feelingInfo{
	Relaxed:  {label: "Opušteno", emoji: "😌", icon: "smile"},
	Happy:    {label: "Sretno", emoji: "😊", icon: "sun"},
	Neutral:  {label: "Neutralno", emoji: "😐", icon: "meh"},
	Stressed: {label: "Stresno", emoji: "😖", icon: "alert-octagon"},
}

// classifyOrder is the match priority for free text. Neutral is never
// matched explicitly; it is the fallback.
var classifyOrder = []Feeling{Relaxed, Happy, Stressed}

// Classify maps free feeling text to a Feeling by looking for the mood emoji
// in priority order: relaxed, happy, stressed. Anything else is Neutral.
func Classify(text string) Feeling {
	for _, f := range classifyOrder {
		if strings.Contains(text, feelingTable[f].emoji) {
			return f
		}
	}
	return Neutral
}

// ParseFeeling returns the Feeling named by key.
func ParseFeeling(key string) (Feeling, bool) {
	f := Feeling(strings.ToLower(strings.TrimSpace(key)))
	_, ok := feelingTable[f]
	return f, ok
}

// Label is the Croatian display word, e.g. "Sretno".
func (f Feeling) Label() string { return f.info().label }

// Emoji is the mood emoji used in feeling text.
func (f Feeling) Emoji() string { return f.info().emoji }

// Icon is the lucide icon shown on feeling tags.
func (f Feeling) Icon() string { return f.info().icon }

// DisplayLabel is the label followed by the emoji, e.g. "Sretno 😊".
func (f Feeling) DisplayLabel() string {
	info := f.info()
	return info.label + " " + info.emoji
}

func (f Feeling) info() feelingInfo {
	if info, ok := feelingTable[f]; ok {
		return info
	}
	return feelingTable[Neutral]
}
