package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Feeling
	}{
		{"Opušteno 😌", Relaxed},
		{"😊", Happy},
		{"Stresno 😖", Stressed},
		{"Neutralno 😐", Neutral},
		{"", Neutral},
		{"no emoji at all", Neutral},
		// relaxed outranks happy and stressed
		{"😖 😊 😌", Relaxed},
		// happy outranks stressed
		{"😖😊", Happy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text), "Classify(%q)", tt.text)
	}
}

func TestFeelingLabels(t *testing.T) {
	assert.Equal(t, "Sretno 😊", Happy.DisplayLabel())
	assert.Equal(t, "Opušteno 😌", Relaxed.DisplayLabel())
	assert.Equal(t, "Stresno 😖", Stressed.DisplayLabel())
	assert.Equal(t, "Neutralno 😐", Neutral.DisplayLabel())
	assert.Equal(t, "alert-octagon", Stressed.Icon())

	// unknown values fall back to neutral presentation
	assert.Equal(t, "Neutralno", Feeling("bogus").Label())
}

func TestParseFeeling(t *testing.T) {
	f, ok := ParseFeeling(" Happy ")
	assert.True(t, ok)
	assert.Equal(t, Happy, f)

	_, ok = ParseFeeling("angry")
	assert.False(t, ok)
}

func TestCategoryDefaults(t *testing.T) {
	assert.Equal(t, "#3b82f6", Voda.Color())
	assert.Equal(t, "🌲", Priroda.Icon())
	assert.True(t, Buka.Known())

	unknown := Category("Ptice")
	assert.Equal(t, DefaultColor, unknown.Color())
	assert.Equal(t, DefaultIcon, unknown.Icon())
	assert.False(t, unknown.Known())
}
