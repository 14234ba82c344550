package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

func pins(pairs ...string) []markers.Marker {
	s := markers.NewStore()
	var out []markers.Marker
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, s.Add(markers.Record{Category: pairs[i], Feeling: pairs[i+1]}))
	}
	return out
}

func TestRecompute_Dominant(t *testing.T) {
	got := Recompute(pins("Voda", "😊", "Voda", "😖", "Priroda", "😊"))
	assert.Equal(t, Snapshot{Total: 3, DominantCategory: "Voda", DominantFeeling: "Sretno 😊"}, got)
	assert.Equal(t, "Voda · Sretno 😊", got.Text())
}

func TestRecompute_TiesGoToFirstSeen(t *testing.T) {
	got := Recompute(pins("Buka", "😖", "Voda", "😌", "Voda", "😖", "Buka", "😌"))
	assert.Equal(t, "Buka", got.DominantCategory)
	assert.Equal(t, "Stresno 😖", got.DominantFeeling)

	got = Recompute(pins("Ljudi", "😐", "Priroda", "😊"))
	assert.Equal(t, "Ljudi", got.DominantCategory)
	assert.Equal(t, "Neutralno 😐", got.DominantFeeling)
}

func TestRecompute_Empty(t *testing.T) {
	for _, in := range [][]markers.Marker{nil, {}} {
		got := Recompute(in)
		assert.True(t, got.Empty)
		assert.Zero(t, got.Total)
		assert.Empty(t, got.DominantCategory)
		assert.Equal(t, EmptyText, got.Text())
	}
}

func TestRecompute_UnknownAndUnmatched(t *testing.T) {
	got := Recompute(pins("", "bez emojija", "", "", "Voda", "😊"))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, "Nepoznato", got.DominantCategory)
	assert.Equal(t, "Neutralno 😐", got.DominantFeeling)
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	in := pins("Voda", "😊")
	before := in[0]
	Recompute(in)
	Recompute(in)
	assert.Equal(t, before, in[0])
}
