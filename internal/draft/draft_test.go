package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

func TestFlow_CompleteDeliversToSlot(t *testing.T) {
	f := NewFlow()
	var got []markers.Record
	d := f.Open(orb.Point{15.981, 45.815}, func(_ context.Context, rec markers.Record) error {
		got = append(got, rec)
		return nil
	})
	assert.NotEmpty(t, d.ID)

	rec, err := f.Complete(context.Background(), Fields{Category: "Voda", Feeling: "Sretno 😊", AudioURL: "https://x/a.mp3"})
	require.NoError(t, err)
	assert.Equal(t, markers.Coord(45.815), rec.Lat)
	assert.Equal(t, markers.Coord(15.981), rec.Lng)
	assert.Equal(t, []markers.Record{rec}, got)

	_, open := f.Current()
	assert.False(t, open)
}

func TestFlow_CompleteWithoutDraft(t *testing.T) {
	f := NewFlow()
	_, err := f.Complete(context.Background(), Fields{AudioURL: "u"})
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestFlow_AudioRequiredKeepsDraft(t *testing.T) {
	f := NewFlow()
	f.Open(orb.Point{1, 2}, nil)

	_, err := f.Complete(context.Background(), Fields{Category: "Buka"})
	assert.ErrorIs(t, err, ErrNoAudio)
	_, open := f.Current()
	assert.True(t, open)
}

func TestFlow_OpenReplacesDraft(t *testing.T) {
	f := NewFlow()
	first := f.Open(orb.Point{1, 1}, nil)
	second := f.Open(orb.Point{2, 2}, nil)
	assert.NotEqual(t, first.ID, second.ID)

	cur, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, orb.Point{2, 2}, cur.Position)

	assert.True(t, f.Close())
	assert.False(t, f.Close())
}

func TestFlow_SlotErrorIsReturned(t *testing.T) {
	f := NewFlow()
	boom := errors.New("boom")
	f.Open(orb.Point{1, 1}, func(context.Context, markers.Record) error { return boom })

	rec, err := f.Complete(context.Background(), Fields{AudioURL: "u"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "u", rec.AudioURL)
	_, open := f.Current()
	assert.False(t, open, "a slot failure does not reopen the draft")
}
