package mapui

import (
	"time"

	"github.com/joeblew999/plat-soundmap/internal/draft"
	"github.com/joeblew999/plat-soundmap/internal/markers"
	"github.com/joeblew999/plat-soundmap/internal/mood"
	"github.com/joeblew999/plat-soundmap/internal/stats"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

// PinView is one pin as the page script draws it.
type PinView struct {
	ID      string        `json:"id"`
	Lat     float64       `json:"lat"`
	Lng     float64       `json:"lng"`
	Feeling mood.Feeling  `json:"feeling"`
	Style   markers.Style `json:"style"`
	Popup   string        `json:"popup"`
}

// PopupData feeds the marker-popup fragment.
type PopupData struct {
	Category     string
	CategoryIcon string
	Feeling      mood.Feeling
	FeelingLabel string
	FeelingIcon  string
	Comment      string
	Lat, Lng     float64
	AddedAt      time.Time
	AudioURL     string
}

func popupData(m markers.Marker) PopupData {
	return PopupData{
		Category:     string(m.Category),
		CategoryIcon: m.Category.Icon(),
		Feeling:      m.Feeling,
		FeelingLabel: m.Feeling.Label(),
		FeelingIcon:  m.Feeling.Icon(),
		Comment:      m.Comment,
		Lat:          m.Lat(),
		Lng:          m.Lng(),
		AddedAt:      m.AddedAt,
		AudioURL:     m.AudioURL,
	}
}

// LocationView is the user location indicator.
type LocationView struct {
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	Accuracy float64       `json:"accuracy"`
	Style    markers.Style `json:"style"`
}

// FilterView is one layer toggle button.
type FilterView struct {
	Feeling mood.Feeling
	Label   string
	Emoji   string
	Icon    string
	Active  bool
	Count   int
}

func filterViews(layers []markers.LayerInfo) []FilterView {
	out := make([]FilterView, 0, len(layers))
	for _, l := range layers {
		out = append(out, FilterView{
			Feeling: l.Feeling,
			Label:   l.Feeling.Label(),
			Emoji:   l.Feeling.Emoji(),
			Icon:    l.Feeling.Icon(),
			Active:  l.Visible,
			Count:   l.Count,
		})
	}
	return out
}

// StatsView feeds the stats-bar fragment.
type StatsView struct {
	stats.Snapshot
	Text string
}

func statsView(s stats.Snapshot) StatsView {
	return StatsView{Snapshot: s, Text: s.Text()}
}

// DraftView feeds the draft-sheet fragment.
type DraftView struct {
	Open       bool
	Lat, Lng   float64
	Categories []mood.Category
	Feelings   []FilterView
}

func draftView(d draft.Draft, open bool) DraftView {
	v := DraftView{Open: open, Categories: mood.Categories}
	if open {
		v.Lat, v.Lng = d.Lat(), d.Lng()
	}
	for _, f := range mood.Feelings {
		v.Feelings = append(v.Feelings, FilterView{Feeling: f, Label: f.Label(), Emoji: f.Emoji(), Icon: f.Icon()})
	}
	return v
}

// BasemapView tells the page which tiles to load and which theme to use.
type BasemapView struct {
	Key   surface.Basemap     `json:"key"`
	Tiles surface.BasemapInfo `json:"tiles"`
	Light bool                `json:"light"`
}
