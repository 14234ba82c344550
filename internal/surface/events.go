package surface

// EventKind is a lifecycle event fired by the map surface.
type EventKind string

const (
	MoveStart   EventKind = "movestart"
	MoveEnd     EventKind = "moveend"
	ZoomStart   EventKind = "zoomstart"
	ZoomEnd     EventKind = "zoomend"
	DragStart   EventKind = "dragstart"
	LayerAdd    EventKind = "layeradd"
	LayerRemove EventKind = "layerremove"
)

// Event is one surface notification. Layer names the affected layer for
// LayerAdd and LayerRemove.
type Event struct {
	Kind  EventKind
	Layer string
}

// InterruptsPress reports whether the event starts a native map gesture
// that must cancel any press in progress.
func (k EventKind) InterruptsPress() bool {
	switch k {
	case DragStart, ZoomStart, MoveStart:
		return true
	}
	return false
}

// Settles reports whether the event changes what is visible and so
// requires the viewport statistics to be recomputed.
func (k EventKind) Settles() bool {
	switch k {
	case MoveEnd, ZoomEnd, LayerAdd, LayerRemove:
		return true
	}
	return false
}

// ParseEventKind returns the kind for a browser event name.
func ParseEventKind(name string) (EventKind, bool) {
	k := EventKind(name)
	switch k {
	case MoveStart, MoveEnd, ZoomStart, ZoomEnd, DragStart, LayerAdd, LayerRemove:
		return k, true
	}
	return "", false
}
