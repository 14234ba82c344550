// Package service runs the sound map: it keeps one map session per browser,
// loads records cache-first and pushes submissions to the remote store.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

var (
	// ErrNoData is returned when neither the network nor the cache has
	// records.
	ErrNoData = errors.New("no marker data available")
	// ErrNotPersisted wraps a failed remote append. The pin is still
	// rendered locally.
	ErrNotPersisted = errors.New("marker not persisted")
	// ErrUnknownSession is returned for an unknown session ID.
	ErrUnknownSession = errors.New("unknown session")
	// ErrUpload wraps a failed clip upload. The draft stays open.
	ErrUpload = errors.New("clip upload failed")
)

// LoadFailedNotice is shown when nothing could be loaded.
const LoadFailedNotice = "Nije moguće učitati podatke. Prikazujem mapu."

// SaveFailedNotice is shown when a submission could not be stored remotely.
const SaveFailedNotice = "Greška pri spremanju. Provjerite konzolu."

// UploadFailedNotice is shown when a recorded clip could not be uploaded.
const UploadFailedNotice = "Greška pri uploadu snimke. Pokušajte ponovno."

// Fetcher lists the remotely stored records.
type Fetcher interface {
	Fetch(ctx context.Context) ([]markers.Record, error)
}

// Appender stores one record remotely.
type Appender interface {
	Append(ctx context.Context, rec markers.Record) error
}

// Uploader stores a clip and returns its playable URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, clip io.Reader) (string, error)
}

// CacheSlot is the local mirror of the last fetched list.
type CacheSlot interface {
	Load(ctx context.Context) ([]markers.Record, bool, error)
	Store(ctx context.Context, recs []markers.Record) error
}
