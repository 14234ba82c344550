package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

// Clip is a recorded audio clip awaiting upload.
type Clip struct {
	Filename string
	Data     []byte
}

// DefaultClipName is the upload name of browser recordings.
const DefaultClipName = "recording.webm"

// Submitter turns completed records into persisted ones. Rendering is
// optimistic: the pin appears before the remote store answers and stays
// even if it refuses.
type Submitter struct {
	sheet Appender
	media Uploader
	log   zerolog.Logger
}

// NewSubmitter creates a submitter. media may be nil when clips are only
// linked by URL.
func NewSubmitter(sheet Appender, media Uploader, log zerolog.Logger) *Submitter {
	return &Submitter{sheet: sheet, media: media, log: log}
}

// UploadClip stores a recorded clip and returns its URL.
func (p *Submitter) UploadClip(ctx context.Context, clip Clip) (string, error) {
	if p.media == nil {
		return "", fmt.Errorf("%w: no media uploader configured", ErrUpload)
	}
	name := clip.Filename
	if name == "" {
		name = DefaultClipName
	}
	url, err := p.media.Upload(ctx, name, bytes.NewReader(clip.Data))
	if err != nil {
		p.log.Error().Err(err).Msg("clip upload failed")
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	p.log.Info().Str("url", url).Msg("clip uploaded")
	return url, nil
}

// Submit renders rec through render, then appends it remotely.
func (p *Submitter) Submit(ctx context.Context, rec markers.Record, render func(markers.Record)) error {
	if render != nil {
		render(rec)
	}
	if err := p.sheet.Append(ctx, rec); err != nil {
		p.log.Error().Err(err).Str("category", rec.Category).Msg("append failed")
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	p.log.Info().Str("category", rec.Category).Str("feeling", rec.Feeling).Msg("marker saved")
	return nil
}
