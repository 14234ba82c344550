package mapui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-soundmap/internal/draft"
	"github.com/joeblew999/plat-soundmap/internal/humastar"
	"github.com/joeblew999/plat-soundmap/internal/service"
)

// MaxClipBytes bounds a recording upload.
const MaxClipBytes = 20 << 20

// Draft sheet status texts.
const (
	SavingText    = "Spremanje..."
	UploadingText = "Upload snimke na Cloud..."
	SavedText     = "Zvuk spremljen."
)

// RecordingInput is the draft sheet posted as a multipart form with the
// recorded clip in the "clip" part.
type RecordingInput struct {
	SessionInput
	RawBody multipart.Form
}

func fieldsFrom(sig humastar.Signals) draft.Fields {
	return draft.Fields{
		Category: sig.String(sigCat),
		Feeling:  sig.String(sigFeeling),
		Comment:  sig.String(sigComment),
		AudioURL: sig.String(sigAudio),
	}
}

// CloseDraft discards the open draft.
func (h *Handler) CloseDraft(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.action(ctx, input, func(s *service.Session, _ humastar.Signals) error {
		s.CloseDraft()
		return nil
	})
}

// SubmitDraft completes the open draft with an already uploaded clip URL.
func (h *Handler) SubmitDraft(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	sig, err := input.MustParseSignals()
	if err != nil {
		return nil, err
	}
	s := h.session(ctx, input.SessionInput)
	return h.submit(ctx, s, service.Submission{Fields: fieldsFrom(sig)}), nil
}

// SubmitRecording completes the open draft, uploading the recorded clip
// first when no clip URL was given.
func (h *Handler) SubmitRecording(ctx context.Context, input *RecordingInput) (*huma.StreamResponse, error) {
	form := &input.RawBody
	sub := service.Submission{Fields: draft.Fields{
		Category: formValue(form, "category"),
		Feeling:  formValue(form, "feeling"),
		Comment:  formValue(form, "comment"),
		AudioURL: formValue(form, "audioUrl"),
	}}
	clip, err := readClip(form)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid recording: " + err.Error())
	}
	sub.Recording = clip

	s := h.session(ctx, input.SessionInput)
	return h.submit(ctx, s, sub), nil
}

// submit streams the sheet status while the submission runs. Upload and
// save failures reach the page as notices on the event stream.
func (h *Handler) submit(ctx context.Context, s *service.Session, sub service.Submission) *huma.StreamResponse {
	return h.Stream(func(sse humastar.SSE) {
		status := SavingText
		if sub.AudioURL == "" && sub.Recording != nil {
			status = UploadingText
		}
		sse.Signals(map[string]any{"submitting": true, "sheetstatus": status})

		err := s.Submit(ctx, sub)
		sse.Signals(map[string]any{"submitting": false, "sheetstatus": ""})
		switch {
		case errors.Is(err, draft.ErrNoDraft), errors.Is(err, draft.ErrNoAudio):
			sse.Error(err.Error())
		case err != nil:
			h.log.Warn().Err(err).Str("session", s.ID).Msg("submission failed")
		default:
			sse.Success(SavedText)
		}
	})
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// readClip returns the "clip" part, or nil when none was sent.
func readClip(form *multipart.Form) (*service.Clip, error) {
	files := form.File["clip"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > MaxClipBytes {
		return nil, fmt.Errorf("clip exceeds %d bytes", MaxClipBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.Clip{Filename: fh.Filename, Data: data}, nil
}
