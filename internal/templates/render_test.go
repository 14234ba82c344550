package templates

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFragment(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestRenderer_RenderWithFuncs(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "popup.html",
		`{{define "popup-footer"}}<span>{{coord .Lat}}, {{coord .Lng}}</span><span>{{hrdate .At}}</span>{{end}}`)

	r, err := New(dir)
	require.NoError(t, err)

	html, err := r.Render("popup-footer", map[string]any{
		"Lat": 45.815123,
		"Lng": 15.9,
		"At":  time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, `<span>45.8151, 15.9</span><span>18. 10. 2026.</span>`, html)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "a.html", `{{define "a"}}a{{end}}`)
	r, err := New(dir)
	require.NoError(t, err)

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
	assert.Panics(t, func() { r.MustRender("missing", nil) })
}

func TestRenderer_ReloadKeepsOldOnError(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "a.html", `{{define "a"}}one{{end}}`)
	r, err := New(dir)
	require.NoError(t, err)

	writeFragment(t, dir, "a.html", `{{define "a"}}two{{end}}`)
	require.NoError(t, r.Reload())
	assert.Equal(t, "two", r.MustRender("a", nil))

	writeFragment(t, dir, "a.html", `{{define "a"}}{{broken{{end}}`)
	assert.Error(t, r.Reload())
	assert.Equal(t, "two", r.MustRender("a", nil))
}

func TestCoord(t *testing.T) {
	assert.Equal(t, "45.8151", Coord(45.815123))
	assert.Equal(t, "15.98", Coord(15.98))
	assert.Equal(t, "-0.1234", Coord(-0.123456))
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFragment(t, dir, "a.html", `{{define "a"}}one{{end}}`)
	r, err := New(dir)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w := NewWatcher(r, zerolog.Nop(), func(err error) { reloaded <- err })
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// the watch is registered asynchronously; keep writing until it sees one
	require.Eventually(t, func() bool {
		writeFragment(t, dir, "a.html", `{{define "a"}}two{{end}}`)
		select {
		case err := <-reloaded:
			return err == nil
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, "two", r.MustRender("a", nil))

	cancel()
	assert.NoError(t, <-done)
}
