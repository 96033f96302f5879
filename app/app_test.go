package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/cpcf/gasket/config"
	"github.com/cpcf/gasket/engine"
	"github.com/cpcf/gasket/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newApp(t *testing.T, fsys fstest.MapFS) *App {
	t.Helper()
	eng := engine.New(engine.NewFSLoader(fsys, ".html"), engine.WithLogger(discard))
	return New(eng, config.Default().Server)
}

func TestDoGet(t *testing.T) {
	a := newApp(t, fstest.MapFS{
		"Index.html": {Data: []byte(`<main>{{ include "Hello" (dict "name" "world") }}</main>`)},
		"Hello.html": {Data: []byte(`hello {{ .name }}`)},
	})

	resp, err := a.DoGet(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, "<main>hello world</main>", resp.Body)
	assert.Equal(t, "Gasket App", resp.Title)
	assert.Equal(t, []MetaTag{{Name: "viewport", Content: "width=device-width, initial-scale=1"}}, resp.Meta)
	assert.Equal(t, FrameAllowAll, resp.FrameOptions)
}

func TestDoGetPropagatesRenderError(t *testing.T) {
	a := newApp(t, fstest.MapFS{})

	_, err := a.DoGet(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrTemplateNotFound))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	a := newApp(t, fstest.MapFS{"Index.html": {Data: []byte("x")}})

	require.NoError(t, a.Register(reg))
	assert.Error(t, a.Register(reg), "duplicate registration")
	assert.Equal(t, []string{EntryGet}, reg.Names())

	_, err := reg.Dispatch(context.Background(), "doPost", nil)
	assert.True(t, errors.Is(err, ErrNoEntryPoint))

	resp, err := reg.Dispatch(context.Background(), EntryGet, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Body)
}

func TestResponseWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewResponse("<p>hi</p>").
		SetTitle("T").
		AddMetaTag("viewport", "width=device-width").
		SetFrameOptions(FrameAllowAll).
		Write(rec)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frame-ancestors *", rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
	assert.Equal(t,
		`<html><head><title>T</title><meta name="viewport" content="width=device-width"/></head><body><p>hi</p></body></html>`,
		rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, NewResponse("raw").Write(rec))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "raw", rec.Body.String())
}

func TestResponseWriteKeepsRenderedBody(t *testing.T) {
	body := `<p>intro<div>card</div></p><table><span>x</span><tr><td>1</td></tr></table>`

	rec := httptest.NewRecorder()
	require.NoError(t, NewResponse(body).SetTitle("T").Write(rec))
	assert.Equal(t, `<html><head><title>T</title></head><body>`+body+`</body></html>`, rec.Body.String())

	page := `<!DOCTYPE html><html><head></head><body>` + body + `</body></html>`
	rec = httptest.NewRecorder()
	require.NoError(t, NewResponse(page).SetTitle("T").Write(rec))
	assert.Equal(t, `<!DOCTYPE html><html><head><title>T</title></head><body>`+body+`</body></html>`, rec.Body.String())
}

func newTestServer(t *testing.T, fsys fstest.MapFS, opts ...ServerOption) (*Server, *bytes.Buffer) {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, newApp(t, fsys).Register(reg))

	var logs bytes.Buffer
	opts = append([]ServerOption{WithServerLogger(slog.New(slog.NewTextHandler(&logs, nil)))}, opts...)
	return NewServer(":0", reg, opts...), &logs
}

func TestServerServesEntryPoint(t *testing.T) {
	srv, _ := newTestServer(t, fstest.MapFS{
		"Index.html": {Data: []byte(`<!DOCTYPE html><html><head></head><body>{{ include "Nav" }}</body></html>`)},
		"Nav.html":   {Data: []byte(`<nav>home</nav>`)},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "frame-ancestors *", rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), "<title>Gasket App</title>")
	assert.Contains(t, rec.Body.String(), `<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	assert.Contains(t, rec.Body.String(), "<body><nav>home</nav></body>")
}

func TestServerRenderFailure(t *testing.T) {
	srv, logs := newTestServer(t, fstest.MapFS{
		"Index.html": {Data: []byte(`{{ include "Missing" }}`)},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "unable to open the page")
	assert.NotContains(t, rec.Body.String(), "Missing")
	assert.Contains(t, logs.String(), "entry point failed")
}

func TestServerOnlyRoutesRoot(t *testing.T) {
	srv, _ := newTestServer(t, fstest.MapFS{"Index.html": {Data: []byte("x")}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerMetrics(t *testing.T) {
	rec := metrics.NewPrometheusRecorder(nil)
	reg := NewRegistry()
	eng := engine.New(engine.NewFSLoader(fstest.MapFS{"Index.html": {Data: []byte("x")}}, ".html"),
		engine.WithLogger(discard), engine.WithRecorder(rec))
	require.NoError(t, New(eng, config.Default().Server).Register(reg))

	srv := NewServer(":0", reg, WithServerLogger(discard), WithMetricsHandler(rec.Handler()))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gasket_render_duration_seconds_count{template="Index"} 1`)
}

func TestServerRunShutsDown(t *testing.T) {
	srv, _ := newTestServer(t, fstest.MapFS{"Index.html": {Data: []byte("x")}})
	srv.server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
