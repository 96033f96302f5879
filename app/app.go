// Package app is the web application: a single entry point that renders the
// root template, and the HTTP host that dispatches requests to it.
package app

import (
	"context"
	"net/http"

	"github.com/cpcf/gasket/config"
	"github.com/cpcf/gasket/engine"
)

type App struct {
	engine   *engine.Engine
	root     string
	title    string
	viewport string
}

func New(eng *engine.Engine, cfg config.ServerConfig) *App {
	return &App{
		engine:   eng,
		root:     cfg.RootTemplate,
		title:    cfg.Title,
		viewport: cfg.Viewport,
	}
}

// DoGet renders the root template without props and returns it as an
// embeddable page. Render failures are returned unchanged.
func (a *App) DoGet(_ context.Context, _ *http.Request) (*Response, error) {
	body, err := a.engine.RenderPage(a.root, nil)
	if err != nil {
		return nil, err
	}

	resp := NewResponse(body).
		SetTitle(a.title).
		SetFrameOptions(FrameAllowAll)
	if a.viewport != "" {
		resp.AddMetaTag("viewport", a.viewport)
	}
	return resp, nil
}

// Register adds the app's entry point to reg.
func (a *App) Register(reg *Registry) error {
	return reg.Register(EntryGet, a.DoGet)
}
