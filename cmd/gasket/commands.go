package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/cpcf/gasket/app"
	"github.com/cpcf/gasket/build"
	"github.com/cpcf/gasket/config"
	"github.com/cpcf/gasket/engine"
	"github.com/cpcf/gasket/metrics"
	"github.com/cpcf/gasket/render"
)

type BuildCmd struct {
	Watch  bool   `short:"w" help:"Rebuild when the source tree changes"`
	Output string `short:"o" help:"Output directory (overrides build.output_dir)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Build.OutputDir = b.Output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline := build.New(cfg.Build, build.WithLogger(g.Logger))

	if !b.Watch {
		_, err := pipeline.Run(ctx)
		return err
	}

	watcher := build.NewWatcher(pipeline, cfg.Build.Debounce)
	return watcher.Watch(ctx)
}

type ServeCmd struct {
	Addr string `short:"a" help:"Listen address (overrides server.addr)"`
	Dev  bool   `help:"Disable the template cache so edits show up on reload"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Dev {
		cfg.Server.Cache = false
	}

	var serverOpts []app.ServerOption
	engineOpts := []engine.Option{
		engine.WithLogger(g.Logger),
		engine.WithCache(cfg.Server.Cache),
		engine.WithMaxDepth(cfg.Server.MaxDepth),
	}
	if cfg.Server.Metrics {
		recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
		engineOpts = append(engineOpts, engine.WithRecorder(recorder))
		serverOpts = append(serverOpts, app.WithMetricsHandler(recorder.Handler()))
	}
	serverOpts = append(serverOpts, app.WithServerLogger(g.Logger))

	eng := newEngine(cfg, engineOpts...)
	registry := app.NewRegistry()
	if err := app.New(eng, cfg.Server).Register(registry); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g.Logger.Info("templates", "dir", cfg.TemplateDir(), "root", cfg.Server.RootTemplate, "cache", cfg.Server.Cache)
	return app.NewServer(cfg.Server.Addr, registry, serverOpts...).Run(ctx)
}

type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	fsys := os.DirFS(cfg.TemplateDir())
	loader := engine.NewFSLoader(fsys, cfg.Build.MarkupExt)
	names, err := loader.Names()
	if err != nil {
		return fmt.Errorf("list templates in %s: %w", cfg.TemplateDir(), err)
	}

	eng := engine.New(loader, engine.WithLogger(g.Logger), engine.WithCache(false))
	var errs []error
	if err := eng.Check(names); err != nil {
		errs = append(errs, err)
	}

	graph, err := render.BuildIncludeGraph(fsys, cfg.Build.MarkupExt, names...)
	if err != nil {
		return err
	}
	for _, m := range graph.Missing {
		errs = append(errs, errors.New(m.String()))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	_, _ = fmt.Fprintf(g.Out, "%d templates ok\n", len(names))
	return nil
}

type RenderCmd struct {
	Name string            `arg:"" help:"Template name"`
	Set  map[string]string `short:"s" help:"Prop to pass to the template (key=value)"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	eng := newEngine(cfg,
		engine.WithLogger(g.Logger),
		engine.WithMaxDepth(cfg.Server.MaxDepth))

	var props engine.Props
	if len(r.Set) > 0 {
		props = make(engine.Props, len(r.Set))
		for k, v := range r.Set {
			props[k] = v
		}
	}

	out, err := eng.Render(r.Name, props)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprint(g.Out, out); err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		_, _ = fmt.Fprintln(g.Out)
	}
	return nil
}

func newEngine(cfg *config.Config, opts ...engine.Option) *engine.Engine {
	loader := engine.NewFSLoader(os.DirFS(cfg.TemplateDir()), cfg.Build.MarkupExt)
	return engine.New(loader, opts...)
}
