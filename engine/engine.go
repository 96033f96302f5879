// Package engine renders named templates from a flat namespace. Any template
// may include further templates, passing them props.
package engine

import (
	"html/template"
	"log/slog"

	"github.com/cpcf/gasket/metrics"
	"github.com/cpcf/gasket/postprocess"
	"github.com/cpcf/gasket/render"
)

const DefaultMaxDepth = 64

type Engine struct {
	logger         *slog.Logger
	funcs          template.FuncMap
	maxDepth       int
	useCache       bool
	recorder       metrics.Recorder
	cache          *TemplateCache
	renderer       *Renderer
	postprocessors *postprocess.Chain
}

func New(loader Loader, opts ...Option) *Engine {
	e := &Engine{
		logger:         slog.Default(),
		funcs:          render.DefaultFuncMap(),
		maxDepth:       DefaultMaxDepth,
		useCache:       true,
		recorder:       metrics.NoopRecorder{},
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(e)
	}

	// Placeholder so templates parse; each render installs its own.
	e.funcs["include"] = includeFunc(func(string, Props) (string, error) {
		return "", nil
	})

	if e.useCache {
		e.cache = NewTemplateCache()
	}
	e.renderer = NewRenderer(e.logger, loader, e.funcs, e.cache, e.maxDepth, e.recorder)

	return e
}

// Render evaluates the named template with props and returns its text.
// Templates reach the same operation through the include function.
func (e *Engine) Render(name string, props Props) (string, error) {
	return e.renderer.render(name, props, 0)
}

// RenderPage renders like Render, then runs the post-processor chain over the
// result. A failing processor is logged and the unprocessed text is returned.
func (e *Engine) RenderPage(name string, props Props) (string, error) {
	out, err := e.Render(name, props)
	if err != nil {
		return "", err
	}

	if !e.postprocessors.HasProcessors() {
		return out, nil
	}

	processed, err := e.postprocessors.Process(name, []byte(out))
	if err != nil {
		e.logger.Warn("post-processing failed", "template", name, "error", err)
		return out, nil
	}
	return string(processed), nil
}

// Check parses every named template and collects the failures.
func (e *Engine) Check(names []string) error {
	var multiErr MultiError
	for _, name := range names {
		if _, err := e.renderer.template(name); err != nil {
			multiErr.Add(name, "check failed", err)
		}
	}
	if multiErr.HasErrors() {
		return &multiErr
	}
	return nil
}

// AddPostProcessor adds a post-processor to the page processing chain.
// Processors are applied in the order they are added.
func (e *Engine) AddPostProcessor(processor postprocess.Processor) {
	e.postprocessors.Add(processor)
}

// AddPostProcessorFunc adds a function as a page post-processor.
func (e *Engine) AddPostProcessorFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	e.postprocessors.AddFunc(fn)
}

// ClearCache drops all parsed templates.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}
