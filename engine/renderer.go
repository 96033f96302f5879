package engine

import (
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/cpcf/gasket/metrics"
)

type Renderer struct {
	logger   *slog.Logger
	loader   Loader
	funcs    template.FuncMap
	cache    *TemplateCache
	maxDepth int
	recorder metrics.Recorder
}

func NewRenderer(logger *slog.Logger, loader Loader, funcs template.FuncMap, cache *TemplateCache, maxDepth int, recorder metrics.Recorder) *Renderer {
	return &Renderer{
		logger:   logger,
		loader:   loader,
		funcs:    funcs,
		cache:    cache,
		maxDepth: maxDepth,
		recorder: metrics.OrNoop(recorder),
	}
}

func (r *Renderer) render(name string, props Props, depth int) (string, error) {
	if depth > r.maxDepth {
		return "", &RenderError{Name: name, Message: fmt.Sprintf("nested %d levels deep", depth), Err: ErrMaxDepth}
	}

	start := time.Now()
	out, err := r.evaluate(name, props, depth)
	if err != nil {
		// Nested failures unwind through every level; count them once.
		if depth == 0 {
			r.recorder.IncRenderError(name)
		}
		return "", err
	}
	r.recorder.ObserveRender(name, time.Since(start))
	return out, nil
}

func (r *Renderer) evaluate(name string, props Props, depth int) (string, error) {
	r.logger.Debug("rendering template", "name", name, "depth", depth)

	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	inst, err := tmpl.Clone()
	if err != nil {
		return "", &RenderError{Name: name, Message: "failed to clone template", Err: err}
	}

	ctx := NewContext(func(child string, childProps Props) (string, error) {
		return r.render(child, childProps, depth+1)
	}, props)
	inst.Funcs(template.FuncMap{"include": includeFunc(ctx.Include)})

	var buf strings.Builder
	if err := inst.Execute(&buf, ctx.Bindings()); err != nil {
		return "", &RenderError{Name: name, Message: "failed to execute template", Err: err}
	}

	return buf.String(), nil
}

func (r *Renderer) template(name string) (*template.Template, error) {
	parse := func() (*template.Template, error) {
		src, err := r.loader.Load(name)
		if err != nil {
			return nil, &RenderError{Name: name, Message: "failed to load template", Err: err}
		}

		tmpl, err := template.New(src.Name).Funcs(r.funcs).Parse(string(src.Content))
		if err != nil {
			return nil, &RenderError{Name: name, Message: "failed to parse template", Err: err}
		}
		return tmpl, nil
	}

	if r.cache == nil {
		return parse()
	}
	return r.cache.Get(name, parse)
}

// includeFunc adapts an IncludeFunc to the template function signature. The
// optional argument is the props map; the result is trusted markup.
func includeFunc(include IncludeFunc) func(string, ...any) (template.HTML, error) {
	return func(name string, args ...any) (template.HTML, error) {
		if len(args) > 1 {
			return "", fmt.Errorf("include %q: expected at most one props argument, got %d", name, len(args))
		}

		var props Props
		if len(args) == 1 {
			p, err := toProps(args[0])
			if err != nil {
				return "", fmt.Errorf("include %q: %w", name, err)
			}
			props = p
		}

		out, err := include(name, props)
		if err != nil {
			return "", err
		}
		return template.HTML(out), nil
	}
}

func toProps(v any) (Props, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case Props:
		return p, nil
	case map[string]any:
		return Props(p), nil
	case map[string]string:
		props := make(Props, len(p))
		for k, val := range p {
			props[k] = val
		}
		return props, nil
	default:
		return nil, fmt.Errorf("props must be a map, got %T", v)
	}
}
