package engine

import (
	"html/template"
	"log/slog"

	"github.com/cpcf/gasket/metrics"
)

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFuncs adds template functions. An "include" entry is ignored.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			if name == "include" {
				continue
			}
			e.funcs[name] = fn
		}
	}
}

func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithCache toggles the parsed template cache. Disable it to pick up
// template edits without restarting.
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		e.useCache = enabled
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}
