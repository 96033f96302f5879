package build

import (
	"log/slog"

	"github.com/cpcf/gasket/metrics"
	"github.com/cpcf/gasket/postprocess"
	"github.com/cpcf/gasket/write"
)

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRoot sets the project root that source and output paths are
// relative to.
func WithRoot(root string) Option {
	return func(p *Pipeline) {
		p.root = root
	}
}

func WithCompiler(compiler Compiler) Option {
	return func(p *Pipeline) {
		p.compiler = compiler
	}
}

func WithWriter(writer write.Writer) Option {
	return func(p *Pipeline) {
		p.writer = writer
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = metrics.OrNoop(recorder)
	}
}

// WithStyleProcessor runs processor over the stylesheet before it is
// wrapped into the include fragment.
func WithStyleProcessor(processor postprocess.Processor) Option {
	return func(p *Pipeline) {
		p.styleProcessors = append(p.styleProcessors, processor)
	}
}
