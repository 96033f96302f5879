// Package postprocess applies content transformations to rendered pages and
// generated build assets before they are served or written.
//
// A Chain runs its processors in order. Processors that only concern one
// kind of file are scoped with ForExt:
//
//	chain := postprocess.NewChain()
//	chain.Add(postprocess.ForExt(".css", processors.NewStyleBlock()))
//	out, err := chain.Process("styles/output.css", css)
package postprocess

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Processor transforms the content of one file. The path gives context
// about the file; processors that do not apply to it return content
// unchanged. Implementations should be stateless and safe for concurrent use.
type Processor interface {
	ProcessContent(filePath string, content []byte) ([]byte, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(filePath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(filePath string, content []byte) ([]byte, error) {
	return f(filePath, content)
}

// ForExt restricts p to paths with the given extension (case-insensitive).
// Other paths pass through untouched.
func ForExt(ext string, p Processor) Processor {
	ext = strings.ToLower(ext)
	return ProcessorFunc(func(filePath string, content []byte) ([]byte, error) {
		if strings.ToLower(filepath.Ext(filePath)) != ext {
			return content, nil
		}
		return p.ProcessContent(filePath, content)
	})
}

// Chain executes processors in the order they were added.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{
		processors: append([]Processor(nil), processors...),
	}
}

func (c *Chain) Add(processor Processor) {
	c.processors = append(c.processors, processor)
}

func (c *Chain) AddFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	c.processors = append(c.processors, ProcessorFunc(fn))
}

// Process runs every processor on content. The first failure stops the
// chain and is returned.
func (c *Chain) Process(filePath string, content []byte) ([]byte, error) {
	result := content
	for i, processor := range c.processors {
		processed, err := processor.ProcessContent(filePath, result)
		if err != nil {
			return nil, fmt.Errorf("processor %d failed for %s: %w", i, filePath, err)
		}
		result = processed
	}
	return result, nil
}

func (c *Chain) HasProcessors() bool {
	return len(c.processors) > 0
}

func (c *Chain) Len() int {
	return len(c.processors)
}

func (c *Chain) Clear() {
	c.processors = c.processors[:0]
}
