// Package processors provides the built-in post-processors: wrapping a
// compiled stylesheet as an includable fragment, and setting page head
// metadata.
package processors

import "bytes"

// StyleBlock wraps raw CSS in a <style> element so the result can be
// included from a template like any other fragment.
//
//	chain.Add(postprocess.ForExt(".css", processors.NewStyleBlock()))
type StyleBlock struct{}

func NewStyleBlock() *StyleBlock {
	return &StyleBlock{}
}

// ProcessContent implements the postprocess.Processor interface.
func (s *StyleBlock) ProcessContent(_ string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(content) + len("<style>\n\n</style>"))
	buf.WriteString("<style>\n")
	buf.Write(content)
	buf.WriteString("\n</style>")
	return buf.Bytes(), nil
}
