package engine

// Props is caller-supplied data for a nested template.
type Props map[string]any

// IncludeFunc renders a named template with props under the same contract
// as Engine.Render.
type IncludeFunc func(name string, props Props) (string, error)

// Context is the evaluation environment of a single template render. It is
// created for one evaluation and discarded afterwards.
type Context struct {
	Include IncludeFunc
	// Props and Locals refer to the same map.
	Props  Props
	Locals Props
}

func NewContext(include IncludeFunc, props Props) *Context {
	if props == nil {
		props = Props{}
	}
	return &Context{
		Include: include,
		Props:   props,
		Locals:  props,
	}
}

// Bindings returns the data a template is executed against: every prop as a
// top-level key, then the whole map under "props" and "locals". The aliases
// are bound last and win over props of the same name.
func (c *Context) Bindings() map[string]any {
	b := make(map[string]any, len(c.Props)+2)
	for k, v := range c.Props {
		b[k] = v
	}
	b["props"] = c.Props
	b["locals"] = c.Locals
	return b
}
