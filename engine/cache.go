package engine

import (
	"html/template"
	"sync"
)

// TemplateCache holds parsed templates by name. Cached templates are never
// executed directly; every render works on a clone.
type TemplateCache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		templates: make(map[string]*template.Template),
	}
}

func (c *TemplateCache) Get(name string, parse func() (*template.Template, error)) (*template.Template, error) {
	c.mu.RLock()
	if tmpl, exists := c.templates[name]; exists {
		c.mu.RUnlock()
		return tmpl, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if tmpl, exists := c.templates[name]; exists {
		return tmpl, nil
	}

	tmpl, err := parse()
	if err != nil {
		return nil, err
	}

	c.templates[name] = tmpl
	return tmpl, nil
}

func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

func (c *TemplateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = make(map[string]*template.Template)
}
