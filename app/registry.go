package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// EntryGet is the entry point the host calls for page requests.
const EntryGet = "doGet"

var ErrNoEntryPoint = errors.New("no entry point registered")

// Handler serves one host request.
type Handler func(ctx context.Context, req *http.Request) (*Response, error)

// Registry is the table of entry points the host may dispatch to.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("entry point %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Dispatch(ctx context.Context, name string, req *http.Request) (*Response, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, name)
	}
	return h(ctx, req)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
