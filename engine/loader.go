package engine

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Source is a template resolved from the namespace.
type Source struct {
	Name    string
	Path    string
	Content []byte
}

// Loader resolves template names to their source.
type Loader interface {
	Load(name string) (*Source, error)
}

// FSLoader resolves names against the root of a flat fs.FS. A name matches
// either a file of the same name or the name plus the loader's extension.
type FSLoader struct {
	fsys fs.FS
	ext  string
}

func NewFSLoader(fsys fs.FS, ext string) *FSLoader {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FSLoader{fsys: fsys, ext: ext}
}

func (l *FSLoader) Load(name string) (*Source, error) {
	p := l.resolve(name)
	if p == "" {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	content, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", p, err)
	}

	return &Source{Name: name, Path: p, Content: content}, nil
}

func (l *FSLoader) resolve(name string) string {
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return ""
	}

	candidates := []string{name}
	if l.ext != "" && path.Ext(name) != l.ext {
		candidates = append(candidates, name+l.ext)
	}

	for _, candidate := range candidates {
		if info, err := fs.Stat(l.fsys, candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}

	return ""
}

// Names lists the template names available at the namespace root, sorted.
func (l *FSLoader) Names() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if l.ext != "" && path.Ext(entry.Name()) != l.ext {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), l.ext))
	}
	sort.Strings(names)
	return names, nil
}
