package render

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
)

var includeRegex = regexp.MustCompile(`{{-?\s*include\s+"([^"]+)"`)

// ListIncludes returns the literal template names referenced by include
// calls in content, in order of first appearance. Names computed at render
// time are not visible here.
func ListIncludes(content string) []string {
	var includes []string
	seen := make(map[string]bool)

	for _, match := range includeRegex.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		includes = append(includes, name)
	}

	return includes
}

// IncludeGraph maps each reachable template name to the names it includes.
type IncludeGraph struct {
	Edges   map[string][]string
	Missing []MissingInclude
}

// MissingInclude is an include whose target does not exist.
type MissingInclude struct {
	From string
	Name string
}

func (m MissingInclude) String() string {
	return fmt.Sprintf("%s includes missing template %q", m.From, m.Name)
}

// BuildIncludeGraph walks include references starting at roots within the
// root directory of fsys. Templates resolve as name or name+ext. Cycles are
// followed once.
func BuildIncludeGraph(fsys fs.FS, ext string, roots ...string) (*IncludeGraph, error) {
	graph := &IncludeGraph{Edges: make(map[string][]string)}
	queue := append([]string(nil), roots...)
	visited := make(map[string]bool)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		p := resolveTemplate(fsys, name, ext)
		if p == "" {
			continue
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", p, err)
		}

		includes := ListIncludes(string(content))
		graph.Edges[name] = includes
		for _, inc := range includes {
			if resolveTemplate(fsys, inc, ext) == "" {
				graph.Missing = append(graph.Missing, MissingInclude{From: name, Name: inc})
				continue
			}
			queue = append(queue, inc)
		}
	}

	return graph, nil
}

// AllTemplates lists template names at the root of fsys with the given
// extension, sorted, for use as graph roots.
func AllTemplates(fsys fs.FS, ext string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && path.Ext(entry.Name()) == ext {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(names)
	return names, nil
}

func resolveTemplate(fsys fs.FS, name, ext string) string {
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return ""
	}

	for _, candidate := range []string{name, name + ext} {
		if info, err := fs.Stat(fsys, candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
