package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cpcf/gasket/config"
	"github.com/cpcf/gasket/render"
	"github.com/cpcf/gasket/write"
)

// run carries the state of a single pipeline execution.
type run struct {
	*Pipeline
	result *Result
	// placed maps an output-root name to the source it came from.
	placed map[string]string
}

func (r *run) clean(context.Context) error {
	out := r.OutputDir()
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("failed to remove %s: %w", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	r.logger.Debug("output directory cleaned", "path", out)
	return nil
}

func (r *run) compile(ctx context.Context) error {
	r.logger.Info("compiling sources")
	return r.compiler.Compile(ctx)
}

func (r *run) copyManifest(context.Context) error {
	if r.cfg.Manifest == "" {
		return nil
	}

	src := filepath.Join(r.SourceDir(), r.cfg.Manifest)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		r.logger.Debug("no manifest, skipping", "path", src)
		return nil
	}

	name := filepath.Base(src)
	if err := r.writer.Copy(src, filepath.Join(r.OutputDir(), name), write.DefaultOptions()); err != nil {
		return fmt.Errorf("failed to copy manifest: %w", err)
	}
	r.placed[name] = src
	r.result.Copied = append(r.result.Copied, name)
	r.logger.Info("manifest copied", "file", name)
	return nil
}

// copyMarkup copies every markup file in the source tree to the output
// root, whatever its depth.
func (r *run) copyMarkup(ctx context.Context) error {
	out, err := filepath.Abs(r.OutputDir())
	if err != nil {
		return err
	}

	return filepath.WalkDir(r.SourceDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			// An output dir nested in the source tree is never an input.
			if abs, err := filepath.Abs(path); err == nil && abs == out {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || filepath.Ext(d.Name()) != r.cfg.MarkupExt {
			return nil
		}

		name := d.Name()
		if err := r.claim(name, path, StepMarkup); err != nil {
			return err
		}
		if err := r.writer.Copy(path, filepath.Join(r.OutputDir(), name), write.DefaultOptions()); err != nil {
			return fmt.Errorf("failed to copy %s: %w", path, err)
		}

		r.result.Copied = append(r.result.Copied, name)
		r.logger.Info("markup copied", "file", name, "from", path)
		return nil
	})
}

// flatten moves compiled scripts from nested output directories up to the
// output root and removes directories left empty.
func (r *run) flatten(ctx context.Context) error {
	root := r.OutputDir()

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == r.cfg.ScriptExt {
			r.placed[entry.Name()] = filepath.Join(root, entry.Name())
		}
	}

	return r.moveToRoot(ctx, root)
}

func (r *run) moveToRoot(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	root := r.OutputDir()
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := r.moveToRoot(ctx, path); err != nil {
				return err
			}
			if err := os.Remove(path); err != nil {
				r.logger.Debug("directory not removed", "path", path, "error", err)
			}
			continue
		}

		if dir == root || !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != r.cfg.ScriptExt {
			continue
		}

		name := entry.Name()
		if err := r.claim(name, path, StepFlatten); err != nil {
			return err
		}
		if err := r.writer.Move(path, filepath.Join(root, name), write.DefaultOptions()); err != nil {
			return fmt.Errorf("failed to move %s: %w", path, err)
		}

		r.result.Moved = append(r.result.Moved, name)
		r.logger.Info("script moved", "file", name, "from", path)
	}

	return nil
}

func (r *run) synthesizeStyles(context.Context) error {
	src := filepath.Join(r.SourceDir(), r.cfg.Stylesheet)

	css, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		msg := fmt.Sprintf("stylesheet not found at %s; was the CSS compiler run?", src)
		r.result.Warnings = append(r.result.Warnings, msg)
		r.logger.Warn("stylesheet not found", "path", src)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stylesheet: %w", err)
	}

	content, err := r.styleChain().Process(src, css)
	if err != nil {
		return err
	}

	name := r.cfg.StyleFragment
	if err := r.claim(name, src, StepStyles); err != nil {
		return err
	}
	if err := r.writer.Write(filepath.Join(r.OutputDir(), name), content, write.DefaultOptions()); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	r.result.Generated = append(r.result.Generated, name)
	r.logger.Info("stylesheet fragment generated", "file", name)
	return nil
}

// checkIncludes reports includes that point at templates missing from the
// flat output. They only fail at render time, so they are warnings here.
func (r *run) checkIncludes(context.Context) error {
	fsys := os.DirFS(r.OutputDir())

	names, err := render.AllTemplates(fsys, r.cfg.MarkupExt)
	if err != nil {
		return err
	}

	graph, err := render.BuildIncludeGraph(fsys, r.cfg.MarkupExt, names...)
	if err != nil {
		return err
	}

	for _, missing := range graph.Missing {
		r.result.Warnings = append(r.result.Warnings, missing.String())
		r.logger.Warn("dangling include", "template", missing.From, "include", missing.Name)
	}
	return nil
}

// claim registers src as the origin of name in the output root, applying
// the collision policy when another source already produced it.
func (r *run) claim(name, src, kind string) error {
	prev, exists := r.placed[name]
	r.placed[name] = src
	if !exists {
		return nil
	}

	r.recorder.IncCollision(kind)
	if r.cfg.Collisions == config.CollisionError {
		return &CollisionError{Name: name, First: prev, Second: src}
	}

	r.result.Collisions = append(r.result.Collisions, Collision{
		Name:     name,
		Kind:     kind,
		Kept:     src,
		Replaced: prev,
	})
	r.logger.Warn("name collision, last file wins", "file", name, "kept", src, "replaced", prev)
	return nil
}
