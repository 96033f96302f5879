package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const DefaultPath = "gasket.yaml"

// Collision policies for same-name files landing in the flat output.
const (
	CollisionOverwrite = "overwrite"
	CollisionError     = "error"
)

type Config struct {
	Build  BuildConfig  `yaml:"build"`
	Server ServerConfig `yaml:"server"`
}

type BuildConfig struct {
	SourceDir string `yaml:"source_dir"`
	OutputDir string `yaml:"output_dir"`
	// Compiler is run from the project root; empty skips compilation.
	Compiler []string `yaml:"compiler"`
	// Manifest and Stylesheet are relative to SourceDir.
	Manifest      string        `yaml:"manifest"`
	Stylesheet    string        `yaml:"stylesheet"`
	StyleFragment string        `yaml:"style_fragment"`
	MarkupExt     string        `yaml:"markup_ext"`
	ScriptExt     string        `yaml:"script_ext"`
	Collisions    string        `yaml:"collisions"`
	Debounce      time.Duration `yaml:"debounce"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// TemplateDir defaults to the build output directory.
	TemplateDir  string `yaml:"template_dir"`
	RootTemplate string `yaml:"root_template"`
	Title        string `yaml:"title"`
	Viewport     string `yaml:"viewport"`
	Cache        bool   `yaml:"cache"`
	MaxDepth     int    `yaml:"max_depth"`
	Metrics      bool   `yaml:"metrics"`
}

func Default() *Config {
	return &Config{
		Build: BuildConfig{
			SourceDir:     "src",
			OutputDir:     "app",
			Compiler:      []string{"npx", "tsc"},
			Manifest:      "appsscript.json",
			Stylesheet:    filepath.Join("styles", "output.css"),
			StyleFragment: "Tailwind_CSS.html",
			MarkupExt:     ".html",
			ScriptExt:     ".js",
			Collisions:    CollisionOverwrite,
			Debounce:      300 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			RootTemplate: "Index",
			Title:        "Gasket App",
			Viewport:     "width=device-width, initial-scale=1",
			Cache:        true,
			MaxDepth:     64,
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file at
// the default path is not an error; a missing explicitly named file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	if err := LoadYAML(path, cfg); err != nil {
		if path == DefaultPath && errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Build.SourceDir == "" {
		errs = append(errs, errors.New("build.source_dir is required"))
	}
	if c.Build.OutputDir == "" {
		errs = append(errs, errors.New("build.output_dir is required"))
	}
	if c.Build.SourceDir != "" && filepath.Clean(c.Build.SourceDir) == filepath.Clean(c.Build.OutputDir) {
		errs = append(errs, errors.New("build.output_dir must differ from build.source_dir"))
	}
	if !strings.HasPrefix(c.Build.MarkupExt, ".") {
		errs = append(errs, fmt.Errorf("build.markup_ext must start with a dot, got %q", c.Build.MarkupExt))
	}
	if !strings.HasPrefix(c.Build.ScriptExt, ".") {
		errs = append(errs, fmt.Errorf("build.script_ext must start with a dot, got %q", c.Build.ScriptExt))
	}
	if strings.EqualFold(c.Build.MarkupExt, c.Build.ScriptExt) {
		errs = append(errs, fmt.Errorf("build.markup_ext and build.script_ext must differ, both are %q", c.Build.MarkupExt))
	}
	if strings.ContainsAny(c.Build.StyleFragment, `/\`) {
		errs = append(errs, fmt.Errorf("build.style_fragment must be a bare file name, got %q", c.Build.StyleFragment))
	}
	switch c.Build.Collisions {
	case CollisionOverwrite, CollisionError:
	default:
		errs = append(errs, fmt.Errorf("build.collisions must be %q or %q, got %q", CollisionOverwrite, CollisionError, c.Build.Collisions))
	}
	if c.Build.Debounce < 0 {
		errs = append(errs, errors.New("build.debounce must not be negative"))
	}

	if c.Server.RootTemplate == "" {
		errs = append(errs, errors.New("server.root_template is required"))
	}
	if c.Server.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("server.max_depth must be positive, got %d", c.Server.MaxDepth))
	}

	return errors.Join(errs...)
}

// TemplateDir is the directory the server loads templates from.
func (c *Config) TemplateDir() string {
	if c.Server.TemplateDir != "" {
		return c.Server.TemplateDir
	}
	return c.Build.OutputDir
}

// ApplyEnv overrides selected fields from GASKET_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GASKET_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("GASKET_TITLE"); ok {
		c.Server.Title = v
	}
	if v, ok := lookup("GASKET_OUTPUT_DIR"); ok {
		c.Build.OutputDir = v
	}
	if v, ok := lookup("GASKET_COMPILER"); ok {
		c.Build.Compiler = strings.Fields(v)
	}
	if v, ok := lookup("GASKET_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GASKET_METRICS: %w", err)
		}
		c.Server.Metrics = b
	}
	return c.Validate()
}
