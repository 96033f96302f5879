package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "src", cfg.Build.SourceDir)
	assert.Equal(t, "app", cfg.Build.OutputDir)
	assert.Equal(t, []string{"npx", "tsc"}, cfg.Build.Compiler)
	assert.Equal(t, "Tailwind_CSS.html", cfg.Build.StyleFragment)
	assert.Equal(t, CollisionOverwrite, cfg.Build.Collisions)
	assert.Equal(t, "Index", cfg.Server.RootTemplate)
	assert.Equal(t, "app", cfg.TemplateDir())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gasket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
build:
  output_dir: dist
  collisions: error
  debounce: 1s
  compiler: []
server:
  title: Modern GAS App
  template_dir: public
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dist", cfg.Build.OutputDir)
	assert.Equal(t, "src", cfg.Build.SourceDir)
	assert.Equal(t, CollisionError, cfg.Build.Collisions)
	assert.Equal(t, time.Second, cfg.Build.Debounce)
	assert.Empty(t, cfg.Build.Compiler)
	assert.Equal(t, "Modern GAS App", cfg.Server.Title)
	assert.Equal(t, "public", cfg.TemplateDir())
}

func TestLoadMissingFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load("custom.yaml")
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"same dirs":      func(c *Config) { c.Build.OutputDir = "src/" },
		"markup ext":     func(c *Config) { c.Build.MarkupExt = "html" },
		"script ext":     func(c *Config) { c.Build.ScriptExt = "" },
		"fragment path":  func(c *Config) { c.Build.StyleFragment = "styles/x.html" },
		"collision":      func(c *Config) { c.Build.Collisions = "rename" },
		"root template":  func(c *Config) { c.Server.RootTemplate = "" },
		"max depth":      func(c *Config) { c.Server.MaxDepth = 0 },
		"negative delay": func(c *Config) { c.Build.Debounce = -time.Second },
		"empty output":   func(c *Config) { c.Build.OutputDir = "" },
		"empty source":   func(c *Config) { c.Build.SourceDir = "" },
		"same exts":      func(c *Config) { c.Build.ScriptExt = ".HTML" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GASKET_ADDR":     ":9000",
		"GASKET_TITLE":    "From Env",
		"GASKET_COMPILER": "node build.js",
		"GASKET_METRICS":  "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "From Env", cfg.Server.Title)
	assert.Equal(t, []string{"node", "build.js"}, cfg.Build.Compiler)
	assert.True(t, cfg.Server.Metrics)

	env["GASKET_METRICS"] = "maybe"
	assert.Error(t, Default().ApplyEnv(lookup))
}
