package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/cpcf/gasket/config"
)

// Global is shared state passed to every command.
type Global struct {
	Out    io.Writer
	Logger *slog.Logger
}

type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"gasket.yaml"`
	EnvFile string `name:"env-file" help:"Environment file loaded before the configuration" default:".env"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build  BuildCmd  `cmd:"" help:"Compile and flatten the source tree into the output directory"`
	Serve  ServeCmd  `cmd:"" help:"Serve the root template over HTTP"`
	Check  CheckCmd  `cmd:"" help:"Parse every template and report dangling includes"`
	Render RenderCmd `cmd:"" help:"Render one template to standard output"`

	logOut io.Writer `kong:"-"`
}

// AfterApply sets up logging and loads the env file once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	out := c.logOut
	if out == nil {
		out = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	if c.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(c.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadConfig reads the configuration file and applies GASKET_* overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("gasket"),
		kong.Description("Render and build flat-namespace HTML apps."),
		kong.UsageOnError(),
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&Global{Out: os.Stdout, Logger: slog.Default()}, &cli); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
