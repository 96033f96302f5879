package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Compiler turns sources into script files under the output directory,
// mirroring the source tree.
type Compiler interface {
	Compile(ctx context.Context) error
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context) error

func (f CompilerFunc) Compile(ctx context.Context) error {
	return f(ctx)
}

// CommandCompiler runs an external compiler such as "npx tsc". Output is
// streamed to Stdout and Stderr.
type CommandCompiler struct {
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func NewCommandCompiler(dir string, args ...string) *CommandCompiler {
	return &CommandCompiler{
		Args:   args,
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (c *CommandCompiler) Compile(ctx context.Context) error {
	if len(c.Args) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(c.Args, " "), err)
	}
	return nil
}
