// Package write puts files in place for the build pipeline: atomic writes,
// verbatim copies, and moves that survive crossing filesystems.
package write

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/natefinch/atomic"
)

// FileMode is the permission of files created by Write.
const FileMode os.FileMode = 0o644

// ErrExists is returned when the destination exists and overwriting is off.
var ErrExists = errors.New("destination already exists")

type Writer interface {
	Write(path string, content []byte, options WriteOptions) error
	Copy(src, dst string, options WriteOptions) error
	Move(src, dst string, options WriteOptions) error
	NeedsWrite(path string, content []byte) (bool, error)
}

type WriteOptions struct {
	CreateDirs bool
	Overwrite  bool
	Atomic     bool
}

// DefaultOptions overwrite atomically, creating parent directories.
func DefaultOptions() WriteOptions {
	return WriteOptions{CreateDirs: true, Overwrite: true, Atomic: true}
}

type FileWriter struct{}

func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

func (fw *FileWriter) Write(path string, content []byte, options WriteOptions) error {
	return fw.put(path, bytes.NewReader(content), FileMode, options)
}

// Copy copies src to dst byte for byte, keeping its permission bits.
func (fw *FileWriter) Copy(src, dst string, options WriteOptions) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	return fw.put(dst, in, info.Mode().Perm(), options)
}

// Move renames src to dst, falling back to copy and remove when they live
// on different devices.
func (fw *FileWriter) Move(src, dst string, options WriteOptions) error {
	if err := fw.prepare(dst, options); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := fw.Copy(src, dst, options); err != nil {
		return fmt.Errorf("cross-device move of %s: %w", src, err)
	}
	return os.Remove(src)
}

func (fw *FileWriter) NeedsWrite(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	return !bytes.Equal(existing, content), nil
}

// put writes r to path and sets mode, which the atomic temp file and an
// existing destination would otherwise override.
func (fw *FileWriter) put(path string, r io.Reader, mode os.FileMode, options WriteOptions) error {
	if err := fw.prepare(path, options); err != nil {
		return err
	}

	if options.Atomic {
		if err := atomic.WriteFile(path, r); err != nil {
			return err
		}
		return os.Chmod(path, mode)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}

func (fw *FileWriter) prepare(path string, options WriteOptions) error {
	if options.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
	}

	if !options.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	return nil
}
