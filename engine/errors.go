package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateNotFound reports a name that does not resolve in the flat namespace.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMaxDepth reports an include chain deeper than the engine allows.
	ErrMaxDepth = errors.New("include depth limit exceeded")
)

type RenderError struct {
	Name    string
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type MultiError struct {
	Errors []*RenderError
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	msgs := make([]string, 0, len(m.Errors))
	for _, err := range m.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("multiple errors:\n%s", strings.Join(msgs, "\n"))
}

func (m *MultiError) Unwrap() []error {
	errs := make([]error, 0, len(m.Errors))
	for _, err := range m.Errors {
		errs = append(errs, err)
	}
	return errs
}

func (m *MultiError) Add(name, message string, err error) {
	m.Errors = append(m.Errors, &RenderError{
		Name:    name,
		Message: message,
		Err:     err,
	})
}

func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}
