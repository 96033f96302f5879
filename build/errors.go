package build

import (
	"errors"
	"fmt"
)

// ErrCollision is matched by every *CollisionError.
var ErrCollision = errors.New("file name collision in flat output")

// StepError wraps the failure of a fatal pipeline step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("build step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CollisionError reports two sources that flatten to the same name.
type CollisionError struct {
	Name   string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s and %s both flatten to %s", e.First, e.Second, e.Name)
}

func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}
