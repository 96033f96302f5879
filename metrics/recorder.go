// Package metrics records render and build observations.
package metrics

import "time"

// Outcome labels the final status of a build run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Recorder receives observations from the engine and the build pipeline.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveRender(name string, d time.Duration)
	IncRenderError(name string)
	ObserveStepDuration(step string, d time.Duration)
	IncBuildOutcome(outcome Outcome)
	IncCollision(kind string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, time.Duration)       {}
func (NoopRecorder) IncRenderError(string)                     {}
func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(Outcome)                   {}
func (NoopRecorder) IncCollision(string)                       {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
