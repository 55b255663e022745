package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess   ResultLabel = "success"
	ResultUnchanged ResultLabel = "unchanged"
	ResultFailed    ResultLabel = "failed"
)

// Recorder defines observability hooks for codify-docs operations.
type Recorder interface {
	ObserveCheckDuration(d time.Duration)
	IncLinksChecked(kind string, n int)
	IncBrokenLinks(origin string, n int)
	IncRender(result ResultLabel)
	SetPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCheckDuration(time.Duration) {}
func (NoopRecorder) IncLinksChecked(string, int)        {}
func (NoopRecorder) IncBrokenLinks(string, int)         {}
func (NoopRecorder) IncRender(ResultLabel)              {}
func (NoopRecorder) SetPages(int)                       {}
