package scan

import "time"

// Recorder observes probe and banner outcomes, e.g. for metrics.
type Recorder interface {
	PortProbed(open bool, elapsed time.Duration)
	ProbeFailed(op string, kind FailureKind)
	BannerGrabbed(found bool)
}

type nopRecorder struct{}

func (nopRecorder) PortProbed(bool, time.Duration)  {}
func (nopRecorder) ProbeFailed(string, FailureKind) {}
func (nopRecorder) BannerGrabbed(bool)              {}
