package driver

import "time"

// ProgressStatus captures the state of a file within a run.
type ProgressStatus string

const (
	// ProgressQueued indicates the file is waiting to be formatted.
	ProgressQueued ProgressStatus = "queued"
	// ProgressWorking indicates the file is being formatted.
	ProgressWorking ProgressStatus = "working"
	// ProgressDone indicates the file was processed.
	ProgressDone ProgressStatus = "done"
	// ProgressError indicates the file failed.
	ProgressError ProgressStatus = "error"
)

// ProgressEvent reports progress for a file (or for the whole run when File
// is empty).
type ProgressEvent struct {
	File    string
	Status  ProgressStatus
	Result  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- ProgressEvent
}

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(evt ProgressEvent) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt ProgressEvent) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
