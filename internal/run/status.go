package run

import "github.com/aws/aws-sdk-go-v2/service/glue/types"

type Status string

const (
	StatusRunning      Status = "RUNNING"
	StatusSucceeded    Status = "SUCCEEDED"
	StatusFailed       Status = "FAILED"
	StatusStopped      Status = "STOPPED"
	StatusErrorUnknown Status = "ERROR_UNKNOWN"
)

// StatusFromState maps a remote run state onto Status.
// Every state the run can still leave counts as running.
func StatusFromState(state types.JobRunState) Status {
	switch state {
	case types.JobRunStateStarting,
		types.JobRunStateRunning,
		types.JobRunStateStopping,
		types.JobRunStateWaiting:
		return StatusRunning
	case types.JobRunStateSucceeded:
		return StatusSucceeded
	case types.JobRunStateFailed,
		types.JobRunStateTimeout,
		types.JobRunStateExpired:
		return StatusFailed
	case types.JobRunStateStopped:
		return StatusStopped
	default:
		return StatusErrorUnknown
	}
}

func (s Status) Terminal() bool { return s != StatusRunning }

// Handle identifies one run of a job.
type Handle struct {
	JobName string
	RunID   string
}
