package metric

import (
	"time"

	"github.com/influxdata/influxdb-client-go/api/write"
	"github.com/oneee-playground/glue-deployer/internal/run"
)

const (
	measurementRunStatus = "job-run"
	measurementSizing    = "job-sizing"
)

// Recorder turns supervision and sizing observations into points.
type Recorder struct {
	writer PointWriter
	now    func() time.Time
}

var _ run.Observer = (*Recorder)(nil)

func NewRecorder(writer PointWriter) *Recorder {
	return &Recorder{writer: writer, now: time.Now}
}

func (r *Recorder) Observe(h run.Handle, status run.Status, elapsed time.Duration) {
	tags := map[string]string{
		"job":    h.JobName,
		"run-id": h.RunID,
	}

	fields := map[string]interface{}{
		"status":         string(status),
		"terminal":       status.Terminal(),
		"execution-time": elapsed.Seconds(),
	}

	r.writer.Write(write.NewPoint(measurementRunStatus, tags, fields, r.now()))
}

// RecordSizing stores the measured input size and the tier decision of a pass.
func (r *Recorder) RecordSizing(jobName string, sizeBytes int64, decision string, changed bool) {
	r.writer.Write(write.NewPoint(
		measurementSizing,
		map[string]string{"job": jobName},
		map[string]interface{}{
			"size-bytes": sizeBytes,
			"decision":   decision,
			"changed":    changed,
		},
		r.now(),
	))
}
