package run

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second
	stopTimeout         = 30 * time.Second
)

type GlueAPI interface {
	StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error)
	GetJobRun(ctx context.Context, params *glue.GetJobRunInput, optFns ...func(*glue.Options)) (*glue.GetJobRunOutput, error)
	BatchStopJobRun(ctx context.Context, params *glue.BatchStopJobRunInput, optFns ...func(*glue.Options)) (*glue.BatchStopJobRunOutput, error)
}

// Observer receives every status successfully polled.
type Observer interface {
	Observe(h Handle, status Status, elapsed time.Duration)
}

type Result struct {
	Handle   Handle
	Status   Status
	Canceled bool
	// Elapsed is the execution time last reported by the service.
	Elapsed time.Duration
}

func (r Result) Succeeded() bool {
	return r.Status == StatusSucceeded && !r.Canceled
}

func (r Result) ExitCode() int {
	if r.Succeeded() {
		return 0
	}
	return 1
}

type Supervisor struct {
	client   GlueAPI
	log      *zap.Logger
	interval time.Duration
	observer Observer
}

type Option func(*Supervisor)

func WithInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.interval = d }
}

func WithObserver(o Observer) Option {
	return func(s *Supervisor) { s.observer = o }
}

func NewSupervisor(client GlueAPI, log *zap.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{client: client, log: log, interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supervise starts a run of the job and watches it until it terminates or
// ctx is canceled.
func (s *Supervisor) Supervise(ctx context.Context, jobName string, args map[string]string) (Result, error) {
	h, err := s.Start(ctx, jobName, args)
	if err != nil {
		return Result{}, err
	}

	return s.Watch(ctx, h), nil
}

func (s *Supervisor) Start(ctx context.Context, jobName string, args map[string]string) (Handle, error) {
	input := &glue.StartJobRunInput{
		JobName:   aws.String(jobName),
		Arguments: args,
	}

	res, err := s.client.StartJobRun(ctx, input)
	if err != nil {
		return Handle{}, errors.Wrap(err, "starting job run")
	}

	h := Handle{JobName: jobName, RunID: aws.ToString(res.JobRunId)}
	s.log.Info("job run started", zap.String("job", h.JobName), zap.String("runID", h.RunID))

	return h, nil
}

// Watch polls the run until its status is terminal. Cancellation of ctx is
// checked between polls; when observed, the run is asked to stop once and
// Watch returns without polling again. Polling errors are logged and skipped.
func (s *Supervisor) Watch(ctx context.Context, h Handle) Result {
	log := s.log.With(zap.String("job", h.JobName), zap.String("runID", h.RunID))

	// In-flight requests are not interrupted by cancellation.
	pollCtx := context.WithoutCancel(ctx)

	result := Result{Handle: h, Status: StatusRunning}
	start := time.Now()

	for {
		if ctx.Err() != nil {
			return s.cancel(ctx, log, result)
		}

		run, err := s.getRun(pollCtx, h)
		if err != nil {
			logRemoteError(log, err)
		} else {
			result.Status = StatusFromState(run.JobRunState)
			result.Elapsed = time.Duration(run.ExecutionTime) * time.Second

			if s.observer != nil {
				s.observer.Observe(h, result.Status, result.Elapsed)
			}
		}

		log.Info("polled job run",
			zap.Duration("time", time.Since(start).Round(time.Second)),
			zap.String("status", string(result.Status)),
		)

		if result.Status.Terminal() {
			if result.Succeeded() {
				log.Info("job completed")
			} else {
				log.Error("job failed", zap.String("status", string(result.Status)))
			}
			return result
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return s.cancel(ctx, log, result)
		case <-timer.C:
		}
	}
}

// ExecutionTime returns the execution time the service reports for the run.
func (s *Supervisor) ExecutionTime(ctx context.Context, h Handle) (time.Duration, error) {
	run, err := s.getRun(ctx, h)
	if err != nil {
		logRemoteError(s.log.With(zap.String("job", h.JobName), zap.String("runID", h.RunID)), err)
		return 0, err
	}

	elapsed := time.Duration(run.ExecutionTime) * time.Second
	s.log.Info("job run execution time", zap.String("runID", h.RunID), zap.Duration("executionTime", elapsed))

	return elapsed, nil
}

func (s *Supervisor) getRun(ctx context.Context, h Handle) (*types.JobRun, error) {
	input := &glue.GetJobRunInput{
		JobName: aws.String(h.JobName),
		RunId:   aws.String(h.RunID),
	}

	res, err := s.client.GetJobRun(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "getting job run")
	}

	if res.JobRun == nil {
		return nil, errors.New("job run is empty")
	}

	return res.JobRun, nil
}

func (s *Supervisor) cancel(ctx context.Context, log *zap.Logger, result Result) Result {
	log.Warn("received kill signal. stopping job run", zap.NamedError("cause", context.Cause(ctx)))

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()

	if err := s.stop(stopCtx, result.Handle); err != nil {
		log.Error("failed to stop job run", zap.Error(err))
	} else {
		log.Info("gracefully terminated the job run")
	}

	result.Canceled = true
	return result
}

func (s *Supervisor) stop(ctx context.Context, h Handle) error {
	input := &glue.BatchStopJobRunInput{
		JobName:   aws.String(h.JobName),
		JobRunIds: []string{h.RunID},
	}

	res, err := s.client.BatchStopJobRun(ctx, input)
	if err != nil {
		return errors.Wrap(err, "stopping job run")
	}

	if len(res.Errors) > 0 {
		detail := res.Errors[0].ErrorDetail
		if detail != nil {
			return errors.Errorf("stopping job run: %s: %s",
				aws.ToString(detail.ErrorCode), aws.ToString(detail.ErrorMessage))
		}
		return errors.New("stopping job run: rejected")
	}

	return nil
}
