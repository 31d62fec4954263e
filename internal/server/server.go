package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oneee-playground/glue-deployer/internal/deploy"
	"github.com/oneee-playground/glue-deployer/internal/event"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/oneee-playground/glue-deployer/internal/run"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Deployer interface {
	Run(ctx context.Context, req job.Request) (deploy.Outcome, error)
}

type ExecutionTimer interface {
	ExecutionTime(ctx context.Context, h run.Handle) (time.Duration, error)
}

type ServerOpts struct {
	RequestPoller  job.Poller
	PollInterval   time.Duration
	Deployer       Deployer
	Timer          ExecutionTimer
	EventPublisher event.Publisher
}

type Server struct {
	log *zap.Logger

	requestPoller  job.Poller
	pollInterval   time.Duration
	deployer       Deployer
	timer          ExecutionTimer
	eventPublisher event.Publisher
}

func New(logger *zap.Logger, opts ServerOpts) *Server {
	publisher := opts.EventPublisher
	if publisher == nil {
		publisher = event.NopPublisher{}
	}

	return &Server{
		log:            logger,
		requestPoller:  opts.RequestPoller,
		pollInterval:   opts.PollInterval,
		deployer:       opts.Deployer,
		timer:          opts.Timer,
		eventPublisher: publisher,
	}
}

func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Server running")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		receipt, received, err := s.requestPoller.Poll(ctx)
		if err != nil {
			if errors.Is(err, job.NoErrEmptyRequests) {
				continue
			}

			s.log.Error("failed to poll a request", zap.Error(err))
			if receipt != "" {
				// Malformed requests would be redelivered forever.
				s.markAsDone(ctx, receipt)
			}
			continue
		}

		requestID := received.ID.String()
		s.log.Info("polled request", zap.String("requestID", requestID))

		log := s.log.With(zap.String("requestID", requestID))

		// Failed passes are reported through the event, not redelivered.
		if err := s.handle(ctx, log, received); err != nil {
			log.Error("failed to handle a request", zap.Error(err))
		}

		s.markAsDone(ctx, receipt)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Server) handle(ctx context.Context, log *zap.Logger, req job.Request) error {
	outcome, err := s.deployer.Run(ctx, req)

	e := event.RunEvent{
		ID:        uuid.New(),
		RequestID: req.ID,
		JobName:   outcome.Plan.Definition.Name,
		RunID:     outcome.Run.Handle.RunID,
		Status:    string(outcome.Run.Status),
		Success:   err == nil && outcome.Run.Succeeded(),
		Canceled:  outcome.Run.Canceled,
		Took:      outcome.Run.Elapsed,
	}

	if err != nil {
		e.Extra = err.Error()
	} else if s.timer != nil {
		// The last poll can lag behind what the service finally reports.
		took, terr := s.timer.ExecutionTime(context.WithoutCancel(ctx), outcome.Run.Handle)
		if terr == nil {
			e.Took = took
		}
	}

	log.Info("deployment finished",
		zap.String("status", e.Status),
		zap.Bool("success", e.Success),
		zap.Duration("took", e.Took),
	)

	if perr := s.eventPublisher.Publish(context.WithoutCancel(ctx), e); perr != nil {
		log.Error("failed to publish event", zap.Error(perr))
	}

	return err
}

func (s *Server) markAsDone(ctx context.Context, receipt string) {
	if err := s.requestPoller.MarkAsDone(context.WithoutCancel(ctx), receipt); err != nil {
		s.log.Error("failed to mark a request as done", zap.Error(err))
	}
}
