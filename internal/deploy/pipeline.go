package deploy

import (
	"context"
	"time"

	"github.com/oneee-playground/glue-deployer/internal/blob"
	"github.com/oneee-playground/glue-deployer/internal/history"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/oneee-playground/glue-deployer/internal/jobconf"
	"github.com/oneee-playground/glue-deployer/internal/publish"
	"github.com/oneee-playground/glue-deployer/internal/reconcile"
	"github.com/oneee-playground/glue-deployer/internal/run"
	"github.com/oneee-playground/glue-deployer/internal/sizing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Journal interface {
	Append(ctx context.Context, e history.Entry) error
}

type SizingRecorder interface {
	RecordSizing(jobName string, sizeBytes int64, decision string, changed bool)
}

type Opts struct {
	Log        *zap.Logger
	Store      blob.Store
	Publisher  *publish.Publisher
	Reconciler *reconcile.Reconciler
	Supervisor *run.Supervisor

	// Optional.
	Journal Journal
	Metrics SizingRecorder

	SmallWorkerType string
	LargeWorkerType string
	SettleDelay     time.Duration
}

type Pipeline struct {
	Opts
	now func() time.Time
}

func New(opts Opts) *Pipeline {
	return &Pipeline{Opts: opts, now: time.Now}
}

// Plan is the value handed from one stage of a deployment pass to the next.
type Plan struct {
	Request job.Request

	Old       jobconf.Snapshot
	New       jobconf.Snapshot
	SizeBytes int64
	Decision  sizing.Decision

	Published  publish.Result
	Definition jobconf.Definition
	Presence   reconcile.Presence
}

type Outcome struct {
	Plan Plan
	Run  run.Result
}

// Run executes a full deployment pass: size the configuration, publish it,
// reconcile the remote job, then start and supervise one run.
func (p *Pipeline) Run(ctx context.Context, req job.Request) (Outcome, error) {
	start := time.Now()

	log := p.Log.With(zap.String("requestID", req.ID.String()))
	log.Info("deployment started", zap.Stringer("config", req.Template()))

	plan, err := p.Prepare(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	plan, err = p.Reconcile(ctx, plan)
	if err != nil {
		return Outcome{Plan: plan}, err
	}

	if err := p.settle(ctx); err != nil {
		return Outcome{Plan: plan}, errors.Wrap(err, "waiting for job to settle")
	}

	result, err := p.Supervisor.Supervise(ctx, plan.Definition.Name, plan.Definition.Arguments)
	if err != nil {
		return Outcome{Plan: plan}, err
	}

	log.Info("deployment done",
		zap.Duration("took", time.Since(start)),
		zap.String("status", string(result.Status)),
		zap.Bool("canceled", result.Canceled),
	)

	return Outcome{Plan: plan, Run: result}, nil
}

// Prepare measures the input data, sizes the configuration and publishes it.
func (p *Pipeline) Prepare(ctx context.Context, req job.Request) (Plan, error) {
	plan := Plan{Request: req}

	raw, err := p.Store.Get(ctx, req.Template())
	if err != nil {
		return plan, errors.Wrap(err, "fetching configuration")
	}

	plan.Old, err = jobconf.Parse(raw)
	if err != nil {
		return plan, err
	}

	if !plan.Old.HasSection(jobconf.SectionCompute) {
		p.Log.Warn("configuration has no compute sizing section. it will be added",
			zap.String("section", jobconf.SectionCompute))
	}

	plan.SizeBytes, err = sizing.NewMeasurer(p.Store).Measure(ctx, req.Data())
	if err != nil {
		return plan, err
	}

	mutator := sizing.Mutator{
		ThresholdGiB: req.ThresholdGiB,
		Small:        jobconf.DiscreteTier(p.SmallWorkerType, req.SmallWorkers),
		Large:        jobconf.DiscreteTier(p.LargeWorkerType, req.LargeWorkers),
	}

	plan.New, plan.Decision = mutator.Apply(plan.Old, plan.SizeBytes)

	p.Log.Info("measured input data",
		zap.Stringer("data", req.Data()),
		zap.Int64("bytes", plan.SizeBytes),
		zap.Float64("gib", sizing.ToGiB(plan.SizeBytes)),
		zap.Float64("thresholdGiB", req.ThresholdGiB),
		zap.String("decision", string(plan.Decision)),
	)

	if plan.Decision == sizing.DecisionUnchanged {
		p.Log.Warn("input size equals threshold. keeping existing tier")
	}

	plan.Published, err = p.Publisher.Publish(ctx, publish.Pass{
		Old:         plan.Old,
		New:         plan.New,
		Destination: req.Destination(),
	})
	if err != nil {
		return plan, err
	}

	p.record(ctx, plan)

	return plan, nil
}

// Reconcile makes the remote job match the published configuration.
func (p *Pipeline) Reconcile(ctx context.Context, plan Plan) (Plan, error) {
	def, err := jobconf.BuildDefinition(plan.New, p.Log)
	if err != nil {
		return plan, errors.Wrap(err, "building job definition")
	}
	plan.Definition = def

	plan.Presence, err = p.Reconciler.Reconcile(ctx, def)
	if err != nil {
		return plan, errors.Wrap(err, "reconciling job")
	}

	return plan, nil
}

func (p *Pipeline) settle(ctx context.Context) error {
	if p.SettleDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pipeline) record(ctx context.Context, plan Plan) {
	jobName := jobconf.JobName(plan.New)
	changed := plan.Published.State == publish.StateChanged

	if p.Metrics != nil {
		p.Metrics.RecordSizing(jobName, plan.SizeBytes, string(plan.Decision), changed)
	}

	if p.Journal == nil {
		return
	}

	entry := history.Entry{
		ID:        plan.Request.ID,
		JobName:   jobName,
		At:        p.now(),
		SizeBytes: plan.SizeBytes,
		Decision:  string(plan.Decision),
		State:     string(plan.Published.State),
		Published: plan.Published.Primary.String(),
	}
	if plan.Published.Archive != nil {
		entry.Archive = plan.Published.Archive.String()
	}

	if err := p.Journal.Append(ctx, entry); err != nil {
		p.Log.Warn("failed to append journal entry", zap.Error(err))
	}
}
