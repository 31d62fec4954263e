package deploy

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/google/uuid"
	"github.com/oneee-playground/glue-deployer/internal/blob"
	"github.com/oneee-playground/glue-deployer/internal/history"
	"github.com/oneee-playground/glue-deployer/internal/job"
	"github.com/oneee-playground/glue-deployer/internal/jobconf"
	"github.com/oneee-playground/glue-deployer/internal/publish"
	"github.com/oneee-playground/glue-deployer/internal/reconcile"
	"github.com/oneee-playground/glue-deployer/internal/run"
	"github.com/oneee-playground/glue-deployer/internal/sizing"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const templateConfig = `[JOB]
executionEnvironment = dev

[job-parameters]
jobName        = orders-etl
executionRole  = glue-role
scriptLocation = s3://scripts/orders.py
runtimeType    = glueetl
concurrency    = 1

[script-language]
--job-language = python

[job-dpu]
WorkerType      = G.1X
NumberOfWorkers = 2
`

// fakeGlue is a registry and run service in one.
type fakeGlue struct {
	mu sync.Mutex

	jobs    map[string]bool
	creates int
	updates int
	starts  []*glue.StartJobRunInput

	states []types.JobRunState
	polls  int
}

func (f *fakeGlue) GetJob(ctx context.Context, params *glue.GetJobInput, optFns ...func(*glue.Options)) (*glue.GetJobOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.jobs[*params.JobName] {
		return nil, &types.EntityNotFoundException{Message: aws.String("not found")}
	}
	return &glue.GetJobOutput{Job: &types.Job{Name: params.JobName}}, nil
}

func (f *fakeGlue) CreateJob(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates++
	f.jobs[*params.Name] = true
	return &glue.CreateJobOutput{Name: params.Name}, nil
}

func (f *fakeGlue) UpdateJob(ctx context.Context, params *glue.UpdateJobInput, optFns ...func(*glue.Options)) (*glue.UpdateJobOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates++
	return &glue.UpdateJobOutput{JobName: params.JobName}, nil
}

func (f *fakeGlue) StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts = append(f.starts, params)
	f.polls = 0
	return &glue.StartJobRunOutput{JobRunId: aws.String("jr_1")}, nil
}

func (f *fakeGlue) GetJobRun(ctx context.Context, params *glue.GetJobRunInput, optFns ...func(*glue.Options)) (*glue.GetJobRunOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.states[f.polls]
	f.polls++
	return &glue.GetJobRunOutput{JobRun: &types.JobRun{JobRunState: state, ExecutionTime: 42}}, nil
}

func (f *fakeGlue) BatchStopJobRun(ctx context.Context, params *glue.BatchStopJobRunInput, optFns ...func(*glue.Options)) (*glue.BatchStopJobRunOutput, error) {
	return &glue.BatchStopJobRunOutput{}, nil
}

type PipelineSuite struct {
	suite.Suite
	store    *blob.FSStore
	glue     *fakeGlue
	journal  *history.Journal
	pipeline *Pipeline
	req      job.Request
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	base := s.T().TempDir()
	log := zap.NewNop()

	s.store = blob.NewFSStore(filepath.Join(base, "blobs"))
	s.glue = &fakeGlue{
		jobs:   make(map[string]bool),
		states: []types.JobRunState{types.JobRunStateRunning, types.JobRunStateSucceeded},
	}
	s.journal = history.NewJournal(filepath.Join(base, "journal"))

	s.pipeline = New(Opts{
		Log:             log,
		Store:           s.store,
		Publisher:       publish.NewPublisher(s.store, log),
		Reconciler:      reconcile.NewReconciler(s.glue, log, map[string]string{"access-team": "mt"}),
		Supervisor:      run.NewSupervisor(s.glue, log, run.WithInterval(time.Millisecond)),
		Journal:         s.journal,
		SmallWorkerType: "G.1X",
		LargeWorkerType: "G.2X",
	})

	s.req = job.Request{
		ID:                uuid.New(),
		Bucket:            "bucket",
		TemplatePrefix:    "glue/config/",
		ConfigFile:        "orders.conf",
		DataPrefix:        "data/orders/",
		DestinationPrefix: "glue/deploy/",
		ThresholdGiB:      1.0 / (1 << 20), // 1 KiB
		SmallWorkers:      2,
		LargeWorkers:      20,
	}

	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.req.Template(), []byte(templateConfig)))
}

func (s *PipelineSuite) putData(size int) {
	loc := blob.Location{Bucket: s.req.Bucket, Key: s.req.DataPrefix + "part-0000"}
	s.Require().NoError(s.store.Put(context.Background(), loc, make([]byte, size)))
}

func (s *PipelineSuite) TestLargeInputChangesConfiguration() {
	defer goleak.VerifyNone(s.T())

	s.putData(4096)

	outcome, err := s.pipeline.Run(context.Background(), s.req)
	s.Require().NoError(err)

	s.Equal(sizing.DecisionLarge, outcome.Plan.Decision)
	s.Equal(int64(4096), outcome.Plan.SizeBytes)
	s.Equal(publish.StateChanged, outcome.Plan.Published.State)
	s.Equal(reconcile.Absent, outcome.Plan.Presence)
	s.Equal(jobconf.DiscreteTier("G.2X", 20), outcome.Plan.Definition.Tier)
	s.Equal(run.StatusSucceeded, outcome.Run.Status)
	s.Equal(0, outcome.Run.ExitCode())
	s.Equal(1, s.glue.creates)

	published, err := s.store.Get(context.Background(), s.req.Destination())
	s.Require().NoError(err)

	snap, err := jobconf.Parse(published)
	s.Require().NoError(err)
	workerType, _ := snap.Get(jobconf.SectionCompute, jobconf.KeyWorkerType)
	s.Equal("G.2X", workerType)

	s.Require().NotNil(outcome.Plan.Published.Archive)
	archived, err := s.store.Get(context.Background(), *outcome.Plan.Published.Archive)
	s.Require().NoError(err)

	old, err := jobconf.Parse(archived)
	s.Require().NoError(err)
	s.True(jobconf.Equal(outcome.Plan.Old, old))

	s.Equal(map[string]string{"--job-language": "python"}, s.glue.starts[0].Arguments)

	entries, err := s.journal.Entries(context.Background())
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("orders-etl", entries[0].JobName)
	s.Equal(string(sizing.DecisionLarge), entries[0].Decision)
}

func (s *PipelineSuite) TestSmallInputKeepsConfiguration() {
	s.putData(10)
	s.glue.jobs["orders-etl"] = true

	outcome, err := s.pipeline.Run(context.Background(), s.req)
	s.Require().NoError(err)

	s.Equal(sizing.DecisionSmall, outcome.Plan.Decision)
	s.Equal(publish.StateUnchanged, outcome.Plan.Published.State)
	s.Nil(outcome.Plan.Published.Archive)
	s.Equal(reconcile.Present, outcome.Plan.Presence)
	s.Equal(1, s.glue.updates)
	s.Zero(s.glue.creates)

	objects, err := s.store.List(context.Background(), blob.Location{Bucket: s.req.Bucket, Key: s.req.DestinationPrefix})
	s.Require().NoError(err)
	s.Len(objects, 1, "no archive is written when nothing changed")
}

func (s *PipelineSuite) TestMissingJobParameters() {
	s.putData(10)
	s.Require().NoError(s.store.Put(context.Background(), s.req.Template(), []byte("[job-dpu]\nMaxCapacity = 2\n")))

	_, err := s.pipeline.Run(context.Background(), s.req)
	s.ErrorIs(err, jobconf.ErrMissingSection)
	s.Empty(s.glue.starts)
}

func (s *PipelineSuite) TestMissingTemplate() {
	req := s.req
	req.ConfigFile = "missing.conf"

	_, err := s.pipeline.Run(context.Background(), req)
	s.Error(err)
}

func (s *PipelineSuite) TestCanceledBeforeStart() {
	s.putData(10)
	s.pipeline.SettleDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.pipeline.Run(ctx, s.req)
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.glue.starts)
}
