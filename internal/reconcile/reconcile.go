package reconcile

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/oneee-playground/glue-deployer/internal/jobconf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type GlueAPI interface {
	GetJob(ctx context.Context, params *glue.GetJobInput, optFns ...func(*glue.Options)) (*glue.GetJobOutput, error)
	CreateJob(ctx context.Context, params *glue.CreateJobInput, optFns ...func(*glue.Options)) (*glue.CreateJobOutput, error)
	UpdateJob(ctx context.Context, params *glue.UpdateJobInput, optFns ...func(*glue.Options)) (*glue.UpdateJobOutput, error)
}

type Presence string

const (
	Absent  Presence = "ABSENT"
	Present Presence = "PRESENT"
)

type Reconciler struct {
	client GlueAPI
	log    *zap.Logger

	// Tags are attached when a job is created.
	Tags map[string]string
}

func NewReconciler(client GlueAPI, log *zap.Logger, tags map[string]string) *Reconciler {
	return &Reconciler{client: client, log: log, Tags: tags}
}

// Probe reports whether a job named name exists in the registry.
func (r *Reconciler) Probe(ctx context.Context, name string) (Presence, error) {
	_, err := r.client.GetJob(ctx, &glue.GetJobInput{JobName: aws.String(name)})
	if err == nil {
		return Present, nil
	}

	var notFound *types.EntityNotFoundException
	if errors.As(err, &notFound) {
		return Absent, nil
	}

	return "", errors.Wrap(err, "getting job")
}

// Reconcile creates or overwrites the remote job so that it matches def.
// It returns the presence observed before reconciliation.
func (r *Reconciler) Reconcile(ctx context.Context, def jobconf.Definition) (Presence, error) {
	log := r.log.With(zap.String("job", def.Name), zap.String("runtime", string(def.Runtime)))

	spec, err := newJobSpec(def)
	if err != nil {
		return "", errors.Wrap(err, "building job spec")
	}

	presence, err := r.Probe(ctx, def.Name)
	if err != nil {
		return "", err
	}

	log = log.With(
		zap.String("glueVersion", spec.glueVersion),
		zap.Any("tier", spec.tier),
		zap.Bool("connection", spec.connections != nil),
	)

	switch presence {
	case Absent:
		log.Info("creating job")
		if err := r.create(ctx, def.Name, spec); err != nil {
			return "", err
		}
	case Present:
		log.Info("updating job")
		if err := r.update(ctx, def.Name, spec); err != nil {
			return "", err
		}
	}

	log.Info("finished deploying job")

	return presence, nil
}

func (r *Reconciler) create(ctx context.Context, name string, spec jobSpec) error {
	update := spec.jobUpdate()

	input := &glue.CreateJobInput{
		Name:              aws.String(name),
		Role:              update.Role,
		Command:           update.Command,
		DefaultArguments:  update.DefaultArguments,
		ExecutionProperty: update.ExecutionProperty,
		GlueVersion:       update.GlueVersion,
		WorkerType:        update.WorkerType,
		NumberOfWorkers:   update.NumberOfWorkers,
		MaxCapacity:       update.MaxCapacity,
		Connections:       update.Connections,
		Tags:              r.Tags,
	}

	if _, err := r.client.CreateJob(ctx, input); err != nil {
		return errors.Wrap(err, "creating job")
	}

	return nil
}

func (r *Reconciler) update(ctx context.Context, name string, spec jobSpec) error {
	input := &glue.UpdateJobInput{
		JobName:   aws.String(name),
		JobUpdate: spec.jobUpdate(),
	}

	if _, err := r.client.UpdateJob(ctx, input); err != nil {
		return errors.Wrap(err, "updating job")
	}

	return nil
}
