package reconcile

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/oneee-playground/glue-deployer/internal/jobconf"
	"github.com/pkg/errors"
)

const pythonVersion = "3"

// pythonShellCapacity is the only capacity a python shell job runs with.
const pythonShellCapacity = 1

type runtime struct {
	glueVersion string
	build       func(def jobconf.Definition) (*types.JobCommand, jobconf.Tier, error)
}

var runtimes = map[jobconf.Runtime]runtime{
	jobconf.RuntimeSparkETL: {
		glueVersion: "2.0",
		build:       buildSparkETL,
	},
	jobconf.RuntimePythonShell: {
		glueVersion: "1.0",
		build:       buildPythonShell,
	},
}

func buildSparkETL(def jobconf.Definition) (*types.JobCommand, jobconf.Tier, error) {
	if err := def.Tier.Validate(); err != nil {
		return nil, jobconf.Tier{}, errors.Wrap(err, "validating resource tier")
	}

	command := &types.JobCommand{
		Name:           aws.String(string(jobconf.RuntimeSparkETL)),
		ScriptLocation: aws.String(def.ScriptLocation),
		PythonVersion:  aws.String(pythonVersion),
	}

	return command, def.Tier, nil
}

func buildPythonShell(def jobconf.Definition) (*types.JobCommand, jobconf.Tier, error) {
	command := &types.JobCommand{
		Name:           aws.String(string(jobconf.RuntimePythonShell)),
		ScriptLocation: aws.String(def.ScriptLocation),
		PythonVersion:  aws.String(pythonVersion),
	}

	return command, jobconf.CapacityTier(pythonShellCapacity), nil
}

// jobSpec holds every mutable field of a remote job, shared by create and update.
type jobSpec struct {
	role        string
	command     *types.JobCommand
	arguments   map[string]string
	concurrency int32
	glueVersion string
	tier        jobconf.Tier
	connections *types.ConnectionsList
}

func newJobSpec(def jobconf.Definition) (jobSpec, error) {
	rt, ok := runtimes[def.Runtime]
	if !ok {
		return jobSpec{}, errors.Errorf("unsupported runtime type: %q", def.Runtime)
	}

	command, tier, err := rt.build(def)
	if err != nil {
		return jobSpec{}, err
	}

	spec := jobSpec{
		role:        def.Role,
		command:     command,
		arguments:   def.Arguments,
		concurrency: def.Concurrency,
		glueVersion: rt.glueVersion,
		tier:        tier,
	}

	if def.Connection != "" {
		spec.connections = &types.ConnectionsList{Connections: []string{def.Connection}}
	}

	return spec, nil
}

func (s jobSpec) tierFields() (workerType types.WorkerType, workers *int32, capacity *float64) {
	if s.tier.Discrete() {
		return types.WorkerType(s.tier.WorkerType), aws.Int32(s.tier.Workers), nil
	}
	return "", nil, aws.Float64(s.tier.MaxCapacity)
}

func (s jobSpec) jobUpdate() *types.JobUpdate {
	workerType, workers, capacity := s.tierFields()

	return &types.JobUpdate{
		Role:              aws.String(s.role),
		Command:           s.command,
		DefaultArguments:  s.arguments,
		ExecutionProperty: &types.ExecutionProperty{MaxConcurrentRuns: s.concurrency},
		GlueVersion:       aws.String(s.glueVersion),
		WorkerType:        workerType,
		NumberOfWorkers:   workers,
		MaxCapacity:       capacity,
		Connections:       s.connections,
	}
}
