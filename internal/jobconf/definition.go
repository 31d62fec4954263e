package jobconf

import (
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	SectionJob            = "JOB"
	SectionJobParameters  = "job-parameters"
	SectionScriptLanguage = "script-language"
	SectionCompute        = "job-dpu"
	SectionOptional       = "opt-parameters"
)

const (
	KeyEnvironment = "executionEnvironment"

	KeyJobName        = "jobName"
	KeyExecutionRole  = "executionRole"
	KeyScriptLocation = "scriptLocation"
	KeyRuntime        = "runtimeType"
	KeyConcurrency    = "concurrency"
	KeyConnection     = "connection"

	KeyWorkerType      = "WorkerType"
	KeyNumberOfWorkers = "NumberOfWorkers"
	KeyMaxCapacity     = "MaxCapacity"
)

var ErrMissingSection = errors.New("mandatory section is missing")

// Names written by the older deployment scripts. They are read when the
// current name is absent.
var (
	legacySections = map[string]string{
		SectionJobParameters: "job-paramters",
		SectionOptional:      "opt-paramters",
	}
	legacyKeys = map[string]string{
		KeyEnvironment:    "Execution_Enviornment",
		KeyJobName:        "glueJobName",
		KeyExecutionRole:  "glueExecutionRole",
		KeyScriptLocation: "glueScriptLocation",
		KeyRuntime:        "runtime-type",
	}
)

func lookupSection(snap Snapshot, name string) (map[string]string, bool) {
	if values, ok := snap.Section(name); ok {
		return values, true
	}
	if legacy, ok := legacySections[name]; ok {
		return snap.Section(legacy)
	}
	return nil, false
}

func lookupKey(values map[string]string, key string) (string, bool) {
	if v, ok := values[key]; ok {
		return v, true
	}
	if legacy, ok := legacyKeys[key]; ok {
		v, ok := values[legacy]
		return v, ok
	}
	return "", false
}

// JobName reads the job name of a snapshot, or returns "" when it has none.
func JobName(snap Snapshot) string {
	params, _ := lookupSection(snap, SectionJobParameters)
	return keyValue(params, KeyJobName)
}

func keyValue(values map[string]string, key string) string {
	v, _ := lookupKey(values, key)
	return v
}

type Runtime string

const (
	RuntimeSparkETL    Runtime = "glueetl"
	RuntimePythonShell Runtime = "pythonshell"
)

// Definition is the desired state of a remote job.
type Definition struct {
	Name           string
	Role           string
	ScriptLocation string
	Runtime        Runtime
	Concurrency    int32

	// Connection is optional. Empty means no connection.
	Connection string

	Arguments map[string]string
	Tier      Tier
}

// BuildDefinition derives a job definition from a snapshot.
// Only job-parameters is required here. Other missing sections are logged
// and left empty; a missing tier surfaces later when the job is reconciled.
func BuildDefinition(snap Snapshot, log *zap.Logger) (Definition, error) {
	jobMeta, _ := snap.Section(SectionJob)
	if env, ok := lookupKey(jobMeta, KeyEnvironment); ok {
		log.Info("execution environment", zap.String("environment", env))
	} else {
		log.Warn("job metadata section has no execution environment", zap.String("section", SectionJob))
	}

	params, ok := lookupSection(snap, SectionJobParameters)
	if !ok {
		log.Warn("specify the mandatory job parameters", zap.String("section", SectionJobParameters))
		return Definition{}, errors.Wrap(ErrMissingSection, SectionJobParameters)
	}

	def := Definition{
		Name:           keyValue(params, KeyJobName),
		Role:           keyValue(params, KeyExecutionRole),
		ScriptLocation: keyValue(params, KeyScriptLocation),
		Runtime:        Runtime(keyValue(params, KeyRuntime)),
		Connection:     params[KeyConnection],
		Concurrency:    1,
	}

	if def.Name == "" {
		return Definition{}, errors.Errorf("%s.%s is empty", SectionJobParameters, KeyJobName)
	}

	if raw, ok := params[KeyConcurrency]; ok {
		concurrency, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Definition{}, errors.Wrapf(err, "parsing %s", KeyConcurrency)
		}
		if concurrency < 1 {
			return Definition{}, errors.Errorf("%s must be positive, got %d", KeyConcurrency, concurrency)
		}
		def.Concurrency = int32(concurrency)
	}

	def.Arguments = mergeArguments(snap, log)

	if compute, ok := snap.Section(SectionCompute); ok {
		tier, err := TierFromSection(compute)
		if err != nil && !errors.Is(err, ErrTierUnset) {
			return Definition{}, errors.Wrap(err, "reading resource tier")
		}
		def.Tier = tier
	} else {
		log.Warn("specify WorkerType & NumberOfWorkers or MaxCapacity", zap.String("section", SectionCompute))
	}

	return def, nil
}

// mergeArguments combines script-language with opt-parameters.
// Optional parameters override script-language on key collision.
func mergeArguments(snap Snapshot, log *zap.Logger) map[string]string {
	args := make(map[string]string)

	if lang, ok := snap.Section(SectionScriptLanguage); ok {
		for key, val := range lang {
			args[key] = val
		}
	} else {
		log.Warn("specify the job language (e.g. --job-language=python)", zap.String("section", SectionScriptLanguage))
	}

	if opt, ok := lookupSection(snap, SectionOptional); ok {
		for key, val := range opt {
			args[key] = val
		}
	} else {
		log.Info("no optional parameters specified")
	}

	return args
}
