package jobconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildDefinition(t *testing.T) {
	snap, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	snap = snap.
		With(SectionOptional, "--job-language", "scala").
		With(SectionOptional, "--env", "dev")

	def, err := BuildDefinition(snap, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, Definition{
		Name:           "orders-etl",
		Role:           "arn:aws:iam::123456789012:role/glue",
		ScriptLocation: "s3://scripts/orders.py",
		Runtime:        RuntimeSparkETL,
		Concurrency:    2,
		Arguments: map[string]string{
			"--job-language": "scala",
			"--env":          "dev",
		},
		Tier: DiscreteTier("G.1X", 2),
	}, def)
}

func TestBuildDefinitionMissingSections(t *testing.T) {
	t.Run("job parameters", func(t *testing.T) {
		snap := NewSnapshot().With(SectionCompute, KeyMaxCapacity, "2")

		_, err := BuildDefinition(snap, zap.NewNop())
		assert.ErrorIs(t, err, ErrMissingSection)
	})

	t.Run("optional sections", func(t *testing.T) {
		snap := NewSnapshot().
			With(SectionJobParameters, KeyJobName, "shell").
			With(SectionJobParameters, KeyRuntime, string(RuntimePythonShell))

		def, err := BuildDefinition(snap, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, "shell", def.Name)
		assert.Equal(t, int32(1), def.Concurrency)
		assert.Empty(t, def.Arguments)
		assert.True(t, def.Tier.IsZero())
	})

	t.Run("empty job name", func(t *testing.T) {
		snap := NewSnapshot().With(SectionJobParameters, KeyRuntime, string(RuntimeSparkETL))

		_, err := BuildDefinition(snap, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestBuildDefinitionLegacyNames(t *testing.T) {
	const legacy = `
[JOB]
Execution_Enviornment = prod

[job-paramters]
glueJobName        = orders-etl
glueExecutionRole  = glue-role
glueScriptLocation = s3://scripts/orders.py
runtime-type       = pythonshell

[opt-paramters]
--env = prod
`

	snap, err := Parse([]byte(legacy))
	require.NoError(t, err)

	def, err := BuildDefinition(snap, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "orders-etl", def.Name)
	assert.Equal(t, "glue-role", def.Role)
	assert.Equal(t, "s3://scripts/orders.py", def.ScriptLocation)
	assert.Equal(t, RuntimePythonShell, def.Runtime)
	assert.Equal(t, map[string]string{"--env": "prod"}, def.Arguments)
	assert.Equal(t, "orders-etl", JobName(snap))
}

func TestBuildDefinitionConcurrency(t *testing.T) {
	testcases := []struct {
		desc    string
		value   string
		wantErr bool
	}{
		{desc: "positive", value: "3"},
		{desc: "zero", value: "0", wantErr: true},
		{desc: "negative", value: "-1", wantErr: true},
		{desc: "not a number", value: "many", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			snap := NewSnapshot().
				With(SectionJobParameters, KeyJobName, "orders-etl").
				With(SectionJobParameters, KeyConcurrency, tc.value)

			def, err := BuildDefinition(snap, zap.NewNop())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int32(3), def.Concurrency)
		})
	}
}

func TestTierValidate(t *testing.T) {
	testcases := []struct {
		desc    string
		tier    Tier
		wantErr bool
	}{
		{desc: "discrete", tier: DiscreteTier("G.1X", 2)},
		{desc: "capacity", tier: CapacityTier(0.0625)},
		{desc: "unset", tier: Tier{}, wantErr: true},
		{desc: "zero workers", tier: DiscreteTier("G.1X", 0), wantErr: true},
		{desc: "negative capacity", tier: CapacityTier(-1), wantErr: true},
		{desc: "both set", tier: Tier{WorkerType: "G.1X", Workers: 2, MaxCapacity: 10}, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.tier.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTierFromSection(t *testing.T) {
	tier, err := TierFromSection(map[string]string{KeyWorkerType: "G.2X", KeyNumberOfWorkers: "10"})
	require.NoError(t, err)
	assert.Equal(t, DiscreteTier("G.2X", 10), tier)

	tier, err = TierFromSection(map[string]string{KeyMaxCapacity: "5"})
	require.NoError(t, err)
	assert.Equal(t, CapacityTier(5), tier)

	_, err = TierFromSection(map[string]string{KeyWorkerType: "G.2X", KeyNumberOfWorkers: "ten"})
	assert.Error(t, err)

	_, err = TierFromSection(map[string]string{})
	assert.ErrorIs(t, err, ErrTierUnset)
}
