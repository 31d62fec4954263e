package sizing

import (
	"strconv"

	"github.com/oneee-playground/glue-deployer/internal/jobconf"
)

const bytesPerGiB = 1 << 30

type Decision string

const (
	DecisionSmall Decision = "SMALL"
	DecisionLarge Decision = "LARGE"
	// DecisionUnchanged is returned when the size equals the threshold.
	// The existing tier is kept as is.
	DecisionUnchanged Decision = "UNCHANGED"
)

// Mutator picks a resource tier from measured input size.
type Mutator struct {
	ThresholdGiB float64
	Small        jobconf.Tier
	Large        jobconf.Tier
}

func ToGiB(sizeBytes int64) float64 {
	return float64(sizeBytes) / bytesPerGiB
}

func (m Mutator) Select(sizeBytes int64) (jobconf.Tier, Decision) {
	gib := ToGiB(sizeBytes)

	switch {
	case gib < m.ThresholdGiB:
		return m.Small, DecisionSmall
	case gib > m.ThresholdGiB:
		return m.Large, DecisionLarge
	default:
		return jobconf.Tier{}, DecisionUnchanged
	}
}

// Apply returns a copy of snap with the selected tier written into the
// compute sizing section. No other section is touched.
func (m Mutator) Apply(snap jobconf.Snapshot, sizeBytes int64) (jobconf.Snapshot, Decision) {
	tier, decision := m.Select(sizeBytes)
	if decision == DecisionUnchanged {
		return snap, decision
	}

	return WriteTier(snap, tier), decision
}

// WriteTier overwrites the tier keys of the compute sizing section, dropping
// the keys of the representation that is not used.
func WriteTier(snap jobconf.Snapshot, tier jobconf.Tier) jobconf.Snapshot {
	const section = jobconf.SectionCompute

	if tier.Discrete() {
		return snap.
			With(section, jobconf.KeyWorkerType, tier.WorkerType).
			With(section, jobconf.KeyNumberOfWorkers, strconv.Itoa(int(tier.Workers))).
			Without(section, jobconf.KeyMaxCapacity)
	}

	return snap.
		With(section, jobconf.KeyMaxCapacity, strconv.FormatFloat(tier.MaxCapacity, 'f', -1, 64)).
		Without(section, jobconf.KeyWorkerType).
		Without(section, jobconf.KeyNumberOfWorkers)
}
