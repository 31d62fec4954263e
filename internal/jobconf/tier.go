package jobconf

import (
	"strconv"

	"github.com/pkg/errors"
)

var ErrTierUnset = errors.New("resource tier is not set")

// Tier is the compute sizing of a job. Either WorkerType and Workers are set,
// or MaxCapacity is set. Never both.
type Tier struct {
	WorkerType  string
	Workers     int32
	MaxCapacity float64
}

func DiscreteTier(workerType string, workers int32) Tier {
	return Tier{WorkerType: workerType, Workers: workers}
}

func CapacityTier(maxCapacity float64) Tier {
	return Tier{MaxCapacity: maxCapacity}
}

func (t Tier) Discrete() bool { return t.WorkerType != "" }

func (t Tier) IsZero() bool { return t == Tier{} }

func (t Tier) Validate() error {
	if t.IsZero() {
		return ErrTierUnset
	}

	if t.Discrete() {
		if t.MaxCapacity != 0 {
			return errors.New("worker type and max capacity are both set")
		}
		if t.Workers <= 0 {
			return errors.Errorf("worker count must be positive. got: %d", t.Workers)
		}
		return nil
	}

	if t.Workers != 0 {
		return errors.New("worker count set without worker type")
	}
	if t.MaxCapacity <= 0 {
		return errors.Errorf("max capacity must be positive. got: %v", t.MaxCapacity)
	}

	return nil
}

// TierFromSection reads a tier out of the compute sizing section.
// WorkerType takes precedence over MaxCapacity when both are present.
func TierFromSection(values map[string]string) (Tier, error) {
	if workerType, ok := values[KeyWorkerType]; ok && workerType != "" {
		workers, err := strconv.ParseInt(values[KeyNumberOfWorkers], 10, 32)
		if err != nil {
			return Tier{}, errors.Wrapf(err, "parsing %s", KeyNumberOfWorkers)
		}

		return DiscreteTier(workerType, int32(workers)), nil
	}

	if raw, ok := values[KeyMaxCapacity]; ok {
		capacity, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Tier{}, errors.Wrapf(err, "parsing %s", KeyMaxCapacity)
		}

		return CapacityTier(capacity), nil
	}

	return Tier{}, ErrTierUnset
}
