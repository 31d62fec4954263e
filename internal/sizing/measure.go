package sizing

import (
	"context"

	"github.com/oneee-playground/glue-deployer/internal/blob"
	"github.com/pkg/errors"
)

type Measurer struct {
	lister blob.Lister
}

func NewMeasurer(lister blob.Lister) *Measurer {
	return &Measurer{lister: lister}
}

// Measure returns the total size in bytes of every object under loc.
func (m *Measurer) Measure(ctx context.Context, loc blob.Location) (int64, error) {
	objects, err := m.lister.List(ctx, loc)
	if err != nil {
		return 0, errors.Wrap(err, "measuring prefix size")
	}

	var total int64
	for _, obj := range objects {
		total += obj.Size
	}

	return total, nil
}
