package publish

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/oneee-playground/glue-deployer/internal/blob"
	"github.com/oneee-playground/glue-deployer/internal/jobconf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type State string

const (
	StateUnchanged State = "UNCHANGED"
	StateChanged   State = "CHANGED"
)

// Pass holds the two snapshots of one deployment pass.
type Pass struct {
	Old jobconf.Snapshot
	New jobconf.Snapshot

	// Destination is where the current configuration is published.
	Destination blob.Location
}

type Result struct {
	State   State
	Primary blob.Location
	// Archive is set only when the configuration changed.
	Archive *blob.Location
}

type Publisher struct {
	store blob.Store
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Publisher)

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func NewPublisher(store blob.Store, log *zap.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes the new configuration to its destination. When it differs
// from the old one, the old configuration is also archived next to it under a
// date-stamped name.
func (p *Publisher) Publish(ctx context.Context, pass Pass) (Result, error) {
	result := Result{State: StateUnchanged, Primary: pass.Destination}

	if !jobconf.Equal(pass.Old, pass.New) {
		result.State = StateChanged

		for _, change := range jobconf.Diff(pass.Old, pass.New) {
			p.log.Info("configuration changed",
				zap.String("kind", string(change.Kind)),
				zap.String("section", change.Section),
				zap.String("key", change.Key),
				zap.String("old", change.Old),
				zap.String("new", change.New),
			)
		}

		archive := ArchiveLocation(pass.Destination, p.now())
		if err := p.write(ctx, archive, pass.Old); err != nil {
			return Result{}, errors.Wrap(err, "archiving previous configuration")
		}

		result.Archive = &archive
		p.log.Info("archived previous configuration", zap.Stringer("location", archive))
	}

	if err := p.write(ctx, pass.Destination, pass.New); err != nil {
		return Result{}, errors.Wrap(err, "publishing configuration")
	}

	p.log.Info("published configuration",
		zap.String("state", string(result.State)),
		zap.Stringer("location", pass.Destination),
	)

	return result, nil
}

func (p *Publisher) write(ctx context.Context, loc blob.Location, snap jobconf.Snapshot) error {
	b, err := snap.Encode()
	if err != nil {
		return errors.Wrap(err, "encoding configuration")
	}

	return p.store.Put(ctx, loc, b)
}

// ArchiveLocation turns ".../job.conf" into ".../job_2006-01-02.conf".
func ArchiveLocation(dst blob.Location, at time.Time) blob.Location {
	dir, file := path.Split(dst.Key)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)

	return blob.Location{
		Bucket: dst.Bucket,
		Key:    dir + base + "_" + at.Format(time.DateOnly) + ext,
	}
}
