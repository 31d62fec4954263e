package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunEvent reports the outcome of one deployment pass.
type RunEvent struct {
	ID        uuid.UUID     `json:"id"`
	RequestID uuid.UUID     `json:"requestID"`
	JobName   string        `json:"jobName"`
	RunID     string        `json:"runID"`
	Status    string        `json:"status"`
	Success   bool          `json:"success"`
	Canceled  bool          `json:"canceled"`
	Took      time.Duration `json:"took"`
	Extra     string        `json:"extra"`
}

type Publisher interface {
	Publish(ctx context.Context, e RunEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e RunEvent) error { return nil }
