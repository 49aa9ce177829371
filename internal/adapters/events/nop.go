package events

import (
	"context"

	"github.com/example/taskgate/internal/ports/secondary"
)

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, secondary.WorkflowEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

var _ secondary.EventPublisher = NopPublisher{}
