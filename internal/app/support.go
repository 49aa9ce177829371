// Package app contains the application services that orchestrate the functional core
// with the secondary ports.
package app

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

const tracerName = "github.com/example/taskgate/internal/app"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startSpan opens an operation span tagged with the work item.
func startSpan(ctx context.Context, name string, workItemID int64) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attribute.Int64("work_item.id", workItemID)))
}

// endSpan records err on span, classifies it, and closes the span.
func endSpan(span trace.Span, op string, err error) error {
	defer span.End()
	if err == nil {
		return nil
	}
	err = errs.Wrap(op, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, errs.KindOf(err).String())
	return err
}

// itemGuard serializes units of work on work items. Items are locked in
// ascending order and fn runs in one transaction while the locks are held.
type itemGuard struct {
	locker secondary.ItemLocker
	tx     secondary.Transactor
}

func (g itemGuard) run(ctx context.Context, fn func(ctx context.Context) error, workItemIDs ...int64) error {
	ids := slices.DeleteFunc(slices.Clone(workItemIDs), func(id int64) bool { return id <= 0 })
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		unlock, err := g.locker.Lock(ctx, id)
		if err != nil {
			return err
		}
		defer unlock()
	}

	return g.tx.WithinTx(ctx, fn)
}

// publisher sends events after commit. Failures never fail the operation.
type publisher struct {
	events secondary.EventPublisher
	logger *slog.Logger
}

func (p publisher) publish(ctx context.Context, event secondary.WorkflowEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to publish workflow event",
			"type", event.Type, "work_item", event.WorkItemID, "error", err)
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
