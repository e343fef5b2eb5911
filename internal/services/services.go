// Package services implements the application's operations on top of
// storage: session authentication, the expense ledger, the budget register
// and the aggregator.
package services

import (
	"context"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func orNop(p events.Publisher) events.Publisher {
	if p == nil {
		return events.NopPublisher{}
	}
	return p
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Discard()
	}
	return l
}

// publish delivers e after a committed write. Failures are logged only; the
// write has already succeeded.
func publish(ctx context.Context, p events.Publisher, logger *log.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish event",
			log.FieldOperation, log.OpPublish,
			log.FieldEvent, e.Type,
			log.FieldUserID, e.UserID,
			log.FieldError, err)
	}
}
