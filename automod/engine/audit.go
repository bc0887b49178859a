package engine

import (
	"context"
	"errors"
)

// Destination for human-readable moderation audit lines. Delivery is best-effort.
type AuditSink interface {
	LogModAction(ctx context.Context, text string) error
}

// Fans out to several sinks. Every sink is attempted; errors are joined.
type MultiAuditSink []AuditSink

func (m MultiAuditSink) LogModAction(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if err := s.LogModAction(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
