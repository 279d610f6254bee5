package audit

import (
	"context"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/search/ports"
)

// Subscriber translates domain events into audit entries. It runs on the
// event bus so the publishing side stays unaware of the audit trail.
type Subscriber struct {
	recorder ports.AuditLog
}

func NewSubscriber(recorder ports.AuditLog) *Subscriber {
	return &Subscriber{recorder: recorder}
}

// RegisterHandlers subscribes to the audited domain events.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.SearchRejectedName, events.HandlerFunc(s.onSearchRejected))
	bus.Subscribe(events.CorrectionAppliedName, events.HandlerFunc(s.onCorrectionApplied))
}

func (s *Subscriber) onSearchRejected(ctx context.Context, event events.Event) error {
	rejected, ok := event.(events.SearchRejected)
	if !ok {
		return nil
	}

	s.recorder.Record(ctx, events.SearchRejectedName, rejected.UserID, map[string]string{
		"department": rejected.Department,
		"error_type": rejected.ErrorType,
		"input":      rejected.Input,
	})
	return nil
}

func (s *Subscriber) onCorrectionApplied(ctx context.Context, event events.Event) error {
	applied, ok := event.(events.CorrectionApplied)
	if !ok {
		return nil
	}

	s.recorder.Record(ctx, events.CorrectionAppliedName, applied.UserID, map[string]string{
		"department": applied.Department,
		"original":   applied.OriginalText,
		"corrected":  applied.CorrectedText,
	})
	return nil
}
