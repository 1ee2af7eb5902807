package service

import (
	"context"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

// publish never fails the caller; the write it reports on is already committed.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
