package services

import (
	"context"
	"time"

	"hospitality_pos/internal/realtime"

	"go.uber.org/zap"
)

type ChangePublisher interface {
	PublishChange(ctx context.Context, change realtime.Change) error
}

// notifier publishes change notifications. Publishing is best effort: the
// write it reports on has already happened.
type notifier struct {
	pub    ChangePublisher
	logger *zap.Logger
}

func (n notifier) notify(ctx context.Context, collection string, event realtime.EventType, id uint, tableID *uint) {
	if n.pub == nil {
		return
	}
	change := realtime.Change{
		Collection: collection,
		Event:      event,
		RecordID:   id,
		TableID:    tableID,
		At:         time.Now(),
	}
	if err := n.pub.PublishChange(ctx, change); err != nil {
		n.logger.Warn("change notification failed",
			zap.String("collection", collection),
			zap.String("event", string(event)),
			zap.Uint("record_id", id),
			zap.Error(err))
	}
}

func uintPtr(v uint) *uint {
	return &v
}
