package outbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReplayStore is the part of Repository needed to replay failed events.
type ReplayStore interface {
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	GetEventByID(ctx context.Context, eventID int64) (*Event, error)
	ResetEvent(ctx context.Context, eventID int64) error
}

// ReplayService 将失败事件重置为 pending，交给 Dispatcher 重新发送
type ReplayService struct {
	store  ReplayStore
	logger *zap.Logger
}

// NewReplayService 创建新的 ReplayService
func NewReplayService(store ReplayStore, logger *zap.Logger) *ReplayService {
	return &ReplayService{store: store, logger: logger}
}

// ReplayEvent resets a single event regardless of its current status.
func (s *ReplayService) ReplayEvent(ctx context.Context, eventID int64) error {
	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.Status == StatusPending {
		return nil
	}
	if err := s.store.ResetEvent(ctx, eventID); err != nil {
		return err
	}
	s.logger.Info("Outbox event queued for replay",
		zap.Int64("event_id", eventID),
		zap.String("routing_key", event.RoutingKey),
	)
	return nil
}

// ReplayFailedEvents resets up to limit failed events and returns how many
// were reset.
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.store.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	count := 0
	for _, event := range events {
		if err := s.store.ResetEvent(ctx, event.ID); err != nil {
			// 记录错误但继续处理其他事件
			s.logger.Warn("Failed to reset outbox event", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}
