package kafka

import (
	"context"
	"fmt"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/pkg/kafka"
)

const eventSource = "warehouse-core"

// MoveNotifier publishes move workflow notifications so driver terminals can
// refresh their queues without polling
type MoveNotifier struct {
	publisher kafka.EventPublisher
	topic     string
}

func NewMoveNotifier(publisher kafka.EventPublisher) *MoveNotifier {
	return &MoveNotifier{
		publisher: publisher,
		topic:     kafka.Topics.MoveEvents,
	}
}

func (n *MoveNotifier) publish(ctx context.Context, eventType string, task *domain.MoveTask) error {
	event, err := kafka.NewEvent(eventType, eventSource, "move/"+task.ID, task)
	if err != nil {
		return fmt.Errorf("failed to build move event: %w", err)
	}
	event.Agency = task.Agency
	event.OrderID = task.ID

	if err := n.publisher.PublishEvent(ctx, n.topic, event); err != nil {
		return fmt.Errorf("failed to publish move event: %w", err)
	}
	return nil
}

func (n *MoveNotifier) MoveCreated(ctx context.Context, task *domain.MoveTask) error {
	return n.publish(ctx, "warehouse.move.created", task)
}

func (n *MoveNotifier) MoveTaken(ctx context.Context, task *domain.MoveTask) error {
	return n.publish(ctx, "warehouse.move.taken", task)
}

func (n *MoveNotifier) MoveCompleted(ctx context.Context, task *domain.MoveTask) error {
	return n.publish(ctx, "warehouse.move.completed", task)
}
