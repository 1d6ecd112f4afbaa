package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// Realtime event types pushed to connected clients.
const (
	EventNotificationCreated   = "notification_created"
	EventNotificationRetracted = "notification_retracted"
)

// Publisher delivers a payload to one user's realtime channel.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// Outcome is what Apply changed, kept for publishing after commit.
type Outcome struct {
	Created   []models.Notification
	Retracted []Event
}

// Dispatcher writes notification events and relays them to realtime clients.
type Dispatcher struct {
	publisher Publisher
}

// NewDispatcher creates a Dispatcher. A nil publisher disables realtime delivery.
func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

// Apply writes events through repo, which should be bound to the transaction
// of the triggering write so both commit or roll back together.
func (d *Dispatcher) Apply(ctx context.Context, repo repository.NotificationRepository, events []Event) (Outcome, error) {
	var out Outcome
	for _, ev := range events {
		switch ev.Action {
		case ActionEmit:
			actorID := ev.ActorID
			n := models.Notification{
				RecipientID: ev.RecipientID,
				ActorID:     &actorID,
				Type:        ev.Type,
				Message:     ev.Message,
				ReferenceID: ev.ReferenceID,
			}
			if err := repo.Create(ctx, &n); err != nil {
				return Outcome{}, err
			}
			out.Created = append(out.Created, n)
		case ActionRetract:
			if _, err := repo.DeleteLatest(ctx, ev.RecipientID, ev.ActorID, ev.Type, ev.ReferenceID); err != nil {
				return Outcome{}, err
			}
			out.Retracted = append(out.Retracted, ev)
		default:
			return Outcome{}, models.NewInternalError(fmt.Errorf("unknown notification action %q", ev.Action))
		}
	}
	return out, nil
}

// Publish relays a committed outcome. Delivery is best effort: failures are
// logged and never surface to the caller.
func (d *Dispatcher) Publish(ctx context.Context, out Outcome) {
	for i := range out.Created {
		n := out.Created[i]
		observability.NotificationEvents.WithLabelValues(string(ActionEmit)).Inc()
		d.publish(ctx, n.RecipientID, EventNotificationCreated, n)
	}
	for _, ev := range out.Retracted {
		observability.NotificationEvents.WithLabelValues(string(ActionRetract)).Inc()
		d.publish(ctx, ev.RecipientID, EventNotificationRetracted, map[string]interface{}{
			"type":         ev.Type,
			"actor_id":     ev.ActorID,
			"reference_id": ev.ReferenceID,
		})
	}
}

func (d *Dispatcher) publish(ctx context.Context, userID uint, eventType string, payload interface{}) {
	if d.publisher == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal notification event", slog.String("event", eventType), slog.String("error", err.Error()))
		return
	}
	if err := d.publisher.PublishUser(ctx, userID, string(msg)); err != nil {
		slog.WarnContext(ctx, "failed to publish notification event",
			slog.String("event", eventType),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
