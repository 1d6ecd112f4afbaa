package notifications

import "github.com/madaghaxx/Noctua/internal/models"

// Action says whether an event adds or withdraws a notification.
type Action string

const (
	ActionEmit    Action = "emit"
	ActionRetract Action = "retract"
)

// Event is a notification side effect produced by a primary mutation. Core
// operations only describe events; the Dispatcher is the one writer.
type Event struct {
	Action      Action
	RecipientID uint
	ActorID     uint
	Type        models.NotificationType
	Message     string
	ReferenceID uint
}

// Batch collects events for one operation. Events addressed to their own
// actor are dropped on the way in.
type Batch []Event

// Emit queues a new notification for recipient.
func (b *Batch) Emit(recipientID, actorID uint, typ models.NotificationType, message string, referenceID uint) {
	if recipientID == actorID {
		return
	}
	*b = append(*b, Event{
		Action:      ActionEmit,
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		Message:     message,
		ReferenceID: referenceID,
	})
}

// Retract queues removal of the latest notification matching the tuple.
func (b *Batch) Retract(recipientID, actorID uint, typ models.NotificationType, referenceID uint) {
	if recipientID == actorID {
		return
	}
	*b = append(*b, Event{
		Action:      ActionRetract,
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		ReferenceID: referenceID,
	})
}
