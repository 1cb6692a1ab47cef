package event

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
)

// Emitter publishes store events after a write has been persisted. A failed
// publish is logged and never reported to the caller.
type Emitter struct {
	publisher messaging.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewEmitter(publisher messaging.Publisher, log *logger.Logger) *Emitter {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Emitter{publisher: publisher, logger: log, now: time.Now}
}

func (e *Emitter) Emit(ctx context.Context, eventType, entityID, patientEmail string, payload interface{}) {
	evt := model.Event{
		EventType:    eventType,
		EntityID:     entityID,
		PatientEmail: patientEmail,
		Payload:      payload,
		OccurredAt:   e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, eventType, evt); err != nil {
		e.logger.WithContext(ctx).Error(err, "failed to publish event",
			"event_type", eventType, "entity_id", entityID)
		return
	}
	e.logger.WithContext(ctx).Debug("event published", "event_type", eventType, "entity_id", entityID)
}
