package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

// AuditWorker writes one log line per store event it receives.
type AuditWorker struct {
	broker   messaging.Broker
	channels []string
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuditWorker(broker messaging.Broker, channels []string, log *logger.Logger, m *metrics.Metrics) *AuditWorker {
	if len(channels) == 0 {
		channels = model.AllEventTypes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuditWorker{
		broker:   broker,
		channels: channels,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Start blocks until ctx is done.
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("audit worker started", "channels", len(w.channels))
	err := messaging.Consume(ctx, w.broker, w.channels, w.handle, func(channel string, err error) {
		w.logger.Error(err, "failed to process event", "channel", channel)
	})
	w.logger.Info("audit worker stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *AuditWorker) handle(channel string, payload []byte) error {
	var evt model.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if evt.EventType == "" {
		evt.EventType = channel
	}

	if w.metrics != nil {
		w.metrics.EventsConsumed.WithLabelValues(evt.EventType).Inc()
		if !evt.OccurredAt.IsZero() {
			w.metrics.EventLatency.WithLabelValues(evt.EventType).Observe(w.now().Sub(evt.OccurredAt).Seconds())
		}
	}

	w.logger.ZL.Info().
		Str("event_type", evt.EventType).
		Str("entity_id", evt.EntityID).
		Str("patient_email", evt.PatientEmail).
		Time("occurred_at", evt.OccurredAt).
		Msg("audit")
	return nil
}
