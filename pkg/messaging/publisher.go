package messaging

import (
	"context"

	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

// BrokerPublisher publishes on the channel named after the event type.
type BrokerPublisher struct {
	broker  Broker
	metrics *metrics.Metrics
}

func NewBrokerPublisher(broker Broker, m *metrics.Metrics) *BrokerPublisher {
	return &BrokerPublisher{broker: broker, metrics: m}
}

func (p *BrokerPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	err := p.broker.Publish(ctx, eventType, payload)
	if p.metrics != nil {
		if err != nil {
			p.metrics.EventsFailed.WithLabelValues(eventType).Inc()
		} else {
			p.metrics.EventsPublished.WithLabelValues(eventType).Inc()
		}
	}
	return err
}

// NopPublisher drops everything.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
