package kv

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-portal/pkg/metrics"
)

type instrumentedStore struct {
	next    Store
	metrics *metrics.Metrics
}

// Instrument records operation counts and latency for every call on next.
func Instrument(next Store, m *metrics.Metrics) Store {
	if m == nil {
		return next
	}
	return &instrumentedStore{next: next, metrics: m}
}

func (s *instrumentedStore) observe(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.KVOperations.WithLabelValues(op, status).Inc()
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	timer := prometheus.NewTimer(s.metrics.KVLatency.WithLabelValues("get"))
	defer timer.ObserveDuration()

	v, ok, err := s.next.Get(ctx, key)
	s.observe("get", err)
	return v, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) error {
	timer := prometheus.NewTimer(s.metrics.KVLatency.WithLabelValues("set"))
	defer timer.ObserveDuration()

	err := s.next.Set(ctx, key, value)
	s.observe("set", err)
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	timer := prometheus.NewTimer(s.metrics.KVLatency.WithLabelValues("remove"))
	defer timer.ObserveDuration()

	err := s.next.Remove(ctx, key)
	s.observe("remove", err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
