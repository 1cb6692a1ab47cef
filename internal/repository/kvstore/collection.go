package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
)

// Persistence keys, one JSON array each.
const (
	KeyMedicalRecords = "medicalRecords"
	KeyPrescriptions  = "prescriptions"
	KeyAppointments   = "appointments"
	KeyPatients       = "patients"
)

// AllKeys are the collections Clear removes.
var AllKeys = []string{KeyMedicalRecords, KeyPrescriptions, KeyAppointments, KeyPatients}

// locks serializes read-modify-write cycles per key within one process.
type locks struct {
	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func (l *locks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.keys == nil {
		l.keys = make(map[string]*sync.Mutex)
	}
	m, ok := l.keys[key]
	if !ok {
		m = &sync.Mutex{}
		l.keys[key] = m
	}
	return m
}

// collection is one record kind persisted as a whole array under key.
type collection[T any] struct {
	kv    kv.Store
	key   string
	locks *locks
}

func newCollection[T any](store kv.Store, key string, l *locks) collection[T] {
	return collection[T]{kv: store, key: key, locks: l}
}

// load decodes the full array. An absent key or a literal null is empty.
func (c collection[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.NewCorruptData(c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.key, err)
	}
	return nil
}

// mutate runs fn on the loaded array under the key's lock and writes the
// result back only when fn reports a change. The bool is that report.
func (c collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool)) (bool, error) {
	m := c.locks.get(c.key)
	m.Lock()
	defer m.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return false, err
	}

	items, changed := fn(items)
	if !changed {
		return false, nil
	}
	if err := c.save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
