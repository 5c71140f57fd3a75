// Package audit records accepted ingestion payloads. The sink is injectable
// so the core stays testable without a durable logging substrate; it is
// invoked after the transaction commits and its failures never undo an
// ingestion.
package audit

import (
	"context"
	"sync"
)

// Sink receives the raw payload of every successful ingestion, one record
// per call, append-only.
type Sink interface {
	Record(ctx context.Context, payload []byte) error
}

// Memory buffers records in memory for tests.
type Memory struct {
	mu      sync.Mutex
	records [][]byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, append([]byte(nil), payload...))
	return nil
}

// Records returns a copy of everything recorded so far.
func (m *Memory) Records() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.records))
	copy(out, m.records)
	return out
}
