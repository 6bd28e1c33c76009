// Package memory provides an in-memory storage backend implementing both the
// SinkAdapter and Source interfaces, enabling save/load round trips within a
// single process.
package memory

import (
	"fmt"
	"sync"

	"github.com/kvtable/kvtable"
)

// Sink is an in-memory storage backend. It implements kvtable.SinkAdapter
// and kvtable.Source: the persist/load capability pair.
type Sink struct {
	mu     sync.RWMutex
	tables map[string][][]kvtable.Entry
}

// CreateSink builds an empty in-memory backend
func CreateSink() *Sink {
	return &Sink{tables: make(map[string][][]kvtable.Entry)}
}

// Kind returns the backend kind of this Sink
func (s *Sink) Kind() string {
	return "memory"
}

func tableKey(name string, namespace string) string {
	return namespace + "/" + name
}

// Persist stores a deep copy of the given partitions under namespace/name.
// If a table already exists at that location and cleanupExisting is false,
// Persist fails; with cleanupExisting the prior table is replaced.
func (s *Sink) Persist(name string, namespace string, partitions [][]kvtable.Entry, cleanupExisting bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tableKey(name, namespace)
	if _, exists := s.tables[key]; exists && !cleanupExisting {
		return fmt.Errorf("table %s already exists in memory backend", key)
	}
	stored := make([][]kvtable.Entry, len(partitions))
	for i, part := range partitions {
		stored[i] = make([]kvtable.Entry, len(part))
		for j, e := range part {
			stored[i][j] = e.Clone()
		}
	}
	s.tables[key] = stored
	return nil
}

// Load retrieves a deep copy of the partitions stored under namespace/name
func (s *Sink) Load(name string, namespace string) ([][]kvtable.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := tableKey(name, namespace)
	stored, ok := s.tables[key]
	if !ok {
		return nil, fmt.Errorf("table %s not found in memory backend", key)
	}
	parts := make([][]kvtable.Entry, len(stored))
	for i, part := range stored {
		parts[i] = make([]kvtable.Entry, len(part))
		for j, e := range part {
			parts[i][j] = e.Clone()
		}
	}
	return parts, nil
}
