package kvtable

import (
	"sync"

	errors "github.com/kvtable/kvtable/errors"
)

// An Address identifies a table location within an external storage backend.
// Kind is the variant tag used to select a registered SinkAdapter or Source.
type Address struct {
	Kind      string // backend kind, e.g. "memory" or "file"
	Name      string // table name within the backend
	Namespace string // table namespace within the backend
}

// A SinkAdapter persists Tables to an external storage backend. One adapter
// exists per backend kind. Persist receives the table name and namespace from
// the target Address, the fully materialized partitions, and whether any
// existing table at that location should be removed first. Adapters may fail
// with backend-specific I/O errors.
type SinkAdapter interface {
	Kind() string
	Persist(name string, namespace string, partitions [][]Entry, cleanupExisting bool) error
}

// A Source materializes previously persisted table data from an external
// storage backend, returning one Entry slice per partition index
type Source interface {
	Kind() string
	Load(name string, namespace string) ([][]Entry, error)
}

// SaveConfig holds optional parameters for Table.Save
type SaveConfig struct {
	CleanupExisting bool
}

// SaveOption mutates a SaveConfig
type SaveOption func(*SaveConfig)

// WithCleanup configures Save to remove any existing table at the target
// address before persisting. Defaults to false.
func WithCleanup(cleanup bool) SaveOption {
	return func(cfg *SaveConfig) {
		cfg.CleanupExisting = cleanup
	}
}

var (
	sinksMu sync.RWMutex
	sinks   = make(map[string]SinkAdapter)
)

// RegisterSinkAdapter makes a SinkAdapter available to Table.Save under its
// backend kind. Registering a nil adapter, or two adapters with the same
// kind, panics.
func RegisterSinkAdapter(adapter SinkAdapter) {
	sinksMu.Lock()
	defer sinksMu.Unlock()
	if adapter == nil {
		panic("kvtable: RegisterSinkAdapter adapter is nil")
	}
	if _, dup := sinks[adapter.Kind()]; dup {
		panic("kvtable: RegisterSinkAdapter called twice for kind " + adapter.Kind())
	}
	sinks[adapter.Kind()] = adapter
}

// LookupSinkAdapter retrieves the SinkAdapter registered for a backend kind,
// or an UnsupportedBackendError if none matches
func LookupSinkAdapter(kind string) (SinkAdapter, error) {
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	adapter, ok := sinks[kind]
	if !ok {
		return nil, errors.UnsupportedBackendError{Kind: kind}
	}
	return adapter, nil
}
