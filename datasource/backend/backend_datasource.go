// Package backend provides a Table materialization from a storage backend
// Source, the load half of the persist/load capability pair.
package backend

import (
	"github.com/kvtable/kvtable"
	"github.com/kvtable/kvtable/internal/engine"
)

// CreateTable materializes a Table snapshot from previously persisted data.
// The loaded partition layout is preserved as-is; it is not required to
// satisfy the engine's hash placement invariant, since keyed shuffle
// operators re-hash regardless.
func CreateTable(source kvtable.Source, name string, namespace string) (kvtable.Table, error) {
	parts, err := source.Load(name, namespace)
	if err != nil {
		return nil, err
	}
	return engine.FromPartitions(parts)
}
