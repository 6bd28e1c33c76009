// Package memory provides a Table materialization from in-memory key-value
// data, suitable for testing or small datasets.
package memory

import (
	"github.com/kvtable/kvtable"
	"github.com/kvtable/kvtable/internal/engine"
)

// CreateTable is a factory for Tables backed by in-memory data. Entries are
// distributed across numPartitions partitions by the default HashPartitioner;
// the input slice is deep-copied, so the caller retains ownership.
func CreateTable(entries []kvtable.Entry, numPartitions int) (kvtable.Table, error) {
	return engine.CreateTable(entries, numPartitions)
}
