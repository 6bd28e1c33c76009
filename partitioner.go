package kvtable

import (
	xxhash "github.com/cespare/xxhash/v2"
)

// A Partitioner is a deterministic, pure function mapping an Entry key to a
// partition index in [0, numPartitions). A Partitioner is fixed per Table;
// changing the partition count requires a shuffle operator, which re-applies
// the Partitioner to every key against the new count.
type Partitioner interface {
	PartitionIndex(key []byte, numPartitions int) int
}

// HashPartitioner assigns keys to partitions by hashing key bytes with
// xxhash64 and taking the remainder modulo the partition count. It is the
// default Partitioner for Tables built by this engine.
type HashPartitioner struct{}

// PartitionIndex computes the partition index for a key
func (p HashPartitioner) PartitionIndex(key []byte, numPartitions int) int {
	if numPartitions <= 1 {
		return 0
	}
	return int(xxhash.Sum64(key) % uint64(numPartitions))
}
