package kvtable

// MapOperation - A generic function for transforming an Entry into a new
// Entry, potentially with a new key. Because the key may change, results are
// redistributed across partitions via the Table's Partitioner.
type MapOperation func(key []byte, value []byte) ([]byte, []byte, error)

// MapValuesOperation - A generic function for transforming an Entry's value
// in place. The key is untouched, so no shuffle occurs.
type MapValuesOperation func(value []byte) ([]byte, error)

// FlatMapOperation - A generic function for turning an Entry into zero or
// more Entries, each of which is redistributed like the results of a
// MapOperation.
type FlatMapOperation func(key []byte, value []byte) ([]Entry, error)

// FilterOperation - A generic function for determining whether or not an
// Entry should be retained
type FilterOperation func(key []byte, value []byte) (bool, error)

// PartitionMapOperation - A generic function which receives all Entries of a
// single partition as a materialized slice and returns the replacement
// Entries for that same partition index
type PartitionMapOperation func(entries []Entry) ([]Entry, error)

// PartitionIterOperation - A generic function which receives all Entries of a
// single partition as an iterator and returns the replacement Entries for
// that same partition index. Behaviorally identical to PartitionMapOperation.
type PartitionIterOperation func(entries EntryIterator) ([]Entry, error)

// CombineOperation - A generic function for combining the values of two
// Entries which share a key, e.g. during a Join or Union
type CombineOperation func(left []byte, right []byte) ([]byte, error)

// ReduceOperation - A generic function for folding a value into an
// accumulator. The first value encountered seeds the accumulator.
type ReduceOperation func(acc []byte, value []byte) ([]byte, error)

// KeyingOperation - A generic function for deriving an aggregation key from
// an Entry's original key, used by GroupReduce
type KeyingOperation func(key []byte) ([]byte, error)
