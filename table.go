package kvtable

// An EntryIterator is a generalized interface for iterating over Entries,
// regardless of where they come from. Iterators are single forward passes;
// NextEntry returns a NoMoreEntriesError once the underlying sequence is
// exhausted.
type EntryIterator interface {
	HasNextEntry() bool
	NextEntry() (Entry, error)
}

// A Table is a partitioned, immutable key-value collection. Transformation
// operators are eager: each executes immediately across partitions and
// returns a new, fully materialized Table, never mutating the receiver.
// Action operators consume the Table's data instead of producing a new one.
//
// Entries of a Table produced by a shuffle operator (Map, FlatMap, Join,
// Union) always live at the partition index their key hashes to via the
// Table's Partitioner. Non-shuffle operators preserve each Entry's original
// partition index, even if user code changed the key.
type Table interface {
	ID() string               // ID retrieves the unique identifier of this Table
	NumPartitions() int       // NumPartitions retrieves the number of partitions in this Table
	Partitioner() Partitioner // Partitioner retrieves the Partitioner fixed to this Table

	// Map transforms every Entry and redistributes results by the new key
	Map(fn MapOperation) (Table, error)
	// MapValues transforms every Entry's value in place, without a shuffle
	MapValues(fn MapValuesOperation) (Table, error)
	// FlatMap turns every Entry into zero or more Entries, redistributed by their keys
	FlatMap(fn FlatMapOperation) (Table, error)
	// MapPartitions replaces each partition's Entries wholesale, fn receiving an iterator view
	MapPartitions(fn PartitionIterOperation) (Table, error)
	// MapPartitionsList replaces each partition's Entries wholesale, fn receiving a materialized slice
	MapPartitionsList(fn PartitionMapOperation) (Table, error)
	// Glom collapses each partition into a single synthetic Entry whose key is
	// the big-endian partition index and whose value is the EncodeEntries
	// framing of the partition's previous contents
	Glom() (Table, error)
	// Filter retains Entries for which fn returns true, without a shuffle
	Filter(fn FilterOperation) (Table, error)
	// Sample independently retains each Entry with the given probability,
	// using a randomized seed. Fails with InvalidArgumentError if fraction is
	// outside [0, 1].
	Sample(fraction float64) (Table, error)
	// SampleWithSeed is Sample with a fixed seed. For a fixed Table and fixed
	// partition layout, results are fully reproducible.
	SampleWithSeed(fraction float64, seed int64) (Table, error)

	// Join produces one Entry per key present in both Tables, with value
	// fn(selfValue, otherValue). Both sides are re-hashed onto the receiver's
	// partitioning scheme. Join is single-value-per-key: if a key repeats
	// within one side, the last write wins.
	Join(other Table, fn CombineOperation) (Table, error)
	// Union produces one Entry per key present in either Table. Keys present
	// on one side pass their value through; keys present on both combine via
	// fn(selfValue, otherValue). A nil fn keeps the receiver's value. Like
	// Join, duplicate keys within one side resolve to the last write.
	Union(other Table, fn CombineOperation) (Table, error)
	// SubtractByKey retains every Entry of the receiver whose key does not
	// appear in other, preserving the receiver's partition layout
	SubtractByKey(other Table) (Table, error)

	// Count returns the total number of Entries across all partitions
	Count() (int64, error)
	// Collect returns a fresh single-pass iterator over all Entries, in
	// partition-major, insertion-minor order
	Collect() EntryIterator
	// Take returns up to n Entries in Collect order. Fails with
	// InvalidArgumentError when n <= 0.
	Take(n int) ([]Entry, error)
	// First returns the first Entry in Collect order. Fails with
	// EmptyTableError when the Table has no Entries.
	First() (Entry, error)
	// Reduce folds all Entries' values into a single result, in
	// partition-major, insertion-minor order. The first value seeds the
	// accumulator. The fold is not commutative-safe: fn must tolerate this
	// order, or results are non-deterministic across differently-partitioned
	// inputs. Partition partials are merged in ascending index order, so fn
	// must be associative for multi-partition Tables.
	Reduce(fn ReduceOperation) ([]byte, error)
	// GroupReduce groups Entries by kfn(key) and folds each group's values
	// with fn. Within a group, the first value encountered seeds the
	// accumulator and subsequent values fold via fn(acc, value). This is an
	// asymmetric fold: the seed is the first value itself, not a zero value.
	// The result maps each aggregation key (as a string of its raw bytes) to
	// its folded value.
	GroupReduce(kfn KeyingOperation, fn ReduceOperation) (map[string][]byte, error)

	// Save persists this Table through the SinkAdapter registered for the
	// address's backend kind, repartitioned to the requested partition count.
	// On success, engine-derived metadata is merged into the caller's schema
	// mapping; engine keys take precedence on conflict. Fails with
	// UnsupportedBackendError if no adapter matches the address kind.
	Save(address Address, partitions int, schema map[string]string, options ...SaveOption) error
}
