package engine

import (
	"encoding/binary"
	"log"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
	"github.com/kvtable/kvtable/internal/partition"
	iutil "github.com/kvtable/kvtable/internal/util"
	"github.com/kvtable/kvtable/logging"
)

// tableImpl is the concrete partitioned key-value table. A tableImpl is
// immutable once its producing operator returns; every operator materializes
// a fresh tableImpl.
type tableImpl struct {
	id            string
	numPartitions int
	partitions    []*partition.Partition
	partitioner   kvtable.Partitioner
	exec          *Executor
}

func createTableImpl(numPartitions int, partitioner kvtable.Partitioner, exec *Executor) *tableImpl {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Table: %v", err)
	}
	partitions := make([]*partition.Partition, numPartitions)
	for i := range partitions {
		partitions[i] = partition.CreatePartition(i)
	}
	return &tableImpl{
		id:            id.String(),
		numPartitions: numPartitions,
		partitions:    partitions,
		partitioner:   partitioner,
		exec:          exec,
	}
}

// derive produces an empty successor table sharing this table's partitioner
// and executor, optionally with a different partition count
func (t *tableImpl) derive(numPartitions int) *tableImpl {
	return createTableImpl(numPartitions, t.partitioner, t.exec)
}

// CreateTable materializes a Table from a sequence of Entries, distributing
// them across numPartitions partitions with the default HashPartitioner.
// Input Entries are deep-copied, so the caller retains ownership of its data.
func CreateTable(entries []kvtable.Entry, numPartitions int) (kvtable.Table, error) {
	if numPartitions <= 0 {
		return nil, errors.InvalidArgumentError{Arg: "numPartitions", Reason: "must be positive"}
	}
	t := createTableImpl(numPartitions, kvtable.HashPartitioner{}, sharedExecutor())
	for _, e := range entries {
		idx := t.partitioner.PartitionIndex(e.Key, numPartitions)
		t.partitions[idx].Append(e.Clone())
	}
	return t, nil
}

// FromPartitions materializes a Table snapshot from pre-partitioned data,
// preserving partition indexes as given. Used when loading from a Source,
// whose layout may not satisfy the hash placement invariant; keyed shuffle
// operators re-hash regardless.
func FromPartitions(parts [][]kvtable.Entry) (kvtable.Table, error) {
	if len(parts) == 0 {
		return nil, errors.InvalidArgumentError{Arg: "parts", Reason: "at least one partition is required"}
	}
	t := createTableImpl(len(parts), kvtable.HashPartitioner{}, sharedExecutor())
	for i, entries := range parts {
		for _, e := range entries {
			t.partitions[i].Append(e.Clone())
		}
	}
	return t, nil
}

// ID retrieves the unique identifier of this Table
func (t *tableImpl) ID() string {
	return t.id
}

// NumPartitions retrieves the number of partitions in this Table
func (t *tableImpl) NumPartitions() int {
	return t.numPartitions
}

// Partitioner retrieves the Partitioner fixed to this Table
func (t *tableImpl) Partitioner() kvtable.Partitioner {
	return t.partitioner
}

// asTableImpl recovers the concrete engine table behind a Table interface
func asTableImpl(other kvtable.Table) (*tableImpl, error) {
	if impl, ok := other.(*tableImpl); ok {
		return impl, nil
	}
	return nil, errors.InvalidArgumentError{Arg: "other", Reason: "table was not produced by this engine"}
}

// mapPartitionsLocal runs fn once per partition in parallel, placing each
// result at the same partition index. No shuffle occurs.
func (t *tableImpl) mapPartitionsLocal(fn func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error)) (*tableImpl, error) {
	next := t.derive(t.numPartitions)
	err := t.exec.RunPartitions(t.numPartitions, func(i int) error {
		out, err := fn(i, t.partitions[i].Entries())
		if err != nil {
			return err
		}
		next.partitions[i].AppendAll(out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// MapValues transforms every Entry's value in place. Keys are unchanged, so
// partition assignment is unchanged and no shuffle occurs.
func (t *tableImpl) MapValues(fn kvtable.MapValuesOperation) (kvtable.Table, error) {
	safeFn := iutil.SafeMapValuesOperation(fn)
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			value, err := safeFn(e.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, kvtable.Entry{Key: e.Key, Value: value})
		}
		return out, nil
	})
}

// Filter retains Entries for which fn returns true. No shuffle occurs.
func (t *tableImpl) Filter(fn kvtable.FilterOperation) (kvtable.Table, error) {
	safeFn := iutil.SafeFilterOperation(fn)
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			keep, err := safeFn(e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, e)
			}
		}
		return out, nil
	})
}

// MapPartitions replaces each partition's Entries wholesale, fn receiving an
// iterator view. Results stay at their original partition index even if fn
// changed keys, because no re-partitioning occurs.
func (t *tableImpl) MapPartitions(fn kvtable.PartitionIterOperation) (kvtable.Table, error) {
	safeFn := iutil.SafePartitionIterOperation(fn)
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		return safeFn(partition.CreateEntryIterator(in))
	})
}

// MapPartitionsList replaces each partition's Entries wholesale, fn receiving
// a materialized slice. Behaviorally identical to MapPartitions.
func (t *tableImpl) MapPartitionsList(fn kvtable.PartitionMapOperation) (kvtable.Table, error) {
	safeFn := iutil.SafePartitionMapOperation(fn)
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		view := make([]kvtable.Entry, len(in))
		copy(view, in)
		return safeFn(view)
	})
}

// Glom collapses each partition into a single synthetic Entry: the key is the
// big-endian partition index, the value the EncodeEntries framing of the
// partition's previous contents. Empty partitions glom to an empty list.
func (t *tableImpl) Glom() (kvtable.Table, error) {
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		value, err := kvtable.EncodeEntries(in)
		if err != nil {
			return nil, err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, uint64(idx))
		return []kvtable.Entry{{Key: key, Value: value}}, nil
	})
}

// Sample independently retains each Entry with the given probability, using a
// randomized seed
func (t *tableImpl) Sample(fraction float64) (kvtable.Table, error) {
	return t.SampleWithSeed(fraction, time.Now().UnixNano())
}

// SampleWithSeed independently retains each Entry with the given probability.
// Each partition derives its generator from seed and its own index, so for a
// fixed Table and fixed partition layout the result is fully reproducible.
func (t *tableImpl) SampleWithSeed(fraction float64, seed int64) (kvtable.Table, error) {
	if fraction < 0 || fraction > 1 {
		return nil, errors.InvalidArgumentError{Arg: "fraction", Reason: "must be within [0, 1]"}
	}
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		rng := rand.New(rand.NewSource(seed + int64(idx)))
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			if rng.Float64() < fraction {
				out = append(out, e)
			}
		}
		return out, nil
	})
}

// Map transforms every Entry and redistributes results by the new key. The
// key may change, so the original partition assignment cannot be assumed and
// a shuffle always occurs.
func (t *tableImpl) Map(fn kvtable.MapOperation) (kvtable.Table, error) {
	safeFn := iutil.SafeMapOperation(fn)
	return t.shuffle(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			key, value, err := safeFn(e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, kvtable.Entry{Key: key, Value: value})
		}
		return out, nil
	})
}

// FlatMap turns every Entry into zero or more Entries, each redistributed by
// its key like the results of Map
func (t *tableImpl) FlatMap(fn kvtable.FlatMapOperation) (kvtable.Table, error) {
	safeFn := iutil.SafeFlatMapOperation(fn)
	return t.shuffle(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			produced, err := safeFn(e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, produced...)
		}
		return out, nil
	})
}

// Count returns the total number of Entries across all partitions as a
// parallel per-partition sum
func (t *tableImpl) Count() (int64, error) {
	var total int64
	err := t.exec.RunPartitions(t.numPartitions, func(i int) error {
		atomic.AddInt64(&total, int64(t.partitions[i].NumEntries()))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Collect returns a fresh single-pass iterator over all Entries, in
// partition-major, insertion-minor order
func (t *tableImpl) Collect() kvtable.EntryIterator {
	return partition.CreateChainIterator(t.partitions)
}

// Take returns up to n Entries in Collect order
func (t *tableImpl) Take(n int) ([]kvtable.Entry, error) {
	if n <= 0 {
		return nil, errors.InvalidArgumentError{Arg: "n", Reason: "must be positive"}
	}
	out := make([]kvtable.Entry, 0, n)
	it := t.Collect()
	for len(out) < n && it.HasNextEntry() {
		e, err := it.NextEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// First returns the first Entry in Collect order
func (t *tableImpl) First() (kvtable.Entry, error) {
	entries, err := t.Take(1)
	if err != nil {
		return kvtable.Entry{}, err
	}
	if len(entries) < 1 {
		return kvtable.Entry{}, errors.EmptyTableError{}
	}
	return entries[0], nil
}

// Reduce folds all Entries' values into a single result. Each partition folds
// its own values in insertion order (the first value seeds the accumulator),
// then partials merge sequentially in ascending partition index order. fn
// must be associative for the partial merge to match a pure sequential fold.
func (t *tableImpl) Reduce(fn kvtable.ReduceOperation) ([]byte, error) {
	safeFn := iutil.SafeReduceOperation(fn)
	partials := make([][]byte, t.numPartitions)
	seeded := make([]bool, t.numPartitions)
	err := t.exec.RunPartitions(t.numPartitions, func(i int) error {
		for _, e := range t.partitions[i].Entries() {
			if !seeded[i] {
				partials[i] = e.Value
				seeded[i] = true
				continue
			}
			acc, err := safeFn(partials[i], e.Value)
			if err != nil {
				return err
			}
			partials[i] = acc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var acc []byte
	accSeeded := false
	for i := 0; i < t.numPartitions; i++ {
		if !seeded[i] {
			continue
		}
		if !accSeeded {
			acc = partials[i]
			accSeeded = true
			continue
		}
		acc, err = safeFn(acc, partials[i])
		if err != nil {
			return nil, err
		}
	}
	if !accSeeded {
		return nil, errors.EmptyTableError{}
	}
	return acc, nil
}

// groupFold holds a partition's partial grouped fold, preserving the order in
// which aggregation keys were first seen
type groupFold struct {
	order []string
	vals  map[string][]byte
}

// GroupReduce groups Entries by kfn(key) and folds each group's values with
// fn. The first value encountered for a group seeds its accumulator; this
// asymmetric fold is deliberate and preserved exactly.
func (t *tableImpl) GroupReduce(kfn kvtable.KeyingOperation, fn kvtable.ReduceOperation) (map[string][]byte, error) {
	safeKfn := iutil.SafeKeyingOperation(kfn)
	safeFn := iutil.SafeReduceOperation(fn)
	partials := make([]*groupFold, t.numPartitions)
	err := t.exec.RunPartitions(t.numPartitions, func(i int) error {
		fold := &groupFold{vals: make(map[string][]byte)}
		for _, e := range t.partitions[i].Entries() {
			aggKey, err := safeKfn(e.Key)
			if err != nil {
				return err
			}
			k := string(aggKey)
			if acc, ok := fold.vals[k]; ok {
				merged, err := safeFn(acc, e.Value)
				if err != nil {
					return err
				}
				fold.vals[k] = merged
			} else {
				fold.order = append(fold.order, k)
				fold.vals[k] = e.Value
			}
		}
		partials[i] = fold
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte)
	for i := 0; i < t.numPartitions; i++ {
		for _, k := range partials[i].order {
			if acc, ok := result[k]; ok {
				merged, err := safeFn(acc, partials[i].vals[k])
				if err != nil {
					return nil, err
				}
				result[k] = merged
			} else {
				result[k] = partials[i].vals[k]
			}
		}
	}
	return result, nil
}

// Save persists this Table through the SinkAdapter registered for the
// address's backend kind, re-hashed onto the requested partition count. On
// success, engine-derived metadata ("partitions", "count", "backend") is
// merged into the caller's schema mapping, overwriting conflicting keys.
func (t *tableImpl) Save(address kvtable.Address, partitions int, schema map[string]string, options ...kvtable.SaveOption) error {
	if partitions <= 0 {
		return errors.InvalidArgumentError{Arg: "partitions", Reason: "must be positive"}
	}
	cfg := kvtable.SaveConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	adapter, err := kvtable.LookupSinkAdapter(address.Kind)
	if err != nil {
		return err
	}
	parts, err := t.rehashOnto(partitions, t.partitioner)
	if err != nil {
		return err
	}
	logging.Info("saving table %s as %s/%s via %s backend", t.id, address.Namespace, address.Name, address.Kind)
	if err := adapter.Persist(address.Name, address.Namespace, parts, cfg.CleanupExisting); err != nil {
		return err
	}
	if schema != nil {
		count, err := t.Count()
		if err != nil {
			return err
		}
		schema["partitions"] = strconv.Itoa(partitions)
		schema["count"] = strconv.FormatInt(count, 10)
		schema["backend"] = address.Kind
	}
	return nil
}
