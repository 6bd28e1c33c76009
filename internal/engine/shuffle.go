package engine

import (
	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
	iutil "github.com/kvtable/kvtable/internal/util"
	"github.com/kvtable/kvtable/logging"
)

// shuffle runs emit once per source partition, re-hashes every produced Entry
// onto this table's partitioning scheme, and gathers destination partitions.
// Two phases with a barrier between them: phase 1 computes and buckets
// per-source output in parallel, phase 2 assembles each destination partition
// in parallel once all of phase 1 has completed. Within a destination,
// entries appear in ascending source partition order, insertion order within
// each source, keeping shuffles deterministic.
func (t *tableImpl) shuffle(emit func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error)) (kvtable.Table, error) {
	next := t.derive(t.numPartitions)
	buckets, err := t.emitBuckets(emit, t.numPartitions, t.partitioner)
	if err != nil {
		return nil, err
	}
	err = t.exec.RunPartitions(t.numPartitions, func(dest int) error {
		for src := 0; src < t.numPartitions; src++ {
			next.partitions[dest].AppendAll(buckets[src][dest])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// emitBuckets is shuffle phase 1: per source partition, run emit and bucket
// its output by destination index under the given scheme
func (t *tableImpl) emitBuckets(emit func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error), numPartitions int, partitioner kvtable.Partitioner) ([][][]kvtable.Entry, error) {
	logging.Debug("shuffling table %s: %d -> %d partitions", t.id, t.numPartitions, numPartitions)
	buckets := make([][][]kvtable.Entry, t.numPartitions)
	err := t.exec.RunPartitions(t.numPartitions, func(src int) error {
		out, err := emit(src, t.partitions[src].Entries())
		if err != nil {
			return err
		}
		local := make([][]kvtable.Entry, numPartitions)
		for _, e := range out {
			dest := partitioner.PartitionIndex(e.Key, numPartitions)
			local[dest] = append(local[dest], e)
		}
		buckets[src] = local
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// rehashOnto re-partitions this table's entries onto a target scheme,
// returning one Entry slice per destination index
func (t *tableImpl) rehashOnto(numPartitions int, partitioner kvtable.Partitioner) ([][]kvtable.Entry, error) {
	identity := func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		return in, nil
	}
	buckets, err := t.emitBuckets(identity, numPartitions, partitioner)
	if err != nil {
		return nil, err
	}
	parts := make([][]kvtable.Entry, numPartitions)
	err = t.exec.RunPartitions(numPartitions, func(dest int) error {
		for src := 0; src < t.numPartitions; src++ {
			parts[dest] = append(parts[dest], buckets[src][dest]...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// lastWins collapses a partition's entries to single-value-per-key, keeping
// first-occurrence key order and the last written value per key
func lastWins(entries []kvtable.Entry) ([]string, map[string][]byte) {
	order := make([]string, 0, len(entries))
	vals := make(map[string][]byte, len(entries))
	for _, e := range entries {
		k := string(e.Key)
		if _, seen := vals[k]; !seen {
			order = append(order, k)
		}
		vals[k] = e.Value
	}
	return order, vals
}

// Join produces one Entry per key present in both Tables, co-grouping by
// re-hashing both sides onto the receiver's partitioning scheme. Duplicate
// keys within one side resolve to the last write before combining.
func (t *tableImpl) Join(other kvtable.Table, fn kvtable.CombineOperation) (kvtable.Table, error) {
	o, err := asTableImpl(other)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.InvalidArgumentError{Arg: "fn", Reason: "a combine function is required"}
	}
	safeFn := iutil.SafeCombineOperation(fn)
	selfParts, err := t.rehashOnto(t.numPartitions, t.partitioner)
	if err != nil {
		return nil, err
	}
	otherParts, err := o.rehashOnto(t.numPartitions, t.partitioner)
	if err != nil {
		return nil, err
	}
	next := t.derive(t.numPartitions)
	err = t.exec.RunPartitions(t.numPartitions, func(i int) error {
		order, selfVals := lastWins(selfParts[i])
		_, otherVals := lastWins(otherParts[i])
		for _, k := range order {
			otherValue, ok := otherVals[k]
			if !ok {
				continue
			}
			value, err := safeFn(selfVals[k], otherValue)
			if err != nil {
				return err
			}
			next.partitions[i].Append(kvtable.Entry{Key: []byte(k), Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Union produces one Entry per key present in either Table. Keys on one side
// pass through; keys on both combine via fn, or keep the receiver's value
// when fn is nil. Both sides are re-hashed onto the receiver's scheme.
func (t *tableImpl) Union(other kvtable.Table, fn kvtable.CombineOperation) (kvtable.Table, error) {
	o, err := asTableImpl(other)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		fn = func(left []byte, right []byte) ([]byte, error) {
			return left, nil
		}
	}
	safeFn := iutil.SafeCombineOperation(fn)
	selfParts, err := t.rehashOnto(t.numPartitions, t.partitioner)
	if err != nil {
		return nil, err
	}
	otherParts, err := o.rehashOnto(t.numPartitions, t.partitioner)
	if err != nil {
		return nil, err
	}
	next := t.derive(t.numPartitions)
	err = t.exec.RunPartitions(t.numPartitions, func(i int) error {
		selfOrder, selfVals := lastWins(selfParts[i])
		otherOrder, otherVals := lastWins(otherParts[i])
		for _, k := range selfOrder {
			value := selfVals[k]
			if otherValue, ok := otherVals[k]; ok {
				combined, err := safeFn(value, otherValue)
				if err != nil {
					return err
				}
				value = combined
			}
			next.partitions[i].Append(kvtable.Entry{Key: []byte(k), Value: value})
		}
		for _, k := range otherOrder {
			if _, ok := selfVals[k]; ok {
				continue
			}
			next.partitions[i].Append(kvtable.Entry{Key: []byte(k), Value: otherVals[k]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// SubtractByKey retains every Entry of the receiver whose key does not appear
// in other. The receiver's partition layout and entry order are preserved;
// only a key-membership test against other occurs, no shuffle.
func (t *tableImpl) SubtractByKey(other kvtable.Table) (kvtable.Table, error) {
	o, err := asTableImpl(other)
	if err != nil {
		return nil, err
	}
	partialSets := make([]map[string]struct{}, o.numPartitions)
	err = o.exec.RunPartitions(o.numPartitions, func(i int) error {
		set := make(map[string]struct{}, o.partitions[i].NumEntries())
		for _, e := range o.partitions[i].Entries() {
			set[string(e.Key)] = struct{}{}
		}
		partialSets[i] = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	otherKeys := make(map[string]struct{})
	for _, set := range partialSets {
		for k := range set {
			otherKeys[k] = struct{}{}
		}
	}
	return t.mapPartitionsLocal(func(idx int, in []kvtable.Entry) ([]kvtable.Entry, error) {
		out := make([]kvtable.Entry, 0, len(in))
		for _, e := range in {
			if _, ok := otherKeys[string(e.Key)]; !ok {
				out = append(out, e)
			}
		}
		return out, nil
	})
}
