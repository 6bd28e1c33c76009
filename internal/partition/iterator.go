package partition

import (
	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
)

// entrySliceIterator iterates over a materialized Entry slice
type entrySliceIterator struct {
	entries []kvtable.Entry
	next    int
}

// CreateEntryIterator returns a single-pass EntryIterator over a slice of
// Entries
func CreateEntryIterator(entries []kvtable.Entry) kvtable.EntryIterator {
	return &entrySliceIterator{entries: entries}
}

// HasNextEntry returns true iff this iterator can produce another Entry
func (it *entrySliceIterator) HasNextEntry() bool {
	return it.next < len(it.entries)
}

// NextEntry returns the next Entry, or a NoMoreEntriesError if the iterator
// is exhausted
func (it *entrySliceIterator) NextEntry() (kvtable.Entry, error) {
	if it.next >= len(it.entries) {
		return kvtable.Entry{}, errors.NoMoreEntriesError{}
	}
	e := it.entries[it.next]
	it.next++
	return e, nil
}

// chainIterator iterates over the Entries of a sequence of Partitions, in
// ascending partition index order, insertion order within each Partition
type chainIterator struct {
	partitions []*Partition
	partIdx    int
	entryIdx   int
}

// CreateChainIterator returns a single-pass EntryIterator over a sequence of
// Partitions. Partitions must be supplied in ascending index order.
func CreateChainIterator(partitions []*Partition) kvtable.EntryIterator {
	return &chainIterator{partitions: partitions}
}

func (it *chainIterator) skipExhausted() {
	for it.partIdx < len(it.partitions) && it.entryIdx >= it.partitions[it.partIdx].NumEntries() {
		it.partIdx++
		it.entryIdx = 0
	}
}

// HasNextEntry returns true iff this iterator can produce another Entry
func (it *chainIterator) HasNextEntry() bool {
	it.skipExhausted()
	return it.partIdx < len(it.partitions)
}

// NextEntry returns the next Entry, or a NoMoreEntriesError if the iterator
// is exhausted
func (it *chainIterator) NextEntry() (kvtable.Entry, error) {
	it.skipExhausted()
	if it.partIdx >= len(it.partitions) {
		return kvtable.Entry{}, errors.NoMoreEntriesError{}
	}
	e := it.partitions[it.partIdx].Entry(it.entryIdx)
	it.entryIdx++
	return e, nil
}
