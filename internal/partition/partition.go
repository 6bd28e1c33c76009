package partition

import (
	"log"

	uuid "github.com/gofrs/uuid"
	"github.com/kvtable/kvtable"
)

// A Partition holds the ordered sequence of Entries living at a fixed index
// within a Table. A Partition's content is owned exclusively by the Table
// that created it and is never mutated once the producing operator completes.
type Partition struct {
	id      string
	idx     int
	entries []kvtable.Entry
}

// CreatePartition creates an empty Partition at a fixed index
func CreatePartition(idx int) *Partition {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	return &Partition{
		id:      id.String(),
		idx:     idx,
		entries: make([]kvtable.Entry, 0),
	}
}

// ID retrieves the ID of this Partition
func (p *Partition) ID() string {
	return p.id
}

// Index retrieves the fixed partition index of this Partition
func (p *Partition) Index() int {
	return p.idx
}

// NumEntries retrieves the number of Entries in this Partition
func (p *Partition) NumEntries() int {
	return len(p.entries)
}

// Entry retrieves a specific Entry from this Partition
func (p *Partition) Entry(i int) kvtable.Entry {
	return p.entries[i]
}

// Entries retrieves the full Entry sequence of this Partition, in insertion
// order. Callers must not modify the returned slice.
func (p *Partition) Entries() []kvtable.Entry {
	return p.entries
}

// Append adds an Entry to the end of this Partition
func (p *Partition) Append(e kvtable.Entry) {
	p.entries = append(p.entries, e)
}

// AppendAll adds a sequence of Entries to the end of this Partition
func (p *Partition) AppendAll(entries []kvtable.Entry) {
	p.entries = append(p.entries, entries...)
}

// EntryIterator returns a single-pass iterator over this Partition's Entries
func (p *Partition) EntryIterator() kvtable.EntryIterator {
	return CreateEntryIterator(p.entries)
}
