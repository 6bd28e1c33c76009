package kvtable

import (
	"bytes"
	"encoding/gob"
)

// An Entry is an immutable key-value pair stored within a Partition of a
// Table. Keys and values are opaque byte payloads. A Table places no
// uniqueness constraint on keys - duplicates may coexist, e.g. after Union
// or Glom, until resolved by a keyed operator.
type Entry struct {
	Key   []byte
	Value []byte
}

// Clone produces a deep copy of this Entry
func (e Entry) Clone() Entry {
	key := make([]byte, len(e.Key))
	copy(key, e.Key)
	value := make([]byte, len(e.Value))
	copy(value, e.Value)
	return Entry{Key: key, Value: value}
}

// EncodeEntries serializes a sequence of Entries to a byte array. Used as the
// value framing for Glom and by file-based SinkAdapters.
func EncodeEntries(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEntries deserializes a sequence of Entries produced by EncodeEntries
func DecodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
