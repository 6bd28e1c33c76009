package memory

import (
	"testing"

	"github.com/kvtable/kvtable"
	"github.com/kvtable/kvtable/datasource/backend"
	memsource "github.com/kvtable/kvtable/datasource/memory"
	"github.com/stretchr/testify/require"
)

func testParts() [][]kvtable.Entry {
	return [][]kvtable.Entry{
		{
			{Key: []byte("a"), Value: []byte("1")},
			{Key: []byte("b"), Value: []byte("2")},
		},
		{
			{Key: []byte("c"), Value: []byte("3")},
		},
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	sink := CreateSink()
	require.Equal(t, "memory", sink.Kind())
	err := sink.Persist("t", "ns", testParts(), false)
	require.Nil(t, err)

	parts, err := sink.Load("t", "ns")
	require.Nil(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, "a", string(parts[0][0].Key))
	require.Equal(t, "3", string(parts[1][0].Value))
}

func TestPersistExistingTable(t *testing.T) {
	sink := CreateSink()
	require.Nil(t, sink.Persist("t", "ns", testParts(), false))
	err := sink.Persist("t", "ns", testParts(), false)
	require.NotNil(t, err)
	require.Nil(t, sink.Persist("t", "ns", testParts(), true))
}

func TestLoadMissingTable(t *testing.T) {
	sink := CreateSink()
	_, err := sink.Load("nope", "ns")
	require.NotNil(t, err)
}

func TestStoredDataIsIsolated(t *testing.T) {
	sink := CreateSink()
	parts := testParts()
	require.Nil(t, sink.Persist("t", "ns", parts, false))
	// mutating the caller's data must not affect the stored copy
	parts[0][0].Value[0] = 'X'

	loaded, err := sink.Load("t", "ns")
	require.Nil(t, err)
	require.Equal(t, "1", string(loaded[0][0].Value))
}

func TestBackendTableMaterialization(t *testing.T) {
	sink := CreateSink()
	source, err := memsource.CreateTable([]kvtable.Entry{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("c"), Value: []byte("3")},
	}, 3)
	require.Nil(t, err)

	parts := make([][]kvtable.Entry, 0, 3)
	it := source.Collect()
	var all []kvtable.Entry
	for it.HasNextEntry() {
		e, err := it.NextEntry()
		require.Nil(t, err)
		all = append(all, e)
	}
	parts = append(parts, all[:1], all[1:])
	require.Nil(t, sink.Persist("t", "ns", parts, false))

	loaded, err := backend.CreateTable(sink, "t", "ns")
	require.Nil(t, err)
	require.Equal(t, 2, loaded.NumPartitions())
	count, err := loaded.Count()
	require.Nil(t, err)
	require.Equal(t, int64(3), count)
}
