package partition

import (
	"testing"

	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
	"github.com/stretchr/testify/require"
)

func TestCreatePartition(t *testing.T) {
	part := CreatePartition(3)
	require.NotEmpty(t, part.ID())
	require.Equal(t, 3, part.Index())
	require.Equal(t, 0, part.NumEntries())
}

func TestAppendAndGet(t *testing.T) {
	part := CreatePartition(0)
	part.Append(kvtable.Entry{Key: []byte("a"), Value: []byte("1")})
	part.AppendAll([]kvtable.Entry{
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("c"), Value: []byte("3")},
	})
	require.Equal(t, 3, part.NumEntries())
	require.Equal(t, []byte("a"), part.Entry(0).Key)
	require.Equal(t, []byte("3"), part.Entry(2).Value)
}

func TestEntryIteratorExhaustion(t *testing.T) {
	part := CreatePartition(0)
	part.Append(kvtable.Entry{Key: []byte("a"), Value: []byte("1")})
	it := part.EntryIterator()
	require.True(t, it.HasNextEntry())
	e, err := it.NextEntry()
	require.Nil(t, err)
	require.Equal(t, []byte("a"), e.Key)
	require.False(t, it.HasNextEntry())
	_, err = it.NextEntry()
	require.NotNil(t, err)
	_, ok := err.(errors.NoMoreEntriesError)
	require.True(t, ok)
}

func TestChainIteratorOrder(t *testing.T) {
	p0 := CreatePartition(0)
	p0.Append(kvtable.Entry{Key: []byte("a"), Value: []byte("1")})
	p0.Append(kvtable.Entry{Key: []byte("b"), Value: []byte("2")})
	p1 := CreatePartition(1) // deliberately empty
	p2 := CreatePartition(2)
	p2.Append(kvtable.Entry{Key: []byte("c"), Value: []byte("3")})

	it := CreateChainIterator([]*Partition{p0, p1, p2})
	var keys []string
	for it.HasNextEntry() {
		e, err := it.NextEntry()
		require.Nil(t, err)
		keys = append(keys, string(e.Key))
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)
	_, err := it.NextEntry()
	_, ok := err.(errors.NoMoreEntriesError)
	require.True(t, ok)
}
