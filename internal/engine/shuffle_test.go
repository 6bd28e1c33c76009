package engine

import (
	"testing"

	"github.com/kvtable/kvtable"
	"github.com/stretchr/testify/require"
)

func pair(left []byte, right []byte) ([]byte, error) {
	out := make([]byte, 0, len(left)+len(right)+1)
	out = append(out, left...)
	out = append(out, ',')
	out = append(out, right...)
	return out, nil
}

func createJoinFixtures(t *testing.T) (kvtable.Table, kvtable.Table) {
	t.Helper()
	left, err := CreateTable([]kvtable.Entry{
		entry("a", "1"), entry("b", "2"), entry("c", "3"), entry("d", "4"),
	}, 4)
	require.Nil(t, err)
	// deliberately partitioned differently from left
	right, err := CreateTable([]kvtable.Entry{
		entry("b", "20"), entry("c", "30"), entry("e", "50"),
	}, 3)
	require.Nil(t, err)
	return left, right
}

func keySet(t *testing.T, tab kvtable.Table) map[string]bool {
	t.Helper()
	set := make(map[string]bool)
	for _, e := range collectAll(t, tab) {
		set[string(e.Key)] = true
	}
	return set
}

func TestJoinIntersectsKeys(t *testing.T) {
	left, right := createJoinFixtures(t)
	joined, err := left.Join(right, pair)
	require.Nil(t, err)
	requirePlacementInvariant(t, joined)

	values := make(map[string]string)
	for _, e := range collectAll(t, joined) {
		values[string(e.Key)] = string(e.Value)
	}
	require.Len(t, values, 2)
	require.Equal(t, "2,20", values["b"])
	require.Equal(t, "3,30", values["c"])
}

func TestJoinCommutativeUpToArgumentOrder(t *testing.T) {
	left, right := createJoinFixtures(t)
	forward, err := left.Join(right, pair)
	require.Nil(t, err)
	backward, err := right.Join(left, func(a []byte, b []byte) ([]byte, error) {
		return pair(b, a) // swap so values align with forward's order
	})
	require.Nil(t, err)
	require.Equal(t, multiset(collectAll(t, forward)), multiset(collectAll(t, backward)))
}

func TestJoinRequiresCombineFunc(t *testing.T) {
	left, right := createJoinFixtures(t)
	_, err := left.Join(right, nil)
	require.NotNil(t, err)
}

func TestJoinLastWriteWinsOnDuplicates(t *testing.T) {
	left, err := FromPartitions([][]kvtable.Entry{
		{entry("k", "old"), entry("k", "new")},
	})
	require.Nil(t, err)
	right, err := CreateTable([]kvtable.Entry{entry("k", "r")}, 1)
	require.Nil(t, err)
	joined, err := left.Join(right, pair)
	require.Nil(t, err)
	entries := collectAll(t, joined)
	require.Len(t, entries, 1)
	require.Equal(t, "new,r", string(entries[0].Value))
}

func TestSubtractByKey(t *testing.T) {
	left, right := createJoinFixtures(t)
	subtracted, err := left.SubtractByKey(right)
	require.Nil(t, err)
	require.Equal(t, map[string]bool{"a": true, "d": true}, keySet(t, subtracted))
}

func TestSubtractAndJoinPartitionKeys(t *testing.T) {
	// subtractByKey and join split the receiver's keys into two disjoint
	// sets whose union is all of its keys
	left, right := createJoinFixtures(t)
	joined, err := left.Join(right, pair)
	require.Nil(t, err)
	subtracted, err := left.SubtractByKey(right)
	require.Nil(t, err)

	joinedKeys := keySet(t, joined)
	subtractedKeys := keySet(t, subtracted)
	for k := range joinedKeys {
		require.False(t, subtractedKeys[k], "key %s in both halves", k)
	}
	allKeys := keySet(t, left)
	require.Equal(t, len(allKeys), len(joinedKeys)+len(subtractedKeys))
	for k := range allKeys {
		require.True(t, joinedKeys[k] || subtractedKeys[k], "key %s lost", k)
	}
}

func TestSubtractByKeyPreservesLayout(t *testing.T) {
	left, err := FromPartitions([][]kvtable.Entry{
		{entry("a", "1"), entry("b", "2")},
		{entry("c", "3")},
	})
	require.Nil(t, err)
	right, err := CreateTable([]kvtable.Entry{entry("b", "x")}, 2)
	require.Nil(t, err)
	subtracted, err := left.SubtractByKey(right)
	require.Nil(t, err)

	impl, err := asTableImpl(subtracted)
	require.Nil(t, err)
	require.Equal(t, 2, impl.numPartitions)
	require.Equal(t, 1, impl.partitions[0].NumEntries())
	require.Equal(t, "a", string(impl.partitions[0].Entry(0).Key))
	require.Equal(t, 1, impl.partitions[1].NumEntries())
	require.Equal(t, "c", string(impl.partitions[1].Entry(0).Key))
}

func TestUnionDefaultKeepsReceiverValue(t *testing.T) {
	left, right := createJoinFixtures(t)
	union, err := left.Union(right, nil)
	require.Nil(t, err)
	requirePlacementInvariant(t, union)

	values := make(map[string]string)
	for _, e := range collectAll(t, union) {
		values[string(e.Key)] = string(e.Value)
	}
	require.Len(t, values, 5)
	require.Equal(t, "1", values["a"])
	require.Equal(t, "2", values["b"]) // conflict resolved to receiver
	require.Equal(t, "3", values["c"])
	require.Equal(t, "4", values["d"])
	require.Equal(t, "50", values["e"]) // other-only key passes through
}

func TestUnionCombinesConflicts(t *testing.T) {
	left, right := createJoinFixtures(t)
	union, err := left.Union(right, pair)
	require.Nil(t, err)
	values := make(map[string]string)
	for _, e := range collectAll(t, union) {
		values[string(e.Key)] = string(e.Value)
	}
	require.Equal(t, "2,20", values["b"])
	require.Equal(t, "3,30", values["c"])
	require.Equal(t, "1", values["a"])
	require.Equal(t, "50", values["e"])
}

func TestShuffleIsDeterministic(t *testing.T) {
	tab, err := CreateTable(createTestEntries(100), 8)
	require.Nil(t, err)
	swap := func(key []byte, value []byte) ([]byte, []byte, error) {
		return value, key, nil
	}
	first, err := tab.Map(swap)
	require.Nil(t, err)
	second, err := tab.Map(swap)
	require.Nil(t, err)
	firstEntries := collectAll(t, first)
	secondEntries := collectAll(t, second)
	require.Equal(t, len(firstEntries), len(secondEntries))
	for i := range firstEntries {
		require.Equal(t, firstEntries[i], secondEntries[i])
	}
}
