package engine

import (
	"testing"

	errors "github.com/kvtable/kvtable/errors"
	"github.com/stretchr/testify/require"
)

func TestSampleFractionBounds(t *testing.T) {
	tab, err := CreateTable(createTestEntries(10), 2)
	require.Nil(t, err)

	_, err = tab.Sample(-0.1)
	require.NotNil(t, err)
	_, ok := err.(errors.InvalidArgumentError)
	require.True(t, ok)

	_, err = tab.SampleWithSeed(1.5, 42)
	require.NotNil(t, err)
	_, ok = err.(errors.InvalidArgumentError)
	require.True(t, ok)
}

func TestSampleZeroFractionIsEmpty(t *testing.T) {
	tab, err := CreateTable(createTestEntries(100), 4)
	require.Nil(t, err)
	sampled, err := tab.SampleWithSeed(0.0, 42)
	require.Nil(t, err)
	count, err := sampled.Count()
	require.Nil(t, err)
	require.Equal(t, int64(0), count)
}

func TestSampleFullFractionIsComplete(t *testing.T) {
	tab, err := CreateTable(createTestEntries(100), 4)
	require.Nil(t, err)
	sampled, err := tab.SampleWithSeed(1.0, 7)
	require.Nil(t, err)
	require.Equal(t, multiset(collectAll(t, tab)), multiset(collectAll(t, sampled)))
}

func TestSampleSeedReproducibility(t *testing.T) {
	tab, err := CreateTable(createTestEntries(500), 8)
	require.Nil(t, err)
	first, err := tab.SampleWithSeed(0.5, 1234)
	require.Nil(t, err)
	second, err := tab.SampleWithSeed(0.5, 1234)
	require.Nil(t, err)
	require.Equal(t, multiset(collectAll(t, first)), multiset(collectAll(t, second)))
}

func TestSampleFractionIsApproximate(t *testing.T) {
	tab, err := CreateTable(createTestEntries(1000), 4)
	require.Nil(t, err)
	sampled, err := tab.SampleWithSeed(0.5, 99)
	require.Nil(t, err)
	count, err := sampled.Count()
	require.Nil(t, err)
	require.Greater(t, count, int64(300))
	require.Less(t, count, int64(700))
}

func TestSamplePreservesPartitionIndexes(t *testing.T) {
	tab, err := CreateTable(createTestEntries(200), 4)
	require.Nil(t, err)
	sampled, err := tab.SampleWithSeed(0.5, 5)
	require.Nil(t, err)
	// no shuffle: surviving entries stay at their hash-assigned index
	requirePlacementInvariant(t, sampled)
}
