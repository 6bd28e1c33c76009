package engine

import (
	"sync"
	"testing"

	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
	memsink "github.com/kvtable/kvtable/sink/memory"
	"github.com/stretchr/testify/require"
)

var (
	registerOnce sync.Once
	testSink     *memsink.Sink
)

func registeredTestSink() *memsink.Sink {
	registerOnce.Do(func() {
		testSink = memsink.CreateSink()
		kvtable.RegisterSinkAdapter(testSink)
	})
	return testSink
}

func TestSaveUnsupportedBackend(t *testing.T) {
	tab, err := CreateTable(createTestEntries(10), 2)
	require.Nil(t, err)
	err = tab.Save(kvtable.Address{Kind: "carrier-pigeon", Name: "t", Namespace: "ns"}, 2, nil)
	require.NotNil(t, err)
	_, ok := err.(errors.UnsupportedBackendError)
	require.True(t, ok)
}

func TestSaveInvalidPartitionCount(t *testing.T) {
	tab, err := CreateTable(createTestEntries(10), 2)
	require.Nil(t, err)
	err = tab.Save(kvtable.Address{Kind: "memory", Name: "t", Namespace: "ns"}, 0, nil)
	require.NotNil(t, err)
	_, ok := err.(errors.InvalidArgumentError)
	require.True(t, ok)
}

func TestSavePersistsAndUpdatesSchema(t *testing.T) {
	sink := registeredTestSink()
	tab, err := CreateTable(createTestEntries(30), 4)
	require.Nil(t, err)

	schema := map[string]string{
		"caller-key": "caller-value",
		"count":      "stale", // engine key takes precedence
	}
	addr := kvtable.Address{Kind: "memory", Name: "saved", Namespace: "tests"}
	err = tab.Save(addr, 4, schema)
	require.Nil(t, err)

	require.Equal(t, "caller-value", schema["caller-key"])
	require.Equal(t, "30", schema["count"])
	require.Equal(t, "4", schema["partitions"])
	require.Equal(t, "memory", schema["backend"])

	parts, err := sink.Load("saved", "tests")
	require.Nil(t, err)
	require.Len(t, parts, 4)
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	require.Equal(t, 30, total)
}

func TestSaveRepartitions(t *testing.T) {
	sink := registeredTestSink()
	tab, err := CreateTable(createTestEntries(40), 4)
	require.Nil(t, err)

	addr := kvtable.Address{Kind: "memory", Name: "repartitioned", Namespace: "tests"}
	err = tab.Save(addr, 7, nil)
	require.Nil(t, err)

	parts, err := sink.Load("repartitioned", "tests")
	require.Nil(t, err)
	require.Len(t, parts, 7)
	partitioner := tab.Partitioner()
	for i, part := range parts {
		for _, e := range part {
			require.Equal(t, partitioner.PartitionIndex(e.Key, 7), i)
		}
	}
}

func TestSaveCleanupSemantics(t *testing.T) {
	registeredTestSink()
	tab, err := CreateTable(createTestEntries(5), 2)
	require.Nil(t, err)
	addr := kvtable.Address{Kind: "memory", Name: "overwrite", Namespace: "tests"}

	err = tab.Save(addr, 2, nil)
	require.Nil(t, err)
	// second save without cleanup collides with the existing table
	err = tab.Save(addr, 2, nil)
	require.NotNil(t, err)
	// with cleanup, the prior table is replaced
	err = tab.Save(addr, 2, nil, kvtable.WithCleanup(true))
	require.Nil(t, err)
}
