package engine

import (
	"log"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	iutil "github.com/kvtable/kvtable/internal/util"
	"github.com/kvtable/kvtable/logging"
	"github.com/panjf2000/ants/v2"
)

var (
	defaultParallelism = runtime.NumCPU()
	defaultExecutor    *Executor
	defaultExecutorMu  sync.Mutex
)

// SetDefaultParallelism overrides the worker count of the shared Executor.
// Takes effect only if called before the first Table operation.
func SetDefaultParallelism(parallelism int) {
	defaultExecutorMu.Lock()
	defer defaultExecutorMu.Unlock()
	if parallelism > 0 {
		defaultParallelism = parallelism
	}
}

// sharedExecutor lazily constructs the process-wide Executor used by all
// Tables
func sharedExecutor() *Executor {
	defaultExecutorMu.Lock()
	defer defaultExecutorMu.Unlock()
	if defaultExecutor == nil {
		exec, err := CreateExecutor(defaultParallelism)
		if err != nil {
			log.Fatalf("failed to create shared executor: %v", err)
		}
		defaultExecutor = exec
	}
	return defaultExecutor
}

// An Executor runs one unit of work per partition concurrently on a bounded
// worker pool and collects results. Assembled results are always ordered by
// ascending partition index, regardless of task completion order, because
// each task writes only to its own index.
type Executor struct {
	pool *ants.Pool
}

// CreateExecutor builds an Executor with the given worker count
func CreateExecutor(parallelism int) (*Executor, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return nil, err
	}
	return &Executor{pool: pool}, nil
}

// RunPartitions executes task once per partition index in [0, numPartitions)
// and blocks until every task has finished. Task errors are aggregated; a
// non-nil return means the whole operator must abort and discard partials.
func (e *Executor) RunPartitions(numPartitions int, task func(idx int) error) error {
	var wg sync.WaitGroup
	taskErrs := make([]error, numPartitions)
	for i := 0; i < numPartitions; i++ {
		i := i
		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			taskErrs[i] = task(i)
		})
		if submitErr != nil {
			wg.Done()
			taskErrs[i] = submitErr
		}
	}
	wg.Wait()
	var multierr *multierror.Error
	for _, err := range taskErrs {
		if err != nil {
			multierr = multierror.Append(multierr, err)
		}
	}
	if err := multierr.ErrorOrNil(); err != nil {
		logging.Debug("partition tasks failed:\n%s", iutil.FormatMultiError(multierr.Errors))
		return err
	}
	return nil
}

// Close releases the Executor's worker pool
func (e *Executor) Close() {
	e.pool.Release()
}
