package util

import (
	"fmt"

	"github.com/kvtable/kvtable"
	errors "github.com/kvtable/kvtable/errors"
)

// wrapFailure packages a user-function error or recovered panic as a
// ComputeFailureError, attaching a stack trace for panics
func wrapFailure(op string, recovered interface{}, err error) error {
	if recovered != nil {
		if anErr, ok := recovered.(error); ok {
			return errors.ComputeFailureError{Op: op, Err: fmt.Errorf("panic: %w\n%s", anErr, GetTrace())}
		}
		return errors.ComputeFailureError{Op: op, Err: fmt.Errorf("panic: %v\n%s", recovered, GetTrace())}
	}
	if err != nil {
		return errors.ComputeFailureError{Op: op, Err: err}
	}
	return nil
}

// SafeMapOperation wraps a MapOperation such that panics are recovered and
// failures surface as ComputeFailureErrors
func SafeMapOperation(mapOp kvtable.MapOperation) kvtable.MapOperation {
	return func(key []byte, value []byte) (outKey []byte, outValue []byte, err error) {
		defer func() {
			if failure := wrapFailure("Map", recover(), err); failure != nil {
				err = failure
			}
		}()
		outKey, outValue, err = mapOp(key, value)
		return
	}
}

// SafeMapValuesOperation wraps a MapValuesOperation such that panics are
// recovered and failures surface as ComputeFailureErrors
func SafeMapValuesOperation(mapOp kvtable.MapValuesOperation) kvtable.MapValuesOperation {
	return func(value []byte) (outValue []byte, err error) {
		defer func() {
			if failure := wrapFailure("MapValues", recover(), err); failure != nil {
				err = failure
			}
		}()
		outValue, err = mapOp(value)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are
// recovered and failures surface as ComputeFailureErrors
func SafeFlatMapOperation(flatMapOp kvtable.FlatMapOperation) kvtable.FlatMapOperation {
	return func(key []byte, value []byte) (result []kvtable.Entry, err error) {
		defer func() {
			if failure := wrapFailure("FlatMap", recover(), err); failure != nil {
				err = failure
			}
		}()
		result, err = flatMapOp(key, value)
		return
	}
}

// SafeFilterOperation wraps a FilterOperation such that panics are recovered
// and failures surface as ComputeFailureErrors
func SafeFilterOperation(filterOp kvtable.FilterOperation) kvtable.FilterOperation {
	return func(key []byte, value []byte) (keep bool, err error) {
		defer func() {
			if failure := wrapFailure("Filter", recover(), err); failure != nil {
				err = failure
			}
		}()
		keep, err = filterOp(key, value)
		return
	}
}

// SafePartitionMapOperation wraps a PartitionMapOperation such that panics
// are recovered and failures surface as ComputeFailureErrors
func SafePartitionMapOperation(partOp kvtable.PartitionMapOperation) kvtable.PartitionMapOperation {
	return func(entries []kvtable.Entry) (result []kvtable.Entry, err error) {
		defer func() {
			if failure := wrapFailure("MapPartitions", recover(), err); failure != nil {
				err = failure
			}
		}()
		result, err = partOp(entries)
		return
	}
}

// SafePartitionIterOperation wraps a PartitionIterOperation such that panics
// are recovered and failures surface as ComputeFailureErrors
func SafePartitionIterOperation(partOp kvtable.PartitionIterOperation) kvtable.PartitionIterOperation {
	return func(entries kvtable.EntryIterator) (result []kvtable.Entry, err error) {
		defer func() {
			if failure := wrapFailure("MapPartitions", recover(), err); failure != nil {
				err = failure
			}
		}()
		result, err = partOp(entries)
		return
	}
}

// SafeCombineOperation wraps a CombineOperation such that panics are
// recovered and failures surface as ComputeFailureErrors
func SafeCombineOperation(combineOp kvtable.CombineOperation) kvtable.CombineOperation {
	return func(left []byte, right []byte) (out []byte, err error) {
		defer func() {
			if failure := wrapFailure("Combine", recover(), err); failure != nil {
				err = failure
			}
		}()
		out, err = combineOp(left, right)
		return
	}
}

// SafeReduceOperation wraps a ReduceOperation such that panics are recovered
// and failures surface as ComputeFailureErrors
func SafeReduceOperation(reduceOp kvtable.ReduceOperation) kvtable.ReduceOperation {
	return func(acc []byte, value []byte) (out []byte, err error) {
		defer func() {
			if failure := wrapFailure("Reduce", recover(), err); failure != nil {
				err = failure
			}
		}()
		out, err = reduceOp(acc, value)
		return
	}
}

// SafeKeyingOperation wraps a KeyingOperation such that panics are recovered
// and failures surface as ComputeFailureErrors
func SafeKeyingOperation(keyingOp kvtable.KeyingOperation) kvtable.KeyingOperation {
	return func(key []byte) (aggKey []byte, err error) {
		defer func() {
			if failure := wrapFailure("Keying", recover(), err); failure != nil {
				err = failure
			}
		}()
		aggKey, err = keyingOp(key)
		return
	}
}
