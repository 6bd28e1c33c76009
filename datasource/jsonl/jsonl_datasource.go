// Package jsonl provides a Table materialization from JSON lines data, with
// keys and values selected lazily from each line via gjson paths.
package jsonl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kvtable/kvtable"
	"github.com/kvtable/kvtable/internal/engine"
	"github.com/tidwall/gjson"
)

// Conf configures a JSONL Table materialization
type Conf struct {
	KeyPath       string // gjson path selecting each Entry's key. Defaults to "key".
	ValuePath     string // gjson path selecting each Entry's value. Defaults to "value".
	NumPartitions int    // The number of partitions for the resulting Table. Defaults to 4.
	MaxBufferSize int    // Maximum size in bytes of the buffer used to read lines
}

func (c *Conf) defaults() {
	if c.KeyPath == "" {
		c.KeyPath = "key"
	}
	if c.ValuePath == "" {
		c.ValuePath = "value"
	}
	if c.NumPartitions == 0 {
		c.NumPartitions = 4
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = bufio.MaxScanTokenSize
	}
}

// CreateTable is a factory for Tables backed by JSONL data. Each non-empty
// line contributes one Entry, with key and value coerced to their string
// representations. Values within the JSON which do not correspond to either
// path are ignored.
func CreateTable(r io.Reader, conf *Conf) (kvtable.Table, error) {
	if conf == nil {
		conf = &Conf{}
	}
	conf.defaults()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), conf.MaxBufferSize)
	var entries []kvtable.Entry
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("line %d is not valid JSON", lineNum)
		}
		keyRes := gjson.GetBytes(line, conf.KeyPath)
		if !keyRes.Exists() {
			return nil, fmt.Errorf("line %d has no value at key path %q", lineNum, conf.KeyPath)
		}
		valueRes := gjson.GetBytes(line, conf.ValuePath)
		if !valueRes.Exists() {
			return nil, fmt.Errorf("line %d has no value at value path %q", lineNum, conf.ValuePath)
		}
		entries = append(entries, kvtable.Entry{
			Key:   []byte(keyRes.String()),
			Value: []byte(valueRes.String()),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return engine.CreateTable(entries, conf.NumPartitions)
}
