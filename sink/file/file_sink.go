// Package file provides a directory-backed storage backend which persists
// each partition as an lz4-compressed file of encoded Entries. It implements
// both the SinkAdapter and Source interfaces.
package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kvtable/kvtable"
	"github.com/pierrec/lz4"
)

const partFileSuffix = ".part.lz4"

// Sink is a file storage backend rooted at a directory. Tables live at
// <root>/<namespace>/<name>/, one compressed file per partition.
type Sink struct {
	root string
}

// CreateSink builds a file backend rooted at the given directory
func CreateSink(root string) *Sink {
	return &Sink{root: root}
}

// Kind returns the backend kind of this Sink
func (s *Sink) Kind() string {
	return "file"
}

func (s *Sink) tableDir(name string, namespace string) string {
	return filepath.Join(s.root, namespace, name)
}

// Persist writes one lz4-compressed file per partition under the table
// directory. If the directory already exists and cleanupExisting is false,
// Persist fails; with cleanupExisting any prior table files are removed first.
func (s *Sink) Persist(name string, namespace string, partitions [][]kvtable.Entry, cleanupExisting bool) error {
	dir := s.tableDir(name, namespace)
	if _, err := os.Stat(dir); err == nil {
		if !cleanupExisting {
			return fmt.Errorf("table %s/%s already exists in file backend at %s", namespace, name, dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, part := range partitions {
		data, err := kvtable.EncodeEntries(part)
		if err != nil {
			return err
		}
		if err := writePartFile(filepath.Join(dir, fmt.Sprintf("%05d%s", i, partFileSuffix)), data); err != nil {
			return err
		}
	}
	return nil
}

func writePartFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	zw := lz4.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads the partition files of a previously persisted table, in
// partition index order
func (s *Sink) Load(name string, namespace string) ([][]kvtable.Entry, error) {
	dir := s.tableDir(name, namespace)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("table %s/%s not found in file backend: %w", namespace, name, err)
	}
	var files []string
	for _, de := range dirEntries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), partFileSuffix) {
			files = append(files, de.Name())
		}
	}
	sort.Strings(files)
	parts := make([][]kvtable.Entry, 0, len(files))
	for _, fname := range files {
		data, err := readPartFile(filepath.Join(dir, fname))
		if err != nil {
			return nil, err
		}
		entries, err := kvtable.DecodeEntries(data)
		if err != nil {
			return nil, err
		}
		parts = append(parts, entries)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("table %s/%s has no partition files", namespace, name)
	}
	return parts, nil
}

func readPartFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(f)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
