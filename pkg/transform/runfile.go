package transform

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

// entry is one external-id -> raw-record pair staged before sorting.
type entry struct {
	key   []byte
	value []byte
}

// runFile is a temporary sorted run on disk: an owned resource created by
// exactly one producer (writeRun), handed to exactly one consumer (a
// runReader), and guaranteed removed on every exit path (Delete).
type runFile struct {
	path string
}

// writeRun sorts entries by key and writes them to a fresh temp file in
// dir, returning a handle to the result. Entries are consumed (their
// backing slice is not retained past the call).
func writeRun(dir string, entries []entry) (*runFile, error) {
	sort.SliceStable(entries, func(i, j int) bool { return bytes.Compare(entries[i].key, entries[j].key) < 0 })

	f, err := os.CreateTemp(dir, "transform-run-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("transform: create run file: %w", err)
	}
	path := f.Name()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if err := writeFramed(w, e.key); err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
		if err := writeFramed(w, e.value); err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("transform: flush run file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("transform: close run file: %w", err)
	}
	return &runFile{path: path}, nil
}

func writeFramed(w *bufio.Writer, b []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("transform: write frame length: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("transform: write frame: %w", err)
	}
	return nil
}

// Delete removes the run file. Safe to call more than once; an
// "already deleted" condition is treated as success (§9 design note).
func (rf *runFile) Delete() error {
	if err := os.Remove(rf.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("transform: delete run file %s: %w", rf.path, err)
	}
	return nil
}

// runReader sequentially reads the framed key/value pairs a runFile holds.
// It implements mergeiter.Source.
type runReader struct {
	f *os.File
	r *bufio.Reader
}

func (rf *runFile) open() (*runReader, error) {
	f, err := os.Open(rf.path)
	if err != nil {
		return nil, fmt.Errorf("transform: open run file %s: %w", rf.path, err)
	}
	return &runReader{f: f, r: bufio.NewReader(f)}, nil
}

func readFramed(r *bufio.Reader) ([]byte, bool, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("transform: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, fmt.Errorf("transform: read frame: %w", err)
	}
	return buf, true, nil
}

// Next implements mergeiter.Source.
func (rr *runReader) Next() (key, value []byte, ok bool, err error) {
	key, ok, err = readFramed(rr.r)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	value, ok, err = readFramed(rr.r)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	return key, value, true, nil
}

func (rr *runReader) close() error {
	return rr.f.Close()
}
