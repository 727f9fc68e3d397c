package mergeiter

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

// Entry is one key/value pair staged for a sorted run.
type Entry struct {
	Key, Value []byte
}

// RunFile is a temporary sorted run written to disk: created by exactly
// one producer (WriteRun), opened by at most one reader, and guaranteed
// removable on every exit path.
type RunFile struct {
	path string
}

// WriteRun sorts entries by key (stable, so equal keys keep their
// original relative order) and writes them to a fresh file under dir.
func WriteRun(dir string, entries []Entry) (*RunFile, error) {
	sort.SliceStable(entries, func(i, j int) bool { return bytes.Compare(entries[i].Key, entries[j].Key) < 0 })

	f, err := os.CreateTemp(dir, "invindex-run-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("mergeiter: create run file: %w", err)
	}
	path := f.Name()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if err := writeFrame(w, e.Key); err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
		if err := writeFrame(w, e.Value); err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("mergeiter: flush run file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("mergeiter: close run file: %w", err)
	}
	return &RunFile{path: path}, nil
}

func writeFrame(w *bufio.Writer, b []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("mergeiter: write frame length: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("mergeiter: write frame: %w", err)
	}
	return nil
}

// Delete removes the run file; an already-missing file is not an error.
func (rf *RunFile) Delete() error {
	if err := os.Remove(rf.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("mergeiter: delete run file %s: %w", rf.path, err)
	}
	return nil
}

// Open returns a Source reading this run file's entries in file order
// (ascending key order, since WriteRun sorted them). The caller must
// Close it once done.
func (rf *RunFile) Open() (*RunReader, error) {
	f, err := os.Open(rf.path)
	if err != nil {
		return nil, fmt.Errorf("mergeiter: open run file %s: %w", rf.path, err)
	}
	return &RunReader{f: f, r: bufio.NewReader(f)}, nil
}

// RunReader reads one open run file; it implements Source.
type RunReader struct {
	f *os.File
	r *bufio.Reader
}

func readFrame(r *bufio.Reader) ([]byte, bool, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mergeiter: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, fmt.Errorf("mergeiter: read frame: %w", err)
	}
	return buf, true, nil
}

// Next implements Source.
func (rr *RunReader) Next() (key, value []byte, ok bool, err error) {
	key, ok, err = readFrame(rr.r)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	value, ok, err = readFrame(rr.r)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	return key, value, true, nil
}

// Close releases the underlying file handle.
func (rr *RunReader) Close() error {
	return rr.f.Close()
}
