package document

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cuemby/ftscore/pkg/types"
)

// Field is one field-id -> raw-bytes entry of a Record.
type Field struct {
	ID    types.FieldID
	Value []byte
}

// Record is a finite ordered mapping from field-id to the verbatim
// serialized bytes of that field's value (§3). Entries are kept sorted
// by FieldID so the on-disk form is canonical and deterministic.
type Record struct {
	fields []Field
}

// NewRecord builds an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Get returns the raw bytes stored for id, if present.
func (r *Record) Get(id types.FieldID) ([]byte, bool) {
	i := r.search(id)
	if i < len(r.fields) && r.fields[i].ID == id {
		return r.fields[i].Value, true
	}
	return nil, false
}

// Set inserts or overwrites the value stored for id.
func (r *Record) Set(id types.FieldID, value []byte) {
	i := r.search(id)
	if i < len(r.fields) && r.fields[i].ID == id {
		r.fields[i].Value = value
		return
	}
	r.fields = append(r.fields, Field{})
	copy(r.fields[i+1:], r.fields[i:])
	r.fields[i] = Field{ID: id, Value: value}
}

// Delete removes the entry for id, if present.
func (r *Record) Delete(id types.FieldID) {
	i := r.search(id)
	if i < len(r.fields) && r.fields[i].ID == id {
		r.fields = append(r.fields[:i], r.fields[i+1:]...)
	}
}

// Fields returns every entry in ascending FieldID order.
func (r *Record) Fields() []Field {
	return r.fields
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{fields: make([]Field, len(r.fields))}
	copy(c.fields, r.fields)
	return c
}

func (r *Record) search(id types.FieldID) int {
	return sort.Search(len(r.fields), func(i int) bool { return r.fields[i].ID >= id })
}

// MarshalBinary encodes the record as: field count (u32 BE), then per
// field: id (u16 BE), value length (u32 BE), value bytes. This is the
// on-disk form stored verbatim under the documents database.
func (r *Record) MarshalBinary() ([]byte, error) {
	size := 4
	for _, f := range r.fields {
		size += 2 + 4 + len(f.Value)
	}
	buf := make([]byte, 0, size)
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(r.fields)))
	buf = append(buf, tmp[:]...)
	for _, f := range r.fields {
		var idBuf [2]byte
		binary.BigEndian.PutUint16(idBuf[:], f.ID)
		buf = append(buf, idBuf[:]...)
		binary.BigEndian.PutUint32(tmp[:], uint32(len(f.Value)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, f.Value...)
	}
	return buf, nil
}

// UnmarshalRecord decodes a record previously produced by MarshalBinary.
func UnmarshalRecord(data []byte) (*Record, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("document: truncated record header: %w", types.ErrMalformedInput)
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	r := &Record{fields: make([]Field, 0, count)}
	for i := uint32(0); i < count; i++ {
		if len(data) < 6 {
			return nil, fmt.Errorf("document: truncated record field header: %w", types.ErrMalformedInput)
		}
		id := binary.BigEndian.Uint16(data[:2])
		length := binary.BigEndian.Uint32(data[2:6])
		data = data[6:]
		if uint32(len(data)) < length {
			return nil, fmt.Errorf("document: truncated record field value: %w", types.ErrMalformedInput)
		}
		value := make([]byte, length)
		copy(value, data[:length])
		data = data[length:]
		r.fields = append(r.fields, Field{ID: id, Value: value})
	}
	return r, nil
}
