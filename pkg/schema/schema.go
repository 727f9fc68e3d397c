package schema

import (
	"fmt"
	"strings"

	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/types"
)

// MainDB is the logical database schema state lives in.
const MainDB = "main"

var (
	keyNextFieldID  = []byte("schema/next_field_id")
	keyPrimaryKey   = []byte("schema/primary_key")
	fieldNamePrefix = "schema/field_name/"
	fieldIDPrefix   = []byte("schema/field_id/")
)

// Field is one entry of Iter: a name and the id it was assigned.
type Field struct {
	ID   types.FieldID
	Name string
}

// Schema is the in-memory, per-transaction view of an index's field map
// and primary key. It is cheap to clone, which is how each L6 chunk
// worker gets its own immutable snapshot (§5, "the in-memory schema is
// cloned into each worker").
type Schema struct {
	byName     map[string]types.FieldID
	byID       map[types.FieldID]string
	nextID     types.FieldID
	primaryKey string
	hasPK      bool
}

// New returns an empty schema, the starting point for a freshly created
// index.
func New() *Schema {
	return &Schema{
		byName: make(map[string]types.FieldID),
		byID:   make(map[types.FieldID]string),
	}
}

// Clone returns an independent copy safe to hand to a concurrent reader;
// it never needs to observe mutations made after the clone was taken.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		byName:     make(map[string]types.FieldID, len(s.byName)),
		byID:       make(map[types.FieldID]string, len(s.byID)),
		nextID:     s.nextID,
		primaryKey: s.primaryKey,
		hasPK:      s.hasPK,
	}
	for k, v := range s.byName {
		c.byName[k] = v
	}
	for k, v := range s.byID {
		c.byID[k] = v
	}
	return c
}

// Load reconstructs a Schema from its persisted form in the main
// database of the current transaction.
func Load(b *kv.RoBucket) (*Schema, error) {
	s := New()
	if v := b.Get(keyNextFieldID); v != nil {
		s.nextID = kv.Uint16(v)
	}
	if v := b.Get(keyPrimaryKey); v != nil {
		s.primaryKey = string(v)
		s.hasPK = true
	}
	for it := b.PrefixIter([]byte(fieldNamePrefix)); it.Valid(); it.Next() {
		name := strings.TrimPrefix(string(it.Key()), fieldNamePrefix)
		id := kv.Uint16(it.Value())
		s.byName[name] = id
		s.byID[id] = name
	}
	return s, nil
}

// Save persists the counter, primary key and any newly inserted field
// mappings. Existing mappings are immutable once written so Save only
// ever adds keys.
func (s *Schema) Save(b *kv.Bucket) error {
	if err := b.Put(keyNextFieldID, kv.PutUint16(nil, s.nextID)); err != nil {
		return fmt.Errorf("save next field id: %w", err)
	}
	if s.hasPK {
		if err := b.Put(keyPrimaryKey, []byte(s.primaryKey)); err != nil {
			return fmt.Errorf("save primary key: %w", err)
		}
	}
	for name, id := range s.byName {
		nameKey := append([]byte(fieldNamePrefix), []byte(name)...)
		if err := b.Put(nameKey, kv.PutUint16(nil, id)); err != nil {
			return fmt.Errorf("save field %q: %w", name, err)
		}
		idKey := append(append([]byte{}, fieldIDPrefix...), kv.PutUint16(nil, id)...)
		if err := b.Put(idKey, []byte(name)); err != nil {
			return fmt.Errorf("save field %q: %w", name, err)
		}
	}
	return nil
}

// GetOrInsertField returns the stable id for name, assigning and
// persisting a fresh one if name has never been seen before. Capped at
// types.MaxFieldID; the 65,536th distinct field fails with
// ErrFieldLimitReached.
func (s *Schema) GetOrInsertField(name string) (types.FieldID, error) {
	if name == "" {
		return 0, fmt.Errorf("field name must not be empty: %w", types.ErrInvalidFieldName)
	}
	if id, ok := s.byName[name]; ok {
		return id, nil
	}
	if int(s.nextID) >= types.MaxFieldID+1 {
		return 0, fmt.Errorf("cannot allocate field %q: %w", name, types.ErrFieldLimitReached)
	}
	id := s.nextID
	s.nextID++
	s.byName[name] = id
	s.byID[id] = name
	return id, nil
}

// IDOf returns the id assigned to name, if any.
func (s *Schema) IDOf(name string) (types.FieldID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// NameOf returns the name assigned to id, if any.
func (s *Schema) NameOf(id types.FieldID) (string, bool) {
	name, ok := s.byID[id]
	return name, ok
}

// Iter returns every known (id, name) pair; order is unspecified.
func (s *Schema) Iter() []Field {
	out := make([]Field, 0, len(s.byID))
	for id, name := range s.byID {
		out = append(out, Field{ID: id, Name: name})
	}
	return out
}

// PrimaryKey returns the configured primary key field name, if any has
// been fixed yet.
func (s *Schema) PrimaryKey() (string, bool) {
	return s.primaryKey, s.hasPK
}

// SetPrimaryKey fixes the primary key. Once any document exists in the
// index, changing it to a different name fails with
// ErrPrimaryKeyImmutable; setting it to the already-configured name is
// always a no-op success (idempotent settings application, §8).
func (s *Schema) SetPrimaryKey(name string, documentsExist bool) error {
	if s.hasPK && s.primaryKey != name && documentsExist {
		return fmt.Errorf("cannot change primary key from %q to %q: %w", s.primaryKey, name, types.ErrPrimaryKeyImmutable)
	}
	s.primaryKey = name
	s.hasPK = true
	return nil
}

// FieldCount returns the number of distinct fields known to the schema.
func (s *Schema) FieldCount() int { return len(s.byID) }

// SplitPath splits a dotted nested-field path into its components, e.g.
// "address.city" -> ["address", "city"]. The schema itself treats the
// joined dotted name as one flat field id (§4.2); this helper exists for
// callers (the transform) that need to walk nested JSON objects to
// produce those dotted names in the first place.
func SplitPath(name string) []string {
	return strings.Split(name, ".")
}

// JoinPath is the inverse of SplitPath.
func JoinPath(parts []string) string {
	return strings.Join(parts, ".")
}
