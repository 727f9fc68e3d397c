package engine

import (
	"fmt"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/log"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/cuemby/ftscore/pkg/tokenizer"
)

// Index is one open on-disk index: a kv.DB directory plus the tunables
// every write transaction runs under.
type Index struct {
	uid          string
	db           *kv.DB
	tok          *tokenizer.Tokenizer
	params       invindex.Params
	transformRun int
}

// databases lists every logical database an Index needs, across every
// layer, for kv.Open.
func databases() []string {
	dbs := append([]string{}, invindex.Databases()...)
	dbs = append(dbs, facet.StringDB, facet.NumberDB, document.DB, schema.MainDB, settings.DB)
	return dbs
}

// Open opens an existing index directory, or creates an empty one with
// default settings if dataDir has never held one, running under
// invindex.DefaultParams.
func Open(dataDir, uid string) (*Index, error) {
	return open(dataDir, uid, nil, invindex.DefaultParams, 0)
}

// Create opens dataDir as an index and applies initial on top of whatever
// settings it already has saved (the defaults for a fresh index), on
// every call.
func Create(dataDir, uid string, initial settings.Patch) (*Index, error) {
	return open(dataDir, uid, &initial, invindex.DefaultParams, 0)
}

// OpenWithParams is Open with explicit build parameters, the entry point
// cmd/ftsctl uses once it has resolved a pkg/config.Config.
func OpenWithParams(dataDir, uid string, params invindex.Params, transformRunSize int) (*Index, error) {
	return open(dataDir, uid, nil, params, transformRunSize)
}

// CreateWithParams is Create with explicit build parameters.
func CreateWithParams(dataDir, uid string, initial settings.Patch, params invindex.Params, transformRunSize int) (*Index, error) {
	return open(dataDir, uid, &initial, params, transformRunSize)
}

func open(dataDir, uid string, initial *settings.Patch, params invindex.Params, transformRunSize int) (*Index, error) {
	db, err := kv.Open(dataDir, databases())
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", uid, err)
	}
	idx := &Index{uid: uid, db: db, tok: tokenizer.New(nil), params: params, transformRun: transformRunSize}

	if initial != nil {
		if err := db.Update(func(txn *kv.Txn) error {
			sch, err := schema.Load(txn.Bucket(schema.MainDB).AsRo())
			if err != nil {
				return err
			}
			cur, err := settings.Load(txn.Bucket(settings.DB).AsRo())
			if err != nil {
				return err
			}
			documentsExist := document.Count(txn.Bucket(document.DB).AsRo()) > 0
			res, err := settings.Apply(sch, cur, *initial, documentsExist)
			if err != nil {
				return err
			}
			if err := sch.Save(txn.Bucket(schema.MainDB)); err != nil {
				return err
			}
			return settings.Save(txn.Bucket(settings.DB), res.Settings)
		}); err != nil {
			db.Close()
			return nil, fmt.Errorf("engine: apply initial settings for %s: %w", uid, err)
		}
	}

	log.WithIndex(uid).Info().Msg("index opened")
	return idx, nil
}

// UID returns the index's configured identifier.
func (idx *Index) UID() string { return idx.uid }

// Close releases the underlying kv store.
func (idx *Index) Close() error {
	return idx.db.Close()
}
