// Package index provides the in-memory secondary index used to enforce
// PRIMARY KEY and UNIQUE constraints: an inverted map from column value to
// the set of rowids carrying that value, persisted alongside the table.
package index

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/golang/snappy"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/internal/storage"
	"github.com/minirel/minirel/pkg/types"
)

// Index is bound to one (table, column) pair. Buckets are keyed by the
// value's canonical string form, so 1 and 1.0 share a bucket the way they
// compare equal in the executor. Null values are never indexed.
type Index struct {
	Table  string
	Column string

	buckets map[string]map[int64]struct{}
}

// New creates an empty index for the given table column.
func New(table, column string) *Index {
	return &Index{
		Table:   table,
		Column:  column,
		buckets: make(map[string]map[int64]struct{}),
	}
}

// Add inserts a rowid into the bucket for the value, creating the bucket
// if absent.
func (ix *Index) Add(value interface{}, rowid int64) {
	key := types.FormatValue(value)
	bucket, ok := ix.buckets[key]
	if !ok {
		bucket = make(map[int64]struct{})
		ix.buckets[key] = bucket
	}
	bucket[rowid] = struct{}{}
}

// Remove deletes a rowid from the value's bucket, dropping the bucket once
// empty. Removing an absent pair is a no-op.
func (ix *Index) Remove(value interface{}, rowid int64) {
	key := types.FormatValue(value)
	bucket, ok := ix.buckets[key]
	if !ok {
		return
	}
	delete(bucket, rowid)
	if len(bucket) == 0 {
		delete(ix.buckets, key)
	}
}

// Get returns the rowids indexed under the value, sorted ascending.
// A miss returns an empty slice.
func (ix *Index) Get(value interface{}) []int64 {
	bucket := ix.buckets[types.FormatValue(value)]
	ids := make([]int64, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether any row is indexed under the value.
func (ix *Index) Contains(value interface{}) bool {
	return len(ix.buckets[types.FormatValue(value)]) > 0
}

// Len returns the number of distinct indexed values.
func (ix *Index) Len() int {
	return len(ix.buckets)
}

// Clear drops every bucket.
func (ix *Index) Clear() {
	ix.buckets = make(map[string]map[int64]struct{})
}

// Rebuild repopulates the index from live rows, replacing all buckets.
// Rows without a value for the column are skipped.
func (ix *Index) Rebuild(rows []*types.Row) {
	ix.Clear()
	for _, row := range rows {
		if v, ok := row.Values[ix.Column]; ok && v != nil {
			ix.Add(v, row.RowID)
		}
	}
}

// indexFile is the persisted form: a JSON envelope compressed with snappy.
// The format is opaque to callers but stable across one build.
type indexFile struct {
	Table   string             `json:"table"`
	Column  string             `json:"column"`
	Buckets map[string][]int64 `json:"buckets"`
}

// Save writes the index to its .idx file.
func (ix *Index) Save(eng *storage.Engine) error {
	file := indexFile{
		Table:   ix.Table,
		Column:  ix.Column,
		Buckets: make(map[string][]int64, len(ix.buckets)),
	}
	for key, bucket := range ix.buckets {
		ids := make([]int64, 0, len(bucket))
		for id := range bucket {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		file.Buckets[key] = ids
	}

	raw, err := json.Marshal(file)
	if err != nil {
		return errors.NewInternalError("failed to encode index", err)
	}
	compressed := snappy.Encode(nil, raw)

	path := eng.IndexPath(ix.Table, ix.Column)
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to write index file", err)
	}
	return nil
}

// Load replaces the index contents from its .idx file. A missing file
// leaves the index empty.
func (ix *Index) Load(eng *storage.Engine) error {
	path := eng.IndexPath(ix.Table, ix.Column)
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ix.Clear()
			return nil
		}
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to read index file", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to decompress index file", err)
	}

	var file indexFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to decode index file", err)
	}

	ix.Clear()
	for key, ids := range file.Buckets {
		bucket := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			bucket[id] = struct{}{}
		}
		ix.buckets[key] = bucket
	}
	return nil
}
