// Package schema reconciles heterogeneous flat records into one table.
package schema

import (
	"strconv"

	"github.com/law-makers/datalayer/internal/datalayer"
)

// IndexKey is the leading column of every table.
const IndexKey = "index"

// IndexTitle is the display title of the index column.
const IndexTitle = "Index"

// Column describes one output column.
type Column struct {
	Key   string
	Title string
}

// Header is the ordered column list, always starting with the index column.
type Header []Column

// Keys returns the column keys in order.
func (h Header) Keys() []string {
	keys := make([]string, len(h))
	for i, c := range h {
		keys[i] = c.Key
	}
	return keys
}

// Titles returns the column titles in order.
func (h Header) Titles() []string {
	titles := make([]string, len(h))
	for i, c := range h {
		titles[i] = c.Title
	}
	return titles
}

// Row is one record expressed against the table's global key set.
// Values[i] belongs to Header[i+1].
type Row struct {
	Index  int
	Values []datalayer.Value
}

// Strings renders the row as cells, index first.
func (r Row) Strings() []string {
	out := make([]string, 0, len(r.Values)+1)
	out = append(out, strconv.Itoa(r.Index))
	for _, v := range r.Values {
		out = append(out, v.String())
	}
	return out
}

// Table is the reconciled output of one run.
type Table struct {
	Header Header
	Rows   []Row
}

// Columns returns the dynamic (non-index) columns.
func (t *Table) Columns() Header {
	if len(t.Header) == 0 {
		return nil
	}
	return t.Header[1:]
}

// Get returns the cell of row under key.
func (t *Table) Get(row Row, key string) (datalayer.Value, bool) {
	if key == IndexKey {
		return datalayer.Int(int64(row.Index)), true
	}
	for i, c := range t.Columns() {
		if c.Key == key {
			return row.Values[i], true
		}
	}
	return datalayer.Value{}, false
}

// Reconcile computes the union of keys across records, in order of first
// appearance, and rewrites every record against it. Keys missing from a
// record become empty strings. The full key set is only known once every
// record has been seen, so rows are built in a second pass.
func Reconcile(records []*datalayer.Record) *Table {
	var keys []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if k == IndexKey || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}

	header := make(Header, 0, len(keys)+1)
	header = append(header, Column{Key: IndexKey, Title: IndexTitle})
	for _, k := range keys {
		header = append(header, Column{Key: k, Title: k})
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		values := make([]datalayer.Value, len(keys))
		for j, k := range keys {
			if v, ok := rec.Get(k); ok {
				values[j] = v
			} else {
				values[j] = datalayer.String("")
			}
		}
		rows[i] = Row{Index: i + 1, Values: values}
	}

	return &Table{Header: header, Rows: rows}
}
