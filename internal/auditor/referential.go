package auditor

import (
	"fmt"
	"strconv"
	"strings"

	"data-audit/internal/model"
)

// ReferentialCheck finds child rows whose composite key does not occur in
// the parent table.
type ReferentialCheck struct {
	Join model.JoinConfig
}

func NewReferentialCheck(join model.JoinConfig) *ReferentialCheck {
	return &ReferentialCheck{Join: join}
}

func (r *ReferentialCheck) Name() string { return "referential_integrity" }

// Check returns the unmatched child rows, aligned to the child columns
// followed by the parent's non-key columns (left missing). A partial dataset
// or an unknown key column yields an empty set and no message.
func (r *ReferentialCheck) Check(ds model.Dataset) (model.RowSet, string) {
	empty := model.RowSet{Table: r.Join.ChildTable}

	child, ok := ds[r.Join.ChildTable]
	if !ok {
		return empty, ""
	}
	parent, ok := ds[r.Join.ParentTable]
	if !ok {
		return empty, ""
	}
	if len(r.Join.JoinKeys) == 0 || !child.Has(r.Join.JoinKeys...) || !parent.Has(r.Join.JoinKeys...) {
		return empty, ""
	}

	parentKeys := make(map[string]struct{}, len(parent.Rows))
	pIdx := keyIndexes(parent, r.Join.JoinKeys)
	for _, row := range parent.Rows {
		if k, ok := compositeKey(row, pIdx); ok {
			parentKeys[k] = struct{}{}
		}
	}

	columns, extra := r.alignedColumns(child, parent)
	out := model.RowSet{Table: child.Name, Columns: columns}

	cIdx := keyIndexes(child, r.Join.JoinKeys)
	for i, row := range child.Rows {
		k, ok := compositeKey(row, cIdx)
		if ok {
			if _, found := parentKeys[k]; found {
				continue
			}
		}
		aligned := make(model.Row, 0, len(columns))
		aligned = append(aligned, row...)
		for range extra {
			aligned = append(aligned, model.Missing())
		}
		out.Indices = append(out.Indices, i)
		out.Rows = append(out.Rows, aligned)
	}

	if out.Len() == 0 {
		return out, ""
	}

	msg := fmt.Sprintf("Found %d records where `%s` in `%s` do not exist in `%s`",
		out.Len(), strings.Join(r.Join.JoinKeys, " + "), child.Name, parent.Name)
	return out, msg
}

// alignedColumns is the child's columns plus the parent's non-key columns.
// A parent column whose name is taken gets a "_parent" suffix.
func (r *ReferentialCheck) alignedColumns(child, parent *model.Table) ([]model.Column, []model.Column) {
	isKey := make(map[string]bool, len(r.Join.JoinKeys))
	for _, k := range r.Join.JoinKeys {
		isKey[k] = true
	}

	columns := make([]model.Column, len(child.Columns))
	copy(columns, child.Columns)

	var extra []model.Column
	for _, c := range parent.Columns {
		if isKey[c.Name] {
			continue
		}
		if child.Index(c.Name) >= 0 {
			c.Name += "_parent"
		}
		extra = append(extra, c)
	}

	return append(columns, extra...), extra
}

func keyIndexes(t *model.Table, keys []string) []int {
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = t.Index(k)
	}
	return idx
}

// compositeKey encodes the key tuple with length-prefixed components. A
// tuple with a missing component has no key and can never match.
func compositeKey(row model.Row, idx []int) (string, bool) {
	var b strings.Builder
	for _, i := range idx {
		v := row[i]
		if v.Null {
			return "", false
		}
		s := v.String()
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String(), true
}
