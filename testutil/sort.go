package testutil

import (
	"sort"

	"github.com/leftmike/nquery/sql"
)

type sortRows [][]sql.Value

func (sr sortRows) Len() int {
	return len(sr)
}

func (sr sortRows) Swap(i, j int) {
	sr[i], sr[j] = sr[j], sr[i]
}

func (sr sortRows) Less(i, j int) bool {
	for cdx := range sr[i] {
		cmp := sql.Compare(sr[i][cdx], sr[j][cdx])
		if cmp < 0 {
			return true
		} else if cmp > 0 {
			return false
		}
	}
	return false
}

// SortRows sorts rows by all of their values, left to right; it is used to compare
// results which are not in a defined order.
func SortRows(rows [][]sql.Value) {
	sort.Sort(sortRows(rows))
}
