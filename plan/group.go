package plan

import (
	"github.com/google/btree"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

// groupItem is a group of an aggregation, keyed by the values of the group by slots.
type groupItem struct {
	key         []sql.Value
	aggregators []symbols.Aggregator
}

func compareKeys(key1, key2 []sql.Value) int {
	for kdx := range key1 {
		if cmp := sql.Compare(key1[kdx], key2[kdx]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func (gi *groupItem) Less(item btree.Item) bool {
	return compareKeys(gi.key, item.(*groupItem).key) < 0
}

// aggregateIterator reads all of its input when it is started and returns one row per
// group, in order by group. Without any group by slots, there is exactly one group, even
// if the input is empty.
type aggregateIterator struct {
	input        Iterator
	groups       []int
	args         []evalFunc
	aggregatable []symbols.Aggregatable
	rows         [][]sql.Value
	index        int
	rb           *ArrayRowBuffer
}

func (bldr builder) buildAggregate(rel *binding.BoundAggregateRelation,
	outer *Allocation) Iterator {

	input, alloc := bldr.build(rel.Input, outer)
	ai := &aggregateIterator{
		input: input,
		rb:    NewArrayRowBuffer(len(rel.Groups) + len(rel.Aggregates)),
	}
	for _, slot := range rel.Groups {
		ai.groups = append(ai.groups, alloc.Index(slot))
	}
	for _, av := range rel.Aggregates {
		ai.args = append(ai.args, bldr.compile(av.Argument, alloc))
		ai.aggregatable = append(ai.aggregatable, av.Aggregatable)
	}
	return ai
}

func (ai *aggregateIterator) newGroup(key []sql.Value) *groupItem {
	gi := &groupItem{
		key:         key,
		aggregators: make([]symbols.Aggregator, len(ai.aggregatable)),
	}
	for adx, a := range ai.aggregatable {
		gi.aggregators[adx] = a.NewAggregator()
	}
	return gi
}

func (ai *aggregateIterator) group() (*btree.BTree, error) {
	err := ai.input.Start()
	if err != nil {
		return nil, err
	}

	tree := btree.New(16)
	rb := ai.input.RowBuffer()
	for {
		ok, err := ai.input.NextRow()
		if err != nil {
			return nil, err
		} else if !ok {
			break
		}

		key := make([]sql.Value, len(ai.groups))
		for gdx, idx := range ai.groups {
			key[gdx] = rb.Value(idx)
		}
		var gi *groupItem
		if item := tree.Get(&groupItem{key: key}); item != nil {
			gi = item.(*groupItem)
		} else {
			gi = ai.newGroup(key)
			tree.ReplaceOrInsert(gi)
		}

		for adx, arg := range ai.args {
			v, err := arg()
			if err != nil {
				return nil, err
			}
			err = gi.aggregators[adx].Accumulate(v)
			if err != nil {
				return nil, err
			}
		}
	}

	if tree.Len() == 0 && len(ai.groups) == 0 {
		tree.ReplaceOrInsert(ai.newGroup(nil))
	}
	return tree, ai.input.Close()
}

func (ai *aggregateIterator) Start() error {
	tree, err := ai.group()
	if err != nil {
		return err
	}

	ai.rows = make([][]sql.Value, 0, tree.Len())
	ai.index = 0
	tree.Ascend(
		func(item btree.Item) bool {
			gi := item.(*groupItem)
			row := make([]sql.Value, 0, len(gi.key)+len(gi.aggregators))
			row = append(row, gi.key...)
			for _, agg := range gi.aggregators {
				var v sql.Value
				v, err = agg.Total()
				if err != nil {
					return false
				}
				row = append(row, v)
			}
			ai.rows = append(ai.rows, row)
			return true
		})
	return err
}

func (ai *aggregateIterator) NextRow() (bool, error) {
	if ai.index >= len(ai.rows) {
		return false, nil
	}
	copy(ai.rb.Row, ai.rows[ai.index])
	ai.index += 1
	return true, nil
}

func (ai *aggregateIterator) RowBuffer() RowBuffer {
	return ai.rb
}

func (ai *aggregateIterator) Close() error {
	ai.rows = nil
	return ai.input.Close()
}
