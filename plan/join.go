package plan

import (
	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
)

type joinState int

const (
	matchRows joinState = iota
	rightRemaining
	allDone
)

// joinIterator is a nested loop join; the right side is read into memory when the join
// is started. Outer joins fill the missing side with NULLs.
type joinIterator struct {
	joinType binding.JoinType
	state    joinState

	left        Iterator
	haveLeft    bool
	leftMatched bool
	leftRB      *SwitchRowBuffer

	right      Iterator
	rightRows  [][]sql.Value
	rightIndex int
	rightUsed  []bool
	rightRB    *SwitchRowBuffer
	rightArray *ArrayRowBuffer

	cond evalFunc
	rb   *CombinedRowBuffer
}

func (bldr builder) buildJoin(rel *binding.BoundJoinRelation, outer *Allocation) Iterator {
	left, _ := bldr.build(rel.Left, outer)
	right, _ := bldr.build(rel.Right, outer)

	rightArray := NewArrayRowBuffer(len(rel.Right.GetOutputValues()))
	ji := &joinIterator{
		joinType:   rel.JoinType,
		left:       left,
		leftRB:     &SwitchRowBuffer{Buffer: left.RowBuffer()},
		right:      right,
		rightRB:    &SwitchRowBuffer{Buffer: rightArray},
		rightArray: rightArray,
	}
	ji.rb = &CombinedRowBuffer{
		Left:  ji.leftRB,
		Right: ji.rightRB,
	}
	if rel.Condition != nil {
		ji.cond = bldr.compile(rel.Condition, newAllocation(outer, ji.rb, rel.GetOutputValues()))
	}
	return ji
}

func (ji *joinIterator) Start() error {
	rows, err := spool(ji.right)
	if err != nil {
		return err
	}
	err = ji.right.Close()
	if err != nil {
		return err
	}

	ji.rightRows = rows
	ji.rightIndex = 0
	if ji.joinType == binding.RightOuterJoin || ji.joinType == binding.FullOuterJoin {
		ji.rightUsed = make([]bool, len(rows))
	} else {
		ji.rightUsed = nil
	}
	ji.haveLeft = false
	ji.leftRB.IsNull = false
	ji.rightRB.IsNull = false
	ji.state = matchRows
	return ji.left.Start()
}

func (ji *joinIterator) match() (bool, error) {
	if ji.cond == nil {
		return true, nil
	}
	b, null, err := evalBool(ji.cond, "ON")
	if err != nil {
		return false, err
	}
	return !null && b, nil
}

func (ji *joinIterator) NextRow() (bool, error) {
	for ji.state == matchRows {
		// Make sure that we have a left row.
		if !ji.haveLeft {
			ok, err := ji.left.NextRow()
			if err != nil {
				ji.state = allDone
				return false, err
			} else if !ok {
				if ji.rightUsed != nil {
					ji.state = rightRemaining
					ji.rightIndex = 0
				} else {
					ji.state = allDone
				}
				break
			}
			ji.haveLeft = true
			ji.leftMatched = false
			ji.rightIndex = 0
		}

		ji.rightRB.IsNull = false
		for ji.rightIndex < len(ji.rightRows) {
			copy(ji.rightArray.Row, ji.rightRows[ji.rightIndex])
			ji.rightIndex += 1

			ok, err := ji.match()
			if err != nil {
				ji.state = allDone
				return false, err
			} else if ok {
				ji.leftMatched = true
				if ji.rightUsed != nil {
					ji.rightUsed[ji.rightIndex-1] = true
				}
				return true, nil
			}
		}

		ji.haveLeft = false
		if !ji.leftMatched &&
			(ji.joinType == binding.LeftOuterJoin || ji.joinType == binding.FullOuterJoin) {

			ji.rightRB.IsNull = true
			return true, nil
		}
	}

	if ji.state == rightRemaining {
		ji.leftRB.IsNull = true
		ji.rightRB.IsNull = false
		for ji.rightIndex < len(ji.rightRows) {
			rdx := ji.rightIndex
			ji.rightIndex += 1
			if !ji.rightUsed[rdx] {
				copy(ji.rightArray.Row, ji.rightRows[rdx])
				return true, nil
			}
		}
		ji.state = allDone
	}
	return false, nil
}

func (ji *joinIterator) RowBuffer() RowBuffer {
	return ji.rb
}

func (ji *joinIterator) Close() error {
	ji.state = allDone
	ji.rightRows = nil
	err := ji.left.Close()
	if err != nil {
		ji.right.Close()
		return err
	}
	return ji.right.Close()
}
