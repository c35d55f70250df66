package symbols

import (
	"fmt"

	"github.com/leftmike/nquery/sql"
)

// ValueSlot is a placeholder for one value of the rows of a relation. Slots are
// compared by identity.
type ValueSlot struct {
	id   int
	name string
	typ  sql.Type
}

func (vs *ValueSlot) Name() string {
	return vs.name
}

func (vs *ValueSlot) Type() sql.Type {
	return vs.typ
}

func (vs *ValueSlot) String() string {
	return fmt.Sprintf("%s:%d", vs.name, vs.id)
}

// ValueSlotFactory creates the value slots of one compilation; names are not unique, so
// the factory numbers the slots it creates.
type ValueSlotFactory struct {
	next int
}

func (vsf *ValueSlotFactory) New(name string, typ sql.Type) *ValueSlot {
	vsf.next += 1
	if name == "" {
		name = "expr"
	}
	return &ValueSlot{
		id:   vsf.next,
		name: name,
		typ:  typ,
	}
}
