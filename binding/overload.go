package binding

import (
	"fmt"
	"strings"

	"github.com/leftmike/nquery/sql"
)

// Signature is anything which can be called with arguments: operators, functions, and
// methods.
type Signature interface {
	ParameterCount() int
	ParameterType(i int) sql.Type
	ReturnType() sql.Type
}

type OverloadStatus int

const (
	NoApplicableCandidate OverloadStatus = iota
	Selected
	Ambiguous
)

func (os OverloadStatus) String() string {
	switch os {
	case NoApplicableCandidate:
		return "no applicable candidate"
	case Selected:
		return "selected"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("OverloadStatus(%d)", int(os))
}

type OverloadResult struct {
	status      OverloadStatus
	argTypes    []sql.Type
	selected    Signature
	candidates  []Signature
	conversions []sql.Conversion
}

func (or OverloadResult) Status() OverloadStatus {
	return or.status
}

// Selected is the chosen signature or nil.
func (or OverloadResult) Selected() Signature {
	return or.selected
}

// Candidates are the best applicable signatures when the result is ambiguous.
func (or OverloadResult) Candidates() []Signature {
	return or.candidates
}

// Conversions are the argument conversions of the selected signature.
func (or OverloadResult) Conversions() []sql.Conversion {
	return or.conversions
}

func (or OverloadResult) ArgumentTypes() []sql.Type {
	return or.argTypes
}

// HasUnknownArgument is true when an argument failed to bind; callers use it to avoid
// reporting a second diagnostic for the same error.
func (or OverloadResult) HasUnknownArgument() bool {
	for _, at := range or.argTypes {
		if sql.IsUnknown(at) {
			return true
		}
	}
	return false
}

// ReturnType is the return type of the selected signature or Unknown.
func (or OverloadResult) ReturnType() sql.Type {
	if or.selected == nil {
		return sql.UnknownType
	}
	return or.selected.ReturnType()
}

func (or OverloadResult) String() string {
	switch or.status {
	case Selected:
		return fmt.Sprintf("%s %s", or.status, or.selected)
	case Ambiguous:
		return fmt.Sprintf("%s %v", or.status, or.candidates)
	}
	return or.status.String()
}

type candidate struct {
	sig         Signature
	conversions []sql.Conversion
}

func applicable(argTypes []sql.Type, sig Signature) (candidate, bool) {
	if sig.ParameterCount() != len(argTypes) {
		return candidate{}, false
	}

	c := candidate{
		sig:         sig,
		conversions: make([]sql.Conversion, len(argTypes)),
	}
	for adx, at := range argTypes {
		conv := sql.Classify(at, sig.ParameterType(adx))
		if !conv.IsImplicit() {
			return candidate{}, false
		}
		c.conversions[adx] = conv
	}
	return c, true
}

// dominates returns true if x is at least as good as y for every argument and better for
// at least one.
func dominates(x, y candidate) bool {
	better := false
	for adx := range x.conversions {
		cmp := sql.CompareConversions(x.sig.ParameterType(adx), x.conversions[adx],
			y.sig.ParameterType(adx), y.conversions[adx])
		if cmp > 0 {
			return false
		} else if cmp < 0 {
			better = true
		}
	}
	return better
}

// ResolveOverloads picks the best signature for the argument types. The result does not
// depend on the order of the signatures.
func ResolveOverloads(argTypes []sql.Type, sigs []Signature) OverloadResult {
	or := OverloadResult{
		argTypes: argTypes,
	}

	var cands []candidate
	for _, sig := range sigs {
		if c, ok := applicable(argTypes, sig); ok {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		or.status = NoApplicableCandidate
		return or
	}

	var best []candidate
	for cdx, c := range cands {
		dominated := false
		for odx, o := range cands {
			if odx != cdx && dominates(o, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			best = append(best, c)
		}
	}

	if len(best) == 1 {
		or.status = Selected
		or.selected = best[0].sig
		or.conversions = best[0].conversions
		return or
	}

	or.status = Ambiguous
	for _, c := range best {
		or.candidates = append(or.candidates, c.sig)
	}
	return or
}

func typesString(types []sql.Type) string {
	var buf strings.Builder
	for tdx, typ := range types {
		if tdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(typ.String())
	}
	return buf.String()
}

func signaturesString(sigs []Signature) string {
	var buf strings.Builder
	for sdx, sig := range sigs {
		if sdx > 0 {
			buf.WriteString(" and ")
		}
		fmt.Fprint(&buf, sig)
	}
	return buf.String()
}
