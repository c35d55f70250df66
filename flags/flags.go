package flags

import (
	"sort"
	"strings"
)

type Flag int

const (
	Rewrite Flag = iota
	RemoveTrueFilters
	SimplifyJoins
	RemoveIdentityProjects
)

type flagDefault struct {
	flag Flag
	def  bool
}

var (
	defaultFlags = map[string]flagDefault{
		"rewrite":                  {Rewrite, true},
		"remove-true-filters":      {RemoveTrueFilters, true},
		"simplify-joins":           {SimplifyJoins, true},
		"remove-identity-projects": {RemoveIdentityProjects, true},
	}
)

func LookupFlag(nam string) (Flag, bool) {
	fd, ok := defaultFlags[strings.ToLower(nam)]
	return fd.flag, ok
}

// ListFlags calls fn for each flag, in order by name.
func ListFlags(fn func(nam string, f Flag)) {
	nams := make([]string, 0, len(defaultFlags))
	for nam := range defaultFlags {
		nams = append(nams, nam)
	}
	sort.Strings(nams)
	for _, nam := range nams {
		fn(nam, defaultFlags[nam].flag)
	}
}

type Flags []bool

func (flgs Flags) GetFlag(f Flag) bool {
	return flgs[f]
}

func Default() Flags {
	flgs := make([]bool, len(defaultFlags))
	for _, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
	}
	return flgs
}
