package flags_test

import (
	"testing"

	"github.com/leftmike/nquery/flags"
)

func TestFlags(t *testing.T) {
	flgs := flags.Default()
	var nams []string
	flags.ListFlags(func(nam string, f flags.Flag) {
		nams = append(nams, nam)
		if !flgs.GetFlag(f) {
			t.Errorf("Default().GetFlag(%s) got false want true", nam)
		}
		lf, ok := flags.LookupFlag(nam)
		if !ok || lf != f {
			t.Errorf("LookupFlag(%s) got %v, %v want %v, true", nam, lf, ok, f)
		}
	})

	want := []string{"remove-identity-projects", "remove-true-filters", "rewrite",
		"simplify-joins"}
	if len(nams) != len(want) {
		t.Fatalf("ListFlags() got %v want %v", nams, want)
	}
	for ndx := range want {
		if nams[ndx] != want[ndx] {
			t.Errorf("ListFlags()[%d] got %s want %s", ndx, nams[ndx], want[ndx])
		}
	}

	if f, ok := flags.LookupFlag("Simplify-Joins"); !ok || f != flags.SimplifyJoins {
		t.Errorf("LookupFlag(Simplify-Joins) got %v, %v want %v, true", f, ok,
			flags.SimplifyJoins)
	}
	if _, ok := flags.LookupFlag("not-a-flag"); ok {
		t.Errorf("LookupFlag(not-a-flag) got true want false")
	}

	flgs[flags.Rewrite] = false
	if flgs.GetFlag(flags.Rewrite) {
		t.Errorf("GetFlag(rewrite) got true want false")
	}
	if !flags.Default().GetFlag(flags.Rewrite) {
		t.Errorf("Default() shares flags")
	}
}
