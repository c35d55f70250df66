package binding_test

import (
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

func TestShowPlan(t *testing.T) {
	cases := []struct {
		s    string
		plan string
	}{
		{
			s: "SELECT Id FROM Customers WHERE Id > 1",
			plan: `Compute
  | Id:3 := Id:1
    Filter
      | (Id:1 > 1)
        Table Customers
          | Id:1, Name:2
`,
		},
		{
			s: "SELECT TOP 2 Name FROM Customers ORDER BY Id DESC",
			plan: `Project
  | Name:3
    Top 2
        Sort
          | expr:4 DESC
            Compute
              | Name:3 := Name:2
              | expr:4 := Id:1
                Table Customers
                  | Id:1, Name:2
`,
		},
	}

	for _, c := range cases {
		bt := bindQuery(t, c.s)
		if len(bt.Diagnostics) != 0 {
			t.Errorf("Bind(%q) failed: %v", c.s, bt.Diagnostics)
			continue
		}
		plan := binding.ShowPlan(bt.Query.Relation)
		if plan != c.plan {
			t.Errorf("ShowPlan(%q) got:\n%s\ndiff:\n%s", c.s, plan, diff.LineDiff(c.plan, plan))
		}
	}
}

func countRelations(br binding.BoundRelation, match func(br binding.BoundRelation) bool) int {
	var cnt int
	walkRelations(br, func(br binding.BoundRelation) {
		if match(br) {
			cnt += 1
		}
	})
	return cnt
}

func isFilter(br binding.BoundRelation) bool {
	_, ok := br.(*binding.BoundFilterRelation)
	return ok
}

func isCrossJoin(br binding.BoundRelation) bool {
	bjr, ok := br.(*binding.BoundJoinRelation)
	return ok && bjr.JoinType == binding.CrossJoin
}

func TestSimplify(t *testing.T) {
	cases := []struct {
		s       string
		same    bool
		filters int
		crosses int
	}{
		{s: "SELECT Id FROM Customers WHERE Id > 1", same: true, filters: 1},
		{s: "SELECT Id FROM Customers", same: true},
		{s: "SELECT Id FROM Customers WHERE TRUE"},
		{s: "SELECT Id FROM Customers WHERE 1 = 1", same: true, filters: 1},
		{
			s:       "SELECT c.Id FROM Customers AS c INNER JOIN Orders AS o ON TRUE",
			crosses: 1,
		},
		{
			s:    "SELECT c.Id FROM Customers AS c INNER JOIN Orders AS o ON o.CustomerId = c.Id",
			same: true,
		},
		{s: "SELECT COUNT(*) FROM Orders", same: true},
		{s: "SELECT CustomerId, COUNT(*), SUM(Total) FROM Orders GROUP BY CustomerId", same: true},
		{
			s:       "SELECT CustomerId FROM Orders GROUP BY CustomerId HAVING COUNT(*) > 1",
			same:    true,
			filters: 1,
		},
		{s: "SELECT SUM(Id + 1) FROM Customers GROUP BY Id * 2", same: true},
		{s: "SELECT COUNT(*), MAX(Name) FROM Customers WHERE TRUE"},
		{
			s: "SELECT Id FROM Customers WHERE TRUE UNION ALL " +
				"SELECT Id FROM Orders WHERE Id > 1",
			filters: 1,
		},
	}

	for _, c := range cases {
		bt := bindQuery(t, c.s)
		if len(bt.Diagnostics) != 0 {
			t.Errorf("Bind(%q) failed: %v", c.s, bt.Diagnostics)
			continue
		}

		br := binding.Simplify(bt.Query.Relation, binding.DefaultSimplify)
		if (br == bt.Query.Relation) != c.same {
			t.Errorf("Simplify(%q) same got %v want %v", c.s, !c.same, c.same)
		}
		if n := countRelations(br, isFilter); n != c.filters {
			t.Errorf("Simplify(%q) filters got %d want %d", c.s, n, c.filters)
		}
		if n := countRelations(br, isCrossJoin); n != c.crosses {
			t.Errorf("Simplify(%q) cross joins got %d want %d", c.s, n, c.crosses)
		}

		if binding.Simplify(bt.Query.Relation, 0) != bt.Query.Relation {
			t.Errorf("Simplify(%q, 0) did not return the same relation", c.s)
		}
	}
}

func findRelation(t *testing.T, s string,
	match func(br binding.BoundRelation) bool) binding.BoundRelation {

	t.Helper()

	bt := bindQuery(t, s)
	if len(bt.Diagnostics) != 0 {
		t.Fatalf("Bind(%q) failed: %v", s, bt.Diagnostics)
	}
	var found binding.BoundRelation
	walkRelations(bt.Query.Relation, func(br binding.BoundRelation) {
		if found == nil && match(br) {
			found = br
		}
	})
	if found == nil {
		t.Fatalf("Bind(%q) did not contain the relation", s)
	}
	return found
}

func TestUpdateSame(t *testing.T) {
	other := &binding.BoundConstantRelation{}
	literal := &binding.BoundLiteralExpression{Value: int32(1), ValueType: sql.IntType}

	bcr := findRelation(t, "SELECT Id + 1, Name FROM Customers",
		func(br binding.BoundRelation) bool {
			_, ok := br.(*binding.BoundComputeRelation)
			return ok
		}).(*binding.BoundComputeRelation)
	dvs := append([]binding.BoundComputedValue(nil), bcr.DefinedValues...)
	if bcr.Update(bcr.Input, dvs) != bcr {
		t.Errorf("Compute.Update() with the same values did not return the same relation")
	}
	dvs[0] = dvs[0].Update(literal)
	if bcr.Update(bcr.Input, dvs) == bcr {
		t.Errorf("Compute.Update() with a new value returned the same relation")
	}
	if bcr.Update(other, bcr.DefinedValues) == bcr {
		t.Errorf("Compute.Update() with a new input returned the same relation")
	}

	bar := findRelation(t, "SELECT COUNT(*), SUM(Id), MIN(Name) FROM Customers",
		func(br binding.BoundRelation) bool {
			_, ok := br.(*binding.BoundAggregateRelation)
			return ok
		}).(*binding.BoundAggregateRelation)
	aggs := append([]binding.BoundAggregatedValue(nil), bar.Aggregates...)
	if bar.Update(bar.Input, aggs) != bar {
		t.Errorf("Aggregate.Update() with the same values did not return the same relation")
	}
	aggs[1] = aggs[1].Update(literal)
	if bar.Update(bar.Input, aggs) == bar {
		t.Errorf("Aggregate.Update() with a new argument returned the same relation")
	}
	if bar.Update(other, bar.Aggregates) == bar {
		t.Errorf("Aggregate.Update() with a new input returned the same relation")
	}

	bur := findRelation(t, "SELECT Id FROM Customers UNION SELECT Id FROM Orders",
		func(br binding.BoundRelation) bool {
			_, ok := br.(*binding.BoundUnionRelation)
			return ok
		}).(*binding.BoundUnionRelation)
	inputs := append([]binding.BoundRelation(nil), bur.Inputs...)
	if bur.Update(inputs) != bur {
		t.Errorf("Union.Update() with the same inputs did not return the same relation")
	}
	inputs[1] = other
	if bur.Update(inputs) == bur {
		t.Errorf("Union.Update() with a new input returned the same relation")
	}

	bpr := findRelation(t, "SELECT Name FROM Customers ORDER BY Id",
		func(br binding.BoundRelation) bool {
			_, ok := br.(*binding.BoundProjectRelation)
			return ok
		}).(*binding.BoundProjectRelation)
	if bpr.Update(bpr.Input) != bpr {
		t.Errorf("Project.Update() with the same input did not return the same relation")
	}
	if bpr.Update(other) == bpr {
		t.Errorf("Project.Update() with a new input returned the same relation")
	}
}

func TestRewriteExpression(t *testing.T) {
	bt := bindQuery(t, "SELECT Id + 1 FROM Customers WHERE Name = 'abc'")
	if len(bt.Diagnostics) != 0 {
		t.Fatalf("Bind() failed: %v", bt.Diagnostics)
	}

	rw := binding.Rewriter{
		AfterExpression: func(be binding.BoundExpression) binding.BoundExpression {
			return be
		},
	}
	if rw.RewriteRelation(bt.Query.Relation) != bt.Query.Relation {
		t.Errorf("RewriteRelation() with an identity rewrite did not return the same relation")
	}

	var literals int
	rw = binding.Rewriter{
		AfterExpression: func(be binding.BoundExpression) binding.BoundExpression {
			if ble, ok := be.(*binding.BoundLiteralExpression); ok {
				if s, ok := ble.Value.(string); ok {
					literals += 1
					return &binding.BoundLiteralExpression{Value: s + "def",
						ValueType: sql.StringType}
				}
			}
			return be
		},
	}
	br := rw.RewriteRelation(bt.Query.Relation)
	if br == bt.Query.Relation {
		t.Errorf("RewriteRelation() returned the same relation after a rewrite")
	}
	if literals != 1 {
		t.Errorf("RewriteRelation() rewrote %d literals want 1", literals)
	}
	if countRelations(br, isFilter) != 1 {
		t.Errorf("RewriteRelation() lost the filter")
	}
}

func TestOverloadOrder(t *testing.T) {
	fn := func(args []sql.Value) (sql.Value, error) { return nil, nil }
	sigs := []binding.Signature{
		symbols.NewFunctionSymbol("F", []sql.Type{sql.LongType, sql.LongType}, sql.LongType, fn),
		symbols.NewFunctionSymbol("F", []sql.Type{sql.IntType, sql.IntType}, sql.IntType, fn),
		symbols.NewFunctionSymbol("F", []sql.Type{sql.StringType}, sql.StringType, fn),
	}
	rev := []binding.Signature{sigs[2], sigs[1], sigs[0]}

	args := []sql.Type{sql.IntType, sql.IntType}
	or1 := binding.ResolveOverloads(args, sigs)
	or2 := binding.ResolveOverloads(args, rev)
	if or1.Status() != binding.Selected || or2.Status() != binding.Selected {
		t.Fatalf("ResolveOverloads(%v) got %s and %s want selected", args, or1.Status(),
			or2.Status())
	}
	if or1.Selected() != sigs[1] || or2.Selected() != sigs[1] {
		t.Errorf("ResolveOverloads(%v) got %v and %v want %v", args, or1.Selected(),
			or2.Selected(), sigs[1])
	}
	if or1.ReturnType() != sql.IntType {
		t.Errorf("ResolveOverloads(%v).ReturnType() got %s want %s", args, or1.ReturnType(),
			sql.IntType)
	}

	args = []sql.Type{sql.BooleanType}
	or1 = binding.ResolveOverloads(args, sigs)
	if or1.Status() != binding.NoApplicableCandidate {
		t.Errorf("ResolveOverloads(%v) got %s want %s", args, or1.Status(),
			binding.NoApplicableCandidate)
	}
}
