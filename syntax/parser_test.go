package syntax

import (
	"reflect"
	"testing"
)

func parseSelect(t *testing.T, s string) (*SelectQuery, []Diagnostic) {
	t.Helper()

	st := ParseQuery(s)
	sq, ok := st.Root().Root.(*SelectQuery)
	if !ok {
		t.Fatalf("ParseQuery(%q) got %T want *SelectQuery", s, st.Root().Root)
	}
	return sq, st.Diagnostics()
}

func TestTopMissingWith(t *testing.T) {
	sq, diags := parseSelect(t, "SELECT TOP 1 TIES NULL")
	tc := sq.Select.Top
	if tc.Ties == nil || tc.Ties.IsMissing() {
		t.Errorf("TIES: got missing want present")
	}
	if tc.With == nil || !tc.With.IsMissing() {
		t.Errorf("WITH: got present want missing")
	}
	if len(diags) != 1 || diags[0].ID != TokenExpected {
		t.Errorf("diagnostics: got %v want one TokenExpected", diags)
	}
}

func TestTopMissingTies(t *testing.T) {
	sq, diags := parseSelect(t, "SELECT TOP 1 WITH NULL")
	tc := sq.Select.Top
	if tc.Ties == nil || !tc.Ties.IsMissing() {
		t.Errorf("TIES: got present want missing")
	}
	if tc.With == nil || tc.With.IsMissing() {
		t.Errorf("WITH: got missing want present")
	}
	if len(diags) != 1 || diags[0].ID != TokenExpected {
		t.Errorf("diagnostics: got %v want one TokenExpected", diags)
	}
	if sq.Select.Columns.Len() != 1 {
		t.Errorf("columns: got %d want 1", sq.Select.Columns.Len())
	}
}

func TestTopMissingValue(t *testing.T) {
	sq, diags := parseSelect(t, "SELECT TOP 'text'")
	tc := sq.Select.Top
	if !tc.Value.IsMissing() || tc.Value.Kind() != NumericLiteralToken {
		t.Errorf("TOP value: got %s want missing NumericLiteralToken", tc.Value)
	}
	if len(diags) != 1 || diags[0].ID != TokenExpected {
		t.Errorf("diagnostics: got %v want one TokenExpected", diags)
	}
	if diags[0].Message != "found 'text' but expected numeric literal" {
		t.Errorf("message: got %q", diags[0].Message)
	}
	esc, ok := sq.Select.Columns.Items[0].(*ExpressionSelectColumn)
	if !ok || esc.Expression.Kind() != LiteralExpressionKind {
		t.Errorf("column: got %v want literal", sq.Select.Columns.Items[0])
	}
}

func TestTopWithTies(t *testing.T) {
	sq, diags := parseSelect(t, "SELECT TOP 3 WITH TIES a FROM t")
	tc := sq.Select.Top
	if tc.With == nil || tc.With.IsMissing() || tc.Ties == nil || tc.Ties.IsMissing() {
		t.Errorf("TOP: got %v", tc.ChildNodesAndTokens())
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics: got %v", diags)
	}
}

func TestParseExpression(t *testing.T) {
	cases := []struct {
		s    string
		kind Kind
	}{
		{"1 + 2 * 3", AddExpressionKind},
		{"1 * 2 + 3", AddExpressionKind},
		{"a OR b AND c", LogicalOrExpressionKind},
		{"NOT a = b", LogicalNotExpressionKind},
		{"-a", NegationExpressionKind},
		{"~a", ComplementExpressionKind},
		{"a LIKE 'x%'", LikeExpressionKind},
		{"a NOT LIKE 'x%'", LikeExpressionKind},
		{"a SIMILAR TO 'x'", SimilarToExpressionKind},
		{"a BETWEEN 1 AND 2", BetweenExpressionKind},
		{"a NOT BETWEEN 1 AND 2 AND b", LogicalAndExpressionKind},
		{"a IS NULL", IsNullExpressionKind},
		{"a IS NOT NULL", IsNullExpressionKind},
		{"a IN (1, 2, 3)", InExpressionKind},
		{"a NOT IN (SELECT b FROM t)", InQueryExpressionKind},
		{"a = ANY (SELECT b FROM t)", AllAnySubselectKind},
		{"a > ALL (SELECT b FROM t)", AllAnySubselectKind},
		{"EXISTS (SELECT * FROM t)", ExistsSubselectKind},
		{"(SELECT 1)", SingleRowSubselectKind},
		{"(1)", ParenthesizedExpressionKind},
		{"CAST(1 AS double)", CastExpressionKind},
		{"CASE a WHEN 1 THEN 'one' ELSE 'other' END", CaseExpressionKind},
		{"COALESCE(a, b, c)", CoalesceExpressionKind},
		{"NULLIF(1, 3.0)", NullIfExpressionKind},
		{"@v", VariableExpressionKind},
		{"count(*)", CountAllExpressionKind},
		{"abs(-1)", FunctionInvocationExpressionKind},
		{"t.c", PropertyAccessExpressionKind},
		{"s.Substring(1, 2)", MethodInvocationExpressionKind},
		{"'abc'", LiteralExpressionKind},
		{"2 ** 3 ** 2", PowerExpressionKind},
	}

	for _, c := range cases {
		st := ParseExpression(c.s)
		if len(st.Diagnostics()) != 0 {
			t.Errorf("ParseExpression(%q) got %v", c.s, st.Diagnostics())
			continue
		}
		if k := st.Root().Root.Kind(); k != c.kind {
			t.Errorf("ParseExpression(%q) got %s want %s", c.s, k, c.kind)
		}
		if st.IsQuery() {
			t.Errorf("ParseExpression(%q).IsQuery() got true", c.s)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	st := ParseExpression("1 + 2 * 3")
	be := st.Root().Root.(*BinaryExpression)
	if be.Right.Kind() != MultiplyExpressionKind {
		t.Errorf("1 + 2 * 3: right got %s want MultiplyExpression", be.Right.Kind())
	}

	st = ParseExpression("2 ** 3 ** 2")
	be = st.Root().Root.(*BinaryExpression)
	if be.Right.Kind() != PowerExpressionKind {
		t.Errorf("2 ** 3 ** 2: right got %s want PowerExpression", be.Right.Kind())
	}

	st = ParseExpression("1 - 2 - 3")
	be = st.Root().Root.(*BinaryExpression)
	if be.Left.Kind() != SubExpressionKind {
		t.Errorf("1 - 2 - 3: left got %s want SubExpression", be.Left.Kind())
	}
}

func TestParseQuery(t *testing.T) {
	cases := []struct {
		s    string
		kind Kind
	}{
		{"SELECT 1", SelectQueryKind},
		{"SELECT * FROM t", SelectQueryKind},
		{"SELECT t.* FROM t", SelectQueryKind},
		{"SELECT DISTINCT a AS x, b y FROM t AS u WHERE a > 1 GROUP BY a, b HAVING COUNT(*) > 1",
			SelectQueryKind},
		{"SELECT a FROM t ORDER BY a DESC, 2", OrderedQueryKind},
		{"SELECT a FROM t UNION ALL SELECT b FROM u", UnionQueryKind},
		{"SELECT a FROM t UNION SELECT b FROM u INTERSECT SELECT c FROM v", UnionQueryKind},
		{"SELECT a FROM t EXCEPT SELECT b FROM u", ExceptQueryKind},
		{"(SELECT a FROM t)", ParenthesizedQueryKind},
		{"WITH c AS (SELECT 1 AS x), d (y) AS (SELECT 2) SELECT * FROM c, d",
			CommonTableExpressionQueryKind},
		{"SELECT * FROM t CROSS JOIN u", SelectQueryKind},
		{"SELECT * FROM t INNER JOIN u ON t.a = u.a LEFT OUTER JOIN v ON u.b = v.b",
			SelectQueryKind},
		{"SELECT * FROM t JOIN u ON t.a = u.a RIGHT JOIN v ON 1 = 1 FULL JOIN w ON TRUE",
			SelectQueryKind},
		{"SELECT D FROM (SELECT 'foo') AS D", SelectQueryKind},
		{"SELECT * FROM (t CROSS JOIN u)", SelectQueryKind},
	}

	for _, c := range cases {
		st := ParseQuery(c.s)
		if len(st.Diagnostics()) != 0 {
			t.Errorf("ParseQuery(%q) got %v", c.s, st.Diagnostics())
			continue
		}
		if k := st.Root().Root.Kind(); k != c.kind {
			t.Errorf("ParseQuery(%q) got %s want %s", c.s, k, c.kind)
		}
		if !st.IsQuery() {
			t.Errorf("ParseQuery(%q).IsQuery() got false", c.s)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		s     string
		diags []DiagnosticID
	}{
		{"SELECT", []DiagnosticID{TokenExpected}},
		{"SELECT a FROM", []DiagnosticID{TokenExpected}},
		{"SELECT a FROM t WHERE", []DiagnosticID{TokenExpected}},
		{"SELECT a b c", []DiagnosticID{TokenExpected}},
		{"SELECT CAST(1 double)", []DiagnosticID{TokenExpected}},
		{"SELECT TOP 1 NULL", nil},
		{"SELECT 'abc", []DiagnosticID{UnterminatedString}},
		{"SELECT # FROM t", []DiagnosticID{IllegalInputCharacter, TokenExpected}},
		{"SELECT (1", []DiagnosticID{TokenExpected}},
	}

	for _, c := range cases {
		st := ParseQuery(c.s)
		diags := st.Diagnostics()
		if len(diags) != len(c.diags) {
			t.Errorf("ParseQuery(%q) got %v want %v", c.s, diags, c.diags)
			continue
		}
		for i, id := range c.diags {
			if diags[i].ID != id {
				t.Errorf("ParseQuery(%q)[%d] got %s want %s", c.s, i, diags[i].ID, id)
			}
		}
	}
}

func TestOneDiagnosticPerToken(t *testing.T) {
	cases := []struct {
		s        string
		messages []string
	}{
		{
			s: "SELECT # FROM t",
			messages: []string{
				"illegal input character: '#'",
				"found # but expected identifier",
			},
		},
		{
			s:        "SELECT a FROM t )",
			messages: []string{"found ) but expected end of file"},
		},
		{
			s:        "SELECT a FROM t WHERE )",
			messages: []string{"found ) but expected identifier"},
		},
	}

	for _, c := range cases {
		diags := ParseQuery(c.s).Diagnostics()
		var messages []string
		for _, d := range diags {
			messages = append(messages, d.Message)
		}
		if !reflect.DeepEqual(messages, c.messages) {
			t.Errorf("ParseQuery(%q) got %v want %v", c.s, messages, c.messages)
		}
	}
}

func TestNodeSpan(t *testing.T) {
	s := "SELECT  a + b  FROM t"
	st := ParseQuery(s)
	sq := st.Root().Root.(*SelectQuery)
	esc := sq.Select.Columns.Items[0].(*ExpressionSelectColumn)
	if txt := Text(esc.Expression, s); txt != "a + b" {
		t.Errorf("Text(a + b) got %q", txt)
	}
	if span := NodeSpan(sq.From); span != (Span{Start: 15, Length: 6}) {
		t.Errorf("NodeSpan(FROM t) got %s", span)
	}
	if tok := st.FindToken(10); tok.Text() != "+" {
		t.Errorf("FindToken(10) got %q want +", tok.Text())
	}

	var count int
	Walk(st.Root(), func(n Node) bool {
		if n.Kind() == NameExpressionKind {
			count += 1
		}
		return true
	})
	if count != 2 {
		t.Errorf("Walk got %d names want 2", count)
	}
}
