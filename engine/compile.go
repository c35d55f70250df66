package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/binding"
	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/symbols"
	"github.com/leftmike/nquery/syntax"
)

var (
	ErrHasDiagnostics = errors.New("engine: compilation has diagnostics")
)

// DiagnosticsError is returned by Compile when the syntax tree or binding reported
// diagnostics.
type DiagnosticsError struct {
	Text        string
	Diagnostics []syntax.Diagnostic
}

func (de *DiagnosticsError) Error() string {
	s := "engine: " + FormatDiagnostic(de.Text, de.Diagnostics[0])
	if len(de.Diagnostics) > 1 {
		s += fmt.Sprintf(" (and %d more)", len(de.Diagnostics)-1)
	}
	return s
}

func (de *DiagnosticsError) Is(err error) bool {
	return err == ErrHasDiagnostics
}

// FormatDiagnostic formats d as line:col: ID: message.
func FormatDiagnostic(text string, d syntax.Diagnostic) string {
	line, col := syntax.Position(text, d.Span.Start)
	return fmt.Sprintf("%d:%d: %s: %s", line, col, d.ID, d.Message)
}

// Compilation is a syntax tree to be bound against a data context. If Flags is nil, the
// default flags are used.
type Compilation struct {
	DataContext *symbols.DataContext
	Syntax      *syntax.SyntaxTree
	Flags       flags.Flags

	id    uuid.UUID
	model *SemanticModel
}

func NewCompilation(dc *symbols.DataContext, tree *syntax.SyntaxTree) *Compilation {
	return &Compilation{
		DataContext: dc,
		Syntax:      tree,
		id:          uuid.New(),
	}
}

func NewQueryCompilation(dc *symbols.DataContext, text string) *Compilation {
	return NewCompilation(dc, syntax.ParseQuery(text))
}

func NewExpressionCompilation(dc *symbols.DataContext, text string) *Compilation {
	return NewCompilation(dc, syntax.ParseExpression(text))
}

func (c *Compilation) ID() uuid.UUID {
	if c.id == uuid.Nil {
		c.id = uuid.New()
	}
	return c.id
}

func (c *Compilation) flags() flags.Flags {
	if c.Flags == nil {
		return flags.Default()
	}
	return c.Flags
}

func (c *Compilation) simplifyFlags() binding.SimplifyFlags {
	flgs := c.flags()
	if !flgs.GetFlag(flags.Rewrite) {
		return 0
	}

	var sf binding.SimplifyFlags
	if flgs.GetFlag(flags.RemoveTrueFilters) {
		sf |= binding.RemoveTrueFilters
	}
	if flgs.GetFlag(flags.SimplifyJoins) {
		sf |= binding.CrossJoinTrueJoins
	}
	if flgs.GetFlag(flags.RemoveIdentityProjects) {
		sf |= binding.RemoveIdentityProjects
	}
	return sf
}

// GetSemanticModel binds the syntax tree the first time it is called.
func (c *Compilation) GetSemanticModel() *SemanticModel {
	if c.model == nil {
		dc := c.DataContext
		if dc == nil {
			dc = symbols.EmptyDataContext()
		}

		bt := binding.Bind(dc, c.Syntax)
		c.model = &SemanticModel{
			compilation: c,
			tree:        bt,
		}
		log.WithFields(log.Fields{
			"compilation": c.ID(),
			"syntax":      len(c.Syntax.Diagnostics()),
			"binding":     len(bt.Diagnostics),
		}).Debug("engine: bound compilation")
	}
	return c.model
}

// Compile binds the syntax tree and prepares it for execution. If there are any
// diagnostics, a *DiagnosticsError is returned.
func (c *Compilation) Compile() (*Query, error) {
	sm := c.GetSemanticModel()
	diags := sm.GetDiagnostics()
	if len(diags) > 0 {
		log.WithFields(log.Fields{
			"compilation": c.ID(),
			"diagnostics": len(diags),
		}).Debug("engine: compile failed")
		return nil, &DiagnosticsError{
			Text:        c.Syntax.Text(),
			Diagnostics: diags,
		}
	}

	q := &Query{
		compilation: c,
	}
	bt := sm.BoundTree()
	if bt.Query != nil {
		q.query = bt.Query
		q.relation = binding.Simplify(bt.Query.Relation, c.simplifyFlags())
	} else {
		q.expression = bt.Expression
	}
	log.WithField("compilation", c.ID()).Debug("engine: compiled")
	return q, nil
}

type ShowPlan struct {
	Name string
	Plan string
}

// ShowPlanSteps returns the plan after binding and after each rewrite which changed it.
// There are no steps for an expression or a compilation with diagnostics.
func (c *Compilation) ShowPlanSteps() []ShowPlan {
	sm := c.GetSemanticModel()
	bt := sm.BoundTree()
	if len(sm.GetDiagnostics()) > 0 || bt.Query == nil {
		return nil
	}

	steps := []ShowPlan{
		{Name: "Bound", Plan: binding.ShowPlan(bt.Query.Relation)},
	}
	br := binding.Simplify(bt.Query.Relation, c.simplifyFlags())
	if br != bt.Query.Relation {
		steps = append(steps, ShowPlan{Name: "Simplified", Plan: binding.ShowPlan(br)})
	}
	return steps
}
