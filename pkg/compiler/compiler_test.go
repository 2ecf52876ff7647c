package compiler

import (
	"strings"
	"testing"

	"github.com/rasqal-go/sparql/pkg/algebra"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

func vt() *rdfterm.VarTable { return rdfterm.NewVarTable() }

func triple(s, p, o string) rdfterm.Triple {
	mk := func(term string) rdfterm.Literal {
		if strings.HasPrefix(term, "?") {
			return rdfterm.VarRef(term[1:])
		}
		return rdfterm.URI(term)
	}
	return rdfterm.Triple{Subject: mk(s), Predicate: mk(p), Object: mk(o)}
}

// OPTIONAL + FILTER must compile to a single LeftJoin whose Condition is
// the filter expression, not a separate Filter node wrapping the optional
// side.
func TestOptionalFilterMergesIntoLeftJoinCondition(t *testing.T) {
	required := pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/p", "?v")}, nil)
	filterExpr := expr.Call(expr.OpGt, expr.Var("w"), expr.Lit(rdfterm.Integer(0)))
	optionalBody := pattern.Group(
		pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/q", "?w")}, nil),
		pattern.FilterPat(filterExpr),
	)
	p := pattern.Group(required, pattern.Optional(optionalBody))

	c := New(vt())
	node, err := c.Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if node.Op != algebra.OpLeftJoin {
		t.Fatalf("top node = %v, want LeftJoin", node.Op)
	}
	if node.Condition == nil {
		t.Fatalf("LeftJoin must carry the filter as its join condition")
	}
	if node.Condition.Op != expr.OpGt {
		t.Errorf("LeftJoin condition op = %v, want OpGt", node.Condition.Op)
	}
	if node.Left.Op != algebra.OpBgp || node.Right.Op != algebra.OpBgp {
		t.Errorf("both sides of the LeftJoin should be plain Bgp nodes, got left=%v right=%v", node.Left.Op, node.Right.Op)
	}
}

// Empty-BGP ("Z") elimination: no Join(Z, X) or Join(X, Z) may remain
// after compilation.
func TestEmptyBgpJoinIsEliminated(t *testing.T) {
	p := pattern.Group(pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/p", "?v")}, nil))
	c := New(vt())
	node, err := c.Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if node.Op != algebra.OpBgp {
		t.Fatalf("a single-BGP group must reduce to the bare Bgp, got %v", node.Op)
	}
}

// A FILTER attached directly to a Basic block wraps it as
// Filter(expr, Bgp(...)).
func TestBasicWithAttachedFilterWraps(t *testing.T) {
	f := expr.Call(expr.OpLt, expr.Var("v"), expr.Lit(rdfterm.Integer(10)))
	p := pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/p", "?v")}, f)
	c := New(vt())
	node, err := c.Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if node.Op != algebra.OpFilter {
		t.Fatalf("node = %v, want Filter", node.Op)
	}
	if node.Child.Op != algebra.OpBgp {
		t.Errorf("Filter's child = %v, want Bgp", node.Child.Op)
	}
}

// UNION over 3+ children left-folds into nested binary Union nodes.
func TestUnionLeftFolds(t *testing.T) {
	a := pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/a", "?v")}, nil)
	b := pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/b", "?v")}, nil)
	cc := pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/c", "?v")}, nil)
	p := pattern.Union(a, b, cc)
	node, err := New(vt()).Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if node.Op != algebra.OpUnion {
		t.Fatalf("top = %v, want Union", node.Op)
	}
	if node.Left.Op != algebra.OpUnion {
		t.Errorf("left-fold should nest the first union on the left, got %v", node.Left.Op)
	}
}

// Structurally-equal aggregate sub-expressions collapse onto one
// synthetic variable.
func TestAggregateExtractionSharesStructurallyEqualAggregates(t *testing.T) {
	countX := expr.Call(expr.OpCount, expr.Var("x"))
	sumExpr := expr.Call(expr.OpPlus, countX.Clone(), countX.Clone())

	modifier := &pattern.SelectModifier{
		Where:          pattern.Basic([]rdfterm.Triple{triple("?s", "?p", "?x")}, nil),
		ProjectionVars: []string{"n"},
		ProjectionExprs: map[string]*expr.Expr{"n": sumExpr},
		GroupBy:        []*expr.Expr{expr.Var("s")},
		Limit:          -1,
		Offset:         -1,
	}
	node, err := New(vt()).compileSelect(modifier)
	if err != nil {
		t.Fatalf("compileSelect: %v", err)
	}

	// Walk down to the Aggregation node.
	agg := node
	for agg != nil && agg.Op != algebra.OpAggregation {
		agg = agg.Child
	}
	if agg == nil {
		t.Fatalf("expected an Aggregation node in the compiled tree")
	}
	if len(agg.Aggregates) != 1 {
		t.Fatalf("expected exactly one synthetic aggregate binding, got %d", len(agg.Aggregates))
	}

	// The rewritten projection expression must reference that single
	// synthetic variable on both sides of the +.
	rewritten := modifier.ProjectionExprs["n"]
	if rewritten.Op != expr.OpPlus {
		t.Fatalf("rewritten projection expr op = %v, want OpPlus", rewritten.Op)
	}
	left, right := rewritten.Args[0], rewritten.Args[1]
	if left.Op != expr.OpLiteral || right.Op != expr.OpLiteral || left.Lit.VarName != right.Lit.VarName {
		t.Errorf("both COUNT(?x) occurrences must rewrite to the same synthetic variable, got %v and %v", left.Lit, right.Lit)
	}
}

// HAVING may not introduce an aggregate absent from SELECT.
func TestHavingCannotIntroduceNewAggregate(t *testing.T) {
	modifier := &pattern.SelectModifier{
		Where:          pattern.Basic([]rdfterm.Triple{triple("?s", "?p", "?x")}, nil),
		ProjectionVars: []string{"s"},
		GroupBy:        []*expr.Expr{expr.Var("s")},
		Having:         []*expr.Expr{expr.Call(expr.OpGt, expr.Call(expr.OpSum, expr.Var("x")), expr.Lit(rdfterm.Integer(1)))},
		Limit:          -1,
		Offset:         -1,
	}
	if _, err := New(vt()).compileSelect(modifier); err == nil {
		t.Errorf("a HAVING clause introducing a new aggregate must be rejected at compile time")
	}
}

// Select's composed pipeline produces the operator stack in the documented
// order (OrderBy wraps Project; Distinct wraps OrderBy; Slice sits outside
// Distinct).
func TestSelectPipelineOrdering(t *testing.T) {
	modifier := &pattern.SelectModifier{
		Where:          pattern.Basic([]rdfterm.Triple{triple("?s", "http://ex/p", "?v")}, nil),
		ProjectionVars: []string{"s"},
		Distinct:       true,
		OrderBy:        []pattern.OrderCondition{{Expr: expr.Var("s")}},
		Limit:          10,
		Offset:         0,
	}
	node, err := New(vt()).compileSelect(modifier)
	if err != nil {
		t.Fatalf("compileSelect: %v", err)
	}
	if node.Op != algebra.OpSlice {
		t.Fatalf("outermost node = %v, want Slice", node.Op)
	}
	if node.Child.Op != algebra.OpDistinct {
		t.Fatalf("Slice's child = %v, want Distinct", node.Child.Op)
	}
	if node.Child.Child.Op != algebra.OpOrderBy {
		t.Fatalf("Distinct's child = %v, want OrderBy", node.Child.Child.Op)
	}
	if node.Child.Child.Child.Op != algebra.OpProject {
		t.Fatalf("OrderBy's child = %v, want Project", node.Child.Child.Child.Op)
	}
}
