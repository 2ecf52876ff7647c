// Package compiler lowers a parsed graph pattern tree (package pattern)
// into the normalized algebra (package algebra), following the SPARQL 1.1
// query translation: per-operator rules for Basic/Group/Optional/Union/
// Graph/Filter/Let/Values/Select/Service/Minus, the OPTIONAL to LeftJoin
// rewrite with FILTER-as-join-condition consumption, aggregate expression
// extraction into synthetic variables, and empty-BGP ("Z") pruning for
// trivial joins.
package compiler

import (
	"fmt"

	"github.com/rasqal-go/sparql/pkg/algebra"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Compiler holds the state the lowering pass needs beyond the pattern tree
// itself: the query-wide variable table, into which it declares every
// variable it encounters and every synthetic aggregate variable it mints.
type Compiler struct {
	vt     *rdfterm.VarTable
	aggSeq int
}

// New creates a Compiler bound to vt. The same Compiler must be used for an
// entire query so that synthetic variable numbering stays unique within it.
func New(vt *rdfterm.VarTable) *Compiler {
	return &Compiler{vt: vt}
}

// Compile lowers p into an algebra tree.
func (c *Compiler) Compile(p *pattern.Pattern) (*algebra.Node, error) {
	if p == nil {
		return algebra.Bgp(nil), nil
	}
	switch p.Op {
	case pattern.OpBasic:
		return c.compileBasic(p)
	case pattern.OpGroup:
		return c.compileGroup(p.Children)
	case pattern.OpOptional:
		// A bare Optional compiled outside of a parent Group's loop (e.g. a
		// WHERE clause consisting of nothing but OPTIONAL {}) is folded the
		// same way a Group folds an Optional child: starting from Z.
		return c.foldOptional(algebra.Bgp(nil), p)
	case pattern.OpUnion:
		return c.compileUnion(p.Children)
	case pattern.OpGraph:
		child, err := c.Compile(p.Child)
		if err != nil {
			return nil, err
		}
		return algebra.Graph(p.Origin, child), nil
	case pattern.OpFilter:
		return algebra.Filter([]*expr.Expr{p.Filter}, algebra.Bgp(nil)), nil
	case pattern.OpLet:
		return algebra.Assign(p.LetVar, p.LetExpr, algebra.Bgp(nil)), nil
	case pattern.OpValues:
		return algebra.Values(p.Values.Vars, p.Values.Rows), nil
	case pattern.OpSelect:
		return c.compileSelect(p.Select)
	case pattern.OpService:
		child, err := c.Compile(p.Child)
		if err != nil {
			return nil, err
		}
		return algebra.Service(p.Origin, p.ServiceSilent, child), nil
	case pattern.OpMinus:
		return c.compileMinus(p.Children)
	default:
		return nil, fmt.Errorf("compiler: unexpected pattern operator in lowering position: %v", p.Op)
	}
}

// compileBasic lowers an OpBasic block: a BGP, optionally wrapped in a
// Filter when the parser attached one directly to it.
func (c *Compiler) compileBasic(p *pattern.Pattern) (*algebra.Node, error) {
	for _, v := range tripleVars(p.Triples) {
		c.vt.Declare(v, rdfterm.VarNormal)
	}
	bgp := algebra.Bgp(p.Triples)
	if p.FilterExpr != nil {
		c.declareExprVars(p.FilterExpr)
		return algebra.Filter([]*expr.Expr{p.FilterExpr}, bgp), nil
	}
	return bgp, nil
}

// compileGroup lowers OpGroup's children. It accumulates a running algebra
// G (initially the empty BGP, "Z") and a pending filter list FS across the
// children, in order:
//
//  1. a Filter child appends its expression to FS instead of immediately
//     wrapping G, so that it can later be consumed as a join condition
//     by the very next non-filter child (the FILTER-lifting rule);
//  2. an Optional child is special-cased: each of ITS sub-patterns is
//     compiled and folded into G with LeftJoin, consuming an attached
//     Filter as the join condition (foldOptional, below). This is the
//     OPTIONAL to LeftJoin rewrite, and it applies by the CHILD's own
//     tag, not by whether the enclosing pattern happens to be a Group or
//     an Optional itself;
//  3. any other child C is compiled, then Join-folded into G, taking FS
//     (if non-empty) as the join condition and clearing FS;
//  4. after all children are consumed, any FS left over (a trailing
//     FILTER with nothing to attach to) is wrapped around G as a final
//     Filter.
//
// Joining against the "Z" empty-BGP unit element is elided entirely
// (z-node pruning): joining anything with Z returns that thing, wrapped
// in a Filter when a join condition is pending.
func (c *Compiler) compileGroup(children []*pattern.Pattern) (*algebra.Node, error) {
	g := algebra.Bgp(nil)
	var fs []*expr.Expr

	for _, child := range children {
		if child.Op == pattern.OpFilter {
			c.declareExprVars(child.Filter)
			fs = append(fs, child.Filter)
			continue
		}
		if child.Op == pattern.OpOptional {
			var err error
			g, err = c.foldOptional(g, child)
			if err != nil {
				return nil, err
			}
			continue
		}
		compiled, err := c.Compile(child)
		if err != nil {
			return nil, err
		}
		cond := combineConditions(fs)
		fs = nil
		g = joinNodes(g, compiled, cond)
	}

	if len(fs) > 0 {
		g = algebra.Filter(fs, g)
	}
	return g, nil
}

// foldOptional folds every sub-pattern of an OPTIONAL clause into g via
// LeftJoin: each sub-pattern P compiles to A, and if A is itself a
// Filter(expr, A'), the filter is consumed as the join condition,
// LeftJoin(G, A', expr); otherwise the join condition is trivially true.
// A nil Condition on the resulting LeftJoin node already means "no
// restriction" (algebra.go), so the trivially-true case is simply a nil
// condition rather than a constructed boolean-literal expression.
func (c *Compiler) foldOptional(g *algebra.Node, opt *pattern.Pattern) (*algebra.Node, error) {
	for _, sub := range opt.Children {
		a, err := c.Compile(sub)
		if err != nil {
			return nil, err
		}
		if a.Op == algebra.OpFilter && len(a.Conditions) > 0 {
			g = leftJoinNodes(g, a.Child, combineConditions(a.Conditions))
		} else {
			g = leftJoinNodes(g, a, nil)
		}
	}
	return g, nil
}

// joinNodes combines left and right with an inner Join, eliding the
// operation entirely when one side is the empty-BGP unit element (z-node
// pruning); a non-nil condition is then kept as a Filter over the other
// side.
func joinNodes(left, right *algebra.Node, cond *expr.Expr) *algebra.Node {
	if left.IsEmptyBgp() || right.IsEmptyBgp() {
		other := right
		if right.IsEmptyBgp() {
			other = left
		}
		if cond == nil {
			return other
		}
		return algebra.Filter([]*expr.Expr{cond}, other)
	}
	return algebra.Join(left, right, cond)
}

// leftJoinNodes combines left and right with a LeftJoin, applying the same
// z-node pruning rule as joinNodes: a LeftJoin against an empty left side
// with no condition degenerates to the right side outright; with a
// condition the LeftJoin is kept. Pruning is applied inline here
// rather than as a separate tree walk; see DESIGN.md for the
// constant-condition pruning decision.
func leftJoinNodes(left, right *algebra.Node, cond *expr.Expr) *algebra.Node {
	if left.IsEmptyBgp() && cond == nil {
		return right
	}
	if right.IsEmptyBgp() && cond == nil {
		return left
	}
	return algebra.LeftJoin(left, right, cond)
}

func combineConditions(fs []*expr.Expr) *expr.Expr {
	switch len(fs) {
	case 0:
		return nil
	case 1:
		return fs[0]
	default:
		cond := fs[0]
		for _, f := range fs[1:] {
			cond = expr.Call(expr.OpAnd, cond, f)
		}
		return cond
	}
}

// compileUnion left-folds n>=2 children into a chain of binary Union nodes.
func (c *Compiler) compileUnion(children []*pattern.Pattern) (*algebra.Node, error) {
	if len(children) == 0 {
		return algebra.Bgp(nil), nil
	}
	acc, err := c.Compile(children[0])
	if err != nil {
		return nil, err
	}
	for _, ch := range children[1:] {
		n, err := c.Compile(ch)
		if err != nil {
			return nil, err
		}
		acc = algebra.Union(acc, n)
	}
	return acc, nil
}

// compileMinus lowers MINUS to algebra.Diff over the first two children.
func (c *Compiler) compileMinus(children []*pattern.Pattern) (*algebra.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("compiler: MINUS requires exactly two operands, got %d", len(children))
	}
	left, err := c.Compile(children[0])
	if err != nil {
		return nil, err
	}
	right, err := c.Compile(children[1])
	if err != nil {
		return nil, err
	}
	return algebra.Diff(left, right), nil
}

func tripleVars(triples []rdfterm.Triple) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range triples {
		for _, v := range t.Variables() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// declareExprVars walks an expression tree declaring every variable
// reference it finds, so the query's variable table always has a slot for
// anything a FILTER/BIND/ORDER BY/GROUP BY/HAVING expression names even if
// no triple pattern mentions it.
func (c *Compiler) declareExprVars(e *expr.Expr) {
	if e == nil {
		return
	}
	if e.Op == expr.OpLiteral && e.Lit.IsVariable() {
		c.vt.Declare(e.Lit.VarName, rdfterm.VarNormal)
		return
	}
	for _, a := range e.Args {
		c.declareExprVars(a)
	}
}
