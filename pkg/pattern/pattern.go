// Package pattern models the parsed graph-pattern tree that a SPARQL
// parser hands to the algebra compiler. It is a plain tagged tree, not an
// interface hierarchy, because the compiler needs to switch exhaustively
// on the operator, and a closed sum type means a new operator cannot
// silently fall through a default case.
//
// The parser itself lives outside this module; anything that can produce a
// *Pattern (a generated parser, a test constructing trees by hand) can
// drive the compiler.
package pattern

import (
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Op tags the graph-pattern operator.
type Op int

const (
	OpBasic Op = iota
	OpGroup
	OpOptional
	OpUnion
	OpGraph
	OpFilter
	OpLet
	OpValues
	OpSelect
	OpService
	OpMinus
	OpExists
	OpNotExists
)

// Pattern is the tagged graph-pattern tree node.
type Pattern struct {
	Op Op

	// OpBasic
	Triples      []rdfterm.Triple
	FilterExpr   *expr.Expr // optional filter attached directly to a Basic block

	// OpGroup / OpOptional / OpUnion / OpMinus
	Children []*Pattern

	// OpGraph
	Origin rdfterm.Literal
	Child  *Pattern

	// OpFilter
	Filter *expr.Expr

	// OpLet
	LetVar  string
	LetExpr *expr.Expr

	// OpValues
	Values *ValuesBlock

	// OpSelect
	Select *SelectModifier

	// OpService
	ServiceSilent bool

	// OpExists / OpNotExists
	Inner *Pattern
}

// ValuesBlock is a rectangular VALUES table: a named variable list plus
// rows, with a nil cell meaning "unbound in this row".
type ValuesBlock struct {
	Vars []string
	Rows [][]*rdfterm.Literal
}

// SelectModifier carries the SELECT-level projection and solution-modifier
// stack (GROUP BY, HAVING, ORDER BY, DISTINCT/REDUCED, LIMIT/OFFSET,
// inline VALUES) that the compiler walks in order.
type SelectModifier struct {
	Where            *Pattern
	ProjectionVars    []string // empty slice with Star==true means SELECT *
	Star             bool
	Distinct         bool
	Reduced          bool
	GroupBy          []*expr.Expr
	Having           []*expr.Expr
	OrderBy          []OrderCondition
	Limit            int // -1 == none
	Offset           int // -1 == none
	ProjectionExprs  map[string]*expr.Expr // AS-aliased projection expressions, keyed by output var name
	InlineValues     *ValuesBlock          // inline VALUES clause on the SELECT itself
}

// OrderCondition pairs an ORDER BY expression with its direction.
type OrderCondition struct {
	Expr       *expr.Expr
	Descending bool
}

// Basic constructs an OpBasic pattern, optionally with a filter expression
// the parser attached directly to the triple block.
func Basic(triples []rdfterm.Triple, filter *expr.Expr) *Pattern {
	return &Pattern{Op: OpBasic, Triples: triples, FilterExpr: filter}
}

// Group constructs an OpGroup pattern from ordered children.
func Group(children ...*Pattern) *Pattern { return &Pattern{Op: OpGroup, Children: children} }

// Optional constructs an OpOptional pattern wrapping one or more
// sub-patterns.
func Optional(children ...*Pattern) *Pattern { return &Pattern{Op: OpOptional, Children: children} }

// Union constructs an OpUnion pattern over two or more children.
func Union(children ...*Pattern) *Pattern { return &Pattern{Op: OpUnion, Children: children} }

// Graph constructs an OpGraph pattern.
func Graph(origin rdfterm.Literal, child *Pattern) *Pattern {
	return &Pattern{Op: OpGraph, Origin: origin, Child: child}
}

// FilterPat constructs a standalone OpFilter pattern (a FILTER clause that
// is a direct child of a Group, not attached to a Basic block).
func FilterPat(e *expr.Expr) *Pattern { return &Pattern{Op: OpFilter, Filter: e} }

// Let constructs an OpLet (BIND) pattern.
func Let(varName string, e *expr.Expr) *Pattern {
	return &Pattern{Op: OpLet, LetVar: varName, LetExpr: e}
}

// ValuesPat constructs an OpValues pattern.
func ValuesPat(v *ValuesBlock) *Pattern { return &Pattern{Op: OpValues, Values: v} }

// Minus constructs an OpMinus pattern.
func Minus(children ...*Pattern) *Pattern { return &Pattern{Op: OpMinus, Children: children} }

// ExistsPat constructs an OpExists pattern used in expression position.
func ExistsPat(inner *Pattern) *Pattern { return &Pattern{Op: OpExists, Inner: inner} }

// NotExistsPat constructs an OpNotExists pattern.
func NotExistsPat(inner *Pattern) *Pattern { return &Pattern{Op: OpNotExists, Inner: inner} }

// SelectPat constructs an OpSelect pattern.
func SelectPat(m *SelectModifier) *Pattern { return &Pattern{Op: OpSelect, Select: m} }

// Service constructs an OpService pattern. Federated execution is not
// implemented: the algebra reserves the node, no rowsource calls out.
func Service(origin rdfterm.Literal, silent bool, child *Pattern) *Pattern {
	return &Pattern{Op: OpService, Origin: origin, ServiceSilent: silent, Child: child}
}
