// Package algebra implements the normalized SPARQL algebra tree the
// compiler lowers graph patterns into: a tagged-sum node type plus a
// bit-stable textual rendering used for golden-file testing. The operator
// set follows the SPARQL 1.1 algebra (Join, LeftJoin, Union, Graph, the
// solution-modifier stack) with a BGP leaf.
package algebra

import (
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Op tags the algebra node.
type Op int

const (
	OpBgp Op = iota
	OpFilter
	OpJoin
	OpLeftJoin
	OpDiff // MINUS
	OpUnion
	OpToList
	OpOrderBy
	OpProject
	OpDistinct
	OpReduced
	OpSlice
	OpGraph
	OpAssign // BIND
	OpGroup
	OpAggregation
	OpHaving
	OpValues
	OpService
)

// labels is the operator-name table the textual form uses; order matches
// the Op declaration purely for readability.
var labels = map[Op]string{
	OpBgp:         "BGP",
	OpFilter:      "Filter",
	OpJoin:        "Join",
	OpLeftJoin:    "LeftJoin",
	OpDiff:        "Diff",
	OpUnion:       "Union",
	OpToList:      "ToList",
	OpOrderBy:     "OrderBy",
	OpProject:     "Project",
	OpDistinct:    "Distinct",
	OpReduced:     "Reduced",
	OpSlice:       "Slice",
	OpGraph:       "Graph",
	OpAssign:      "Assignment",
	OpGroup:       "Group",
	OpAggregation: "Aggregate",
	OpHaving:      "Having",
	OpValues:      "Values",
	OpService:     "Service",
}

// Node is the tagged algebra tree node.
type Node struct {
	Op Op

	// OpBgp
	Triples []rdfterm.Triple

	// OpFilter / OpHaving: Conditions holds one or more expressions, all of
	// which must hold (conjunctively) for a row to survive.
	Conditions []*expr.Expr

	// OpJoin / OpLeftJoin / OpDiff / OpUnion: Left/Right children. OpLeftJoin
	// and OpJoin additionally carry a join Condition (nil == no restriction
	// beyond shared-variable equality).
	Left, Right *Node
	Condition   *expr.Expr

	// OpToList / OpOrderBy / OpProject / OpDistinct / OpReduced / OpSlice /
	// OpGraph / OpAssign / OpGroup / OpAggregation / OpHaving / OpService:
	// single child.
	Child *Node

	// OpOrderBy
	OrderConditions []OrderCondition

	// OpProject
	Variables []string

	// OpSlice
	Limit  int64 // -1 == unbounded
	Offset int64 // 0 == none

	// OpGraph / OpService
	Origin  rdfterm.Literal
	Silent  bool // OpService

	// OpAssign (BIND)
	AssignVar string
	AssignExp *expr.Expr

	// OpGroup
	GroupKeys []*expr.Expr

	// OpAggregation: each output variable is bound to Expr evaluated over
	// the rows sharing one Group key.
	Aggregates []AggregateBinding

	// OpValues
	ValuesVars []string
	ValuesRows [][]*rdfterm.Literal
}

// OrderCondition pairs an ORDER BY key expression with its direction, kept
// in algebra form the way the textual form needs it.
type OrderCondition struct {
	Expr       *expr.Expr
	Descending bool
}

// AggregateBinding binds one projected variable to an aggregate expression
// evaluated per-group.
type AggregateBinding struct {
	Var  string
	Expr *expr.Expr
}

// Bgp constructs an OpBgp node. An empty (nil/zero-length) Triples slice
// is the "Z" unit element: it matches one row of zero bindings and is the
// identity for Join, which is what makes it prunable.
func Bgp(triples []rdfterm.Triple) *Node { return &Node{Op: OpBgp, Triples: triples} }

// IsEmptyBgp reports whether n is the empty-BGP unit element.
func (n *Node) IsEmptyBgp() bool { return n != nil && n.Op == OpBgp && len(n.Triples) == 0 }

func Filter(conds []*expr.Expr, child *Node) *Node {
	return &Node{Op: OpFilter, Conditions: conds, Child: child}
}

func Join(left, right *Node, cond *expr.Expr) *Node {
	return &Node{Op: OpJoin, Left: left, Right: right, Condition: cond}
}

func LeftJoin(left, right *Node, cond *expr.Expr) *Node {
	return &Node{Op: OpLeftJoin, Left: left, Right: right, Condition: cond}
}

func Diff(left, right *Node) *Node { return &Node{Op: OpDiff, Left: left, Right: right} }

func Union(left, right *Node) *Node { return &Node{Op: OpUnion, Left: left, Right: right} }

func ToList(child *Node) *Node { return &Node{Op: OpToList, Child: child} }

func OrderBy(conds []OrderCondition, child *Node) *Node {
	return &Node{Op: OpOrderBy, OrderConditions: conds, Child: child}
}

func Project(vars []string, child *Node) *Node {
	return &Node{Op: OpProject, Variables: vars, Child: child}
}

func Distinct(child *Node) *Node { return &Node{Op: OpDistinct, Child: child} }

func Reduced(child *Node) *Node { return &Node{Op: OpReduced, Child: child} }

func Slice(limit, offset int64, child *Node) *Node {
	return &Node{Op: OpSlice, Limit: limit, Offset: offset, Child: child}
}

func Graph(origin rdfterm.Literal, child *Node) *Node {
	return &Node{Op: OpGraph, Origin: origin, Child: child}
}

func Assign(v string, e *expr.Expr, child *Node) *Node {
	return &Node{Op: OpAssign, AssignVar: v, AssignExp: e, Child: child}
}

func Group(keys []*expr.Expr, child *Node) *Node {
	return &Node{Op: OpGroup, GroupKeys: keys, Child: child}
}

func Aggregation(aggs []AggregateBinding, child *Node) *Node {
	return &Node{Op: OpAggregation, Aggregates: aggs, Child: child}
}

func Having(conds []*expr.Expr, child *Node) *Node {
	return &Node{Op: OpHaving, Conditions: conds, Child: child}
}

func Values(vars []string, rows [][]*rdfterm.Literal) *Node {
	return &Node{Op: OpValues, ValuesVars: vars, ValuesRows: rows}
}

func Service(origin rdfterm.Literal, silent bool, child *Node) *Node {
	return &Node{Op: OpService, Origin: origin, Silent: silent, Child: child}
}
