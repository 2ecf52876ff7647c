package rowsource

import (
	"fmt"
	"log"

	"github.com/rasqal-go/sparql/pkg/algebra"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/triplestore"
)

// Builder turns a compiled algebra.Node tree into a Rowsource tree, wiring
// every leaf to the same triples source and every expression-bearing node
// to the same evaluation Context.
type Builder struct {
	Source triplestore.Source
	Ctx    *expr.Context
	Logger *log.Logger
}

// Build recursively lowers an algebra node into its Rowsource.
func (b *Builder) Build(n *algebra.Node) (Rowsource, error) {
	if n == nil || n.IsEmptyBgp() {
		return NewEmpty(), nil
	}
	switch n.Op {
	case algebra.OpBgp:
		return NewTriples(n.Triples, b.Source), nil

	case algebra.OpFilter:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewFilter(n.Conditions, child, b.Ctx), nil

	case algebra.OpJoin:
		left, err := b.Build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.Build(n.Right)
		if err != nil {
			return nil, err
		}
		return NewJoin(left, right, n.Condition, b.Ctx), nil

	case algebra.OpLeftJoin:
		left, err := b.Build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.Build(n.Right)
		if err != nil {
			return nil, err
		}
		return NewLeftJoin(left, right, n.Condition, b.Ctx), nil

	case algebra.OpDiff:
		left, err := b.Build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.Build(n.Right)
		if err != nil {
			return nil, err
		}
		return NewDiff(left, right), nil

	case algebra.OpUnion:
		left, err := b.Build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.Build(n.Right)
		if err != nil {
			return nil, err
		}
		return NewUnion(left, right), nil

	case algebra.OpToList:
		return b.Build(n.Child)

	case algebra.OpOrderBy:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		exprs := make([]*expr.Expr, len(n.OrderConditions))
		desc := make([]bool, len(n.OrderConditions))
		for i, c := range n.OrderConditions {
			exprs[i] = c.Expr
			desc[i] = c.Descending
		}
		return NewOrderBy(exprs, desc, child, b.Ctx), nil

	case algebra.OpProject:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewProject(n.Variables, child), nil

	case algebra.OpDistinct:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewDistinct(child), nil

	case algebra.OpReduced:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewReduced(child), nil

	case algebra.OpSlice:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewSlice(n.Limit, n.Offset, child), nil

	case algebra.OpGraph:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewGraph(n.Origin, child), nil

	case algebra.OpAssign:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewAssign(n.AssignVar, n.AssignExp, child, b.Ctx), nil

	case algebra.OpGroup:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewGroup(n.GroupKeys, child, b.Ctx), nil

	case algebra.OpAggregation:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewAggregation(n.Aggregates, child, b.Ctx), nil

	case algebra.OpHaving:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewHaving(n.Conditions, child, b.Ctx), nil

	case algebra.OpValues:
		return NewValues(n.ValuesVars, n.ValuesRows), nil

	case algebra.OpService:
		child, err := b.Build(n.Child)
		if err != nil {
			return nil, err
		}
		return NewService(n.Origin, n.Silent, child, b.Logger), nil

	default:
		return nil, fmt.Errorf("rowsource: no builder registered for algebra operator %v", n.Op)
	}
}
