package rowsource

import (
	"context"
	"sort"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// OrderBy materializes its child, sorts stably by the order conditions in
// order, and replays the sorted buffer. A row whose key expression errors
// sorts before every row whose key evaluated successfully, per the SPARQL
// ordering rules, so a query can still observe and debug ordering errors
// instead of the row vanishing.
type OrderBy struct {
	conditions []algebraOrderCondition
	child      Rowsource
	ctx        *expr.Context

	rows []*Row
	pos  int
}

// algebraOrderCondition mirrors algebra.OrderCondition.
type algebraOrderCondition struct {
	Expr       *expr.Expr
	Descending bool
}

// NewOrderBy constructs an OrderBy rowsource. The conditions are supplied
// as parallel slices of key expressions and descending flags by the
// builder that walks algebra.Node.
func NewOrderBy(exprs []*expr.Expr, descending []bool, child Rowsource, ectx *expr.Context) *OrderBy {
	conds := make([]algebraOrderCondition, len(exprs))
	for i := range exprs {
		conds[i] = algebraOrderCondition{Expr: exprs[i], Descending: descending[i]}
	}
	return &OrderBy{conditions: conds, child: child, ctx: ectx}
}

func (o *OrderBy) EnsureVariables() *Schema    { return o.child.EnsureVariables() }
func (o *OrderBy) GetInnerRowsource() Rowsource { return o.child }
func (o *OrderBy) SetOrigin(org *rdfterm.Literal) { o.child.SetOrigin(org) }

func (o *OrderBy) Reset() error {
	o.rows = nil
	o.pos = 0
	return o.child.Reset()
}

type orderKey struct {
	row  *Row
	vals []rdfterm.Literal
	errs []bool
}

func (o *OrderBy) materialize(ctx context.Context) error {
	if o.rows != nil {
		return nil
	}
	rows, err := o.child.ReadAllRows(ctx)
	if err != nil {
		return err
	}
	keys := make([]orderKey, len(rows))
	for i, r := range rows {
		env := r.ToBindings()
		k := orderKey{row: r, vals: make([]rdfterm.Literal, len(o.conditions)), errs: make([]bool, len(o.conditions))}
		for j, c := range o.conditions {
			v, err := expr.Eval(o.ctx, c.Expr, env)
			if err != nil {
				k.errs[j] = true
				continue
			}
			k.vals[j] = v
		}
		keys[i] = k
	}
	sort.SliceStable(keys, func(i, j int) bool {
		for c := range o.conditions {
			desc := o.conditions[c].Descending
			switch {
			case keys[i].errs[c] && keys[j].errs[c]:
				continue
			case keys[i].errs[c]:
				return true
			case keys[j].errs[c]:
				return false
			}
			cmp := expr.OrderCompare(keys[i].vals[c], keys[j].vals[c])
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	o.rows = make([]*Row, len(keys))
	for i, k := range keys {
		// Stamp the computed keys onto the row as its parallel order-key
		// array, and re-number offsets in emission order.
		k.row.OrderVals = k.vals
		k.row.OrderErrs = k.errs
		k.row.Offset = i
		o.rows[i] = k.row
	}
	return nil
}

func (o *OrderBy) ReadRow(ctx context.Context) (*Row, error) {
	if err := o.materialize(ctx); err != nil {
		return nil, err
	}
	if o.pos >= len(o.rows) {
		return nil, nil
	}
	row := o.rows[o.pos]
	o.pos++
	return row, nil
}

func (o *OrderBy) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, o) }

// Slice implements LIMIT/OFFSET over its child's row order. limit < 0
// means unbounded.
type Slice struct {
	limit, offset int64
	child         Rowsource
	emitted       int64
	skipped       int64
}

func NewSlice(limit, offset int64, child Rowsource) *Slice {
	return &Slice{limit: limit, offset: offset, child: child}
}

func (s *Slice) EnsureVariables() *Schema    { return s.child.EnsureVariables() }
func (s *Slice) GetInnerRowsource() Rowsource { return s.child }
func (s *Slice) SetOrigin(o *rdfterm.Literal) { s.child.SetOrigin(o) }

func (s *Slice) Reset() error {
	s.emitted = 0
	s.skipped = 0
	return s.child.Reset()
}

func (s *Slice) ReadRow(ctx context.Context) (*Row, error) {
	if s.limit >= 0 && s.emitted >= s.limit {
		return nil, nil
	}
	for s.skipped < s.offset {
		row, err := s.child.ReadRow(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		s.skipped++
	}
	row, err := s.child.ReadRow(ctx)
	if err != nil || row == nil {
		return row, err
	}
	s.emitted++
	return row, nil
}

func (s *Slice) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, s) }
