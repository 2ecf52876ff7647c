package rowsource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rasqal-go/sparql/pkg/algebra"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Aggregation consumes its child's rows (a Group rowsource's output when
// GROUP BY was present, or any rowsource otherwise, in which case the
// entire input is treated as one implicit group), buckets them by their
// stamped GroupID, and emits one row per bucket binding each
// AggregateBinding's variable to the aggregate evaluated over that bucket.
type Aggregation struct {
	bindings []algebra.AggregateBinding
	child    Rowsource
	ctx      *expr.Context
	schema   *Schema

	rows []*Row
	pos  int
}

// NewAggregation builds the per-group schema: the child's columns (so the
// GROUP BY key variables survive into the output) followed by one column
// per aggregate binding.
func NewAggregation(bindings []algebra.AggregateBinding, child Rowsource, ectx *expr.Context) *Aggregation {
	a := &Aggregation{bindings: bindings, child: child, ctx: ectx}
	a.computeSchema()
	return a
}

func (a *Aggregation) computeSchema() {
	childSchema := a.child.EnsureVariables()
	vars := append([]string(nil), childSchema.Vars...)
	for _, b := range a.bindings {
		if _, ok := childSchema.Index(b.Var); !ok {
			vars = append(vars, b.Var)
		}
	}
	a.schema = NewSchema(vars)
}

func (a *Aggregation) EnsureVariables() *Schema     { return a.schema }
func (a *Aggregation) GetInnerRowsource() Rowsource { return a.child }

func (a *Aggregation) SetOrigin(o *rdfterm.Literal) {
	a.child.SetOrigin(o)
	a.computeSchema()
}

func (a *Aggregation) Reset() error {
	a.rows = nil
	a.pos = 0
	return a.child.Reset()
}

func (a *Aggregation) materialize(ctx context.Context) error {
	if a.rows != nil {
		return nil
	}
	childRows, err := a.child.ReadAllRows(ctx)
	if err != nil {
		return err
	}

	var order []int64
	buckets := map[int64][]*Row{}
	for _, r := range childRows {
		id := r.GroupID
		if id < 0 {
			id = 0 // no Group below: one implicit bucket
		}
		if _, seen := buckets[id]; !seen {
			order = append(order, id)
		}
		buckets[id] = append(buckets[id], r)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]*Row, 0, len(order))
	for _, id := range order {
		bucket := buckets[id]
		row := NewRow(a.schema)
		// Carry the group's shared bindings (GROUP BY keys in particular)
		// from the bucket's first row into the output row.
		first := bucket[0]
		for i, v := range first.Schema.Vars {
			if first.Bound[i] {
				row.Set(v, first.Values[i])
			}
		}
		if first.GroupID >= 0 {
			row.GroupID = first.GroupID
		}
		for _, b := range a.bindings {
			v, err := evalAggregate(a.ctx, b.Expr, bucket)
			if err != nil {
				return fmt.Errorf("rowsource: aggregate %s: %w", b.Expr.Text(), err)
			}
			row.Set(b.Var, v)
		}
		row.Offset = len(out)
		out = append(out, row)
	}
	a.rows = out
	return nil
}

func (a *Aggregation) ReadRow(ctx context.Context) (*Row, error) {
	if err := a.materialize(ctx); err != nil {
		return nil, err
	}
	if a.pos >= len(a.rows) {
		return nil, nil
	}
	row := a.rows[a.pos]
	a.pos++
	return row, nil
}

func (a *Aggregation) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, a) }

// evalAggregate evaluates one aggregate expression over a bucket of rows.
// e.Args[0] is the per-row expression (nil/absent for COUNT(*)); e.Distinct
// requests duplicate elimination of the per-row values before combining.
func evalAggregate(ctx *expr.Context, e *expr.Expr, bucket []*Row) (rdfterm.Literal, error) {
	var vals []rdfterm.Literal
	countStar := e.Op == expr.OpCount && len(e.Args) == 0
	if !countStar {
		for _, r := range bucket {
			v, err := expr.Eval(ctx, e.Args[0], r.ToBindings())
			if err != nil {
				continue // unbound/error rows are excluded from the aggregate per SPARQL
			}
			vals = append(vals, v)
		}
		if e.Distinct {
			vals = dedupLiterals(vals)
		}
	}

	switch e.Op {
	case expr.OpCount:
		if countStar {
			return rdfterm.Integer(int64(len(bucket))), nil
		}
		return rdfterm.Integer(int64(len(vals))), nil
	case expr.OpSum:
		acc := rdfterm.Integer(0)
		var err error
		for _, v := range vals {
			acc, err = addNumeric(acc, v)
			if err != nil {
				return rdfterm.Literal{}, err
			}
		}
		return acc, nil
	case expr.OpAvg:
		if len(vals) == 0 {
			return rdfterm.Integer(0), nil
		}
		acc := rdfterm.Integer(0)
		var err error
		for _, v := range vals {
			acc, err = addNumeric(acc, v)
			if err != nil {
				return rdfterm.Literal{}, err
			}
		}
		return divideByInt(acc, int64(len(vals)))
	case expr.OpMin:
		if len(vals) == 0 {
			return rdfterm.Literal{}, fmt.Errorf("MIN() over an empty group")
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if expr.OrderCompare(v, m) < 0 {
				m = v
			}
		}
		return m, nil
	case expr.OpMax:
		if len(vals) == 0 {
			return rdfterm.Literal{}, fmt.Errorf("MAX() over an empty group")
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if expr.OrderCompare(v, m) > 0 {
				m = v
			}
		}
		return m, nil
	case expr.OpSample:
		if len(vals) == 0 {
			return rdfterm.Literal{}, fmt.Errorf("SAMPLE() over an empty group")
		}
		return vals[0], nil
	case expr.OpGroupConcat:
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.Str()
		}
		sep := " "
		if e.CastType != "" {
			sep = e.CastType // GROUP_CONCAT's SEPARATOR, smuggled through CastType
		}
		return rdfterm.PlainString(strings.Join(parts, sep), ""), nil
	default:
		return rdfterm.Literal{}, fmt.Errorf("rowsource: unsupported aggregate operator %v", e.Op)
	}
}

func dedupLiterals(vals []rdfterm.Literal) []rdfterm.Literal {
	seen := map[string]bool{}
	var out []rdfterm.Literal
	for _, v := range vals {
		k := v.String()
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

func addNumeric(a, b rdfterm.Literal) (rdfterm.Literal, error) {
	return expr.NumericAdd(a, b)
}

func divideByInt(a rdfterm.Literal, n int64) (rdfterm.Literal, error) {
	return expr.NumericDivideByInt(a, n)
}
