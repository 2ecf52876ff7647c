package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Join is an inner join over shared variables (SPARQL's Group Graph
// Pattern conjunction), with an optional extra Condition: the join
// condition a FILTER lifted into the Join node consumed, per the
// compiler's FILTER-lifting rule.
//
// The right-hand side is small enough in practice for the reference engine
// to materialize once per Reset and probe in a nested loop; this is the
// same simplification Triples makes, and keeps Join's logic a direct
// transliteration of the join-compatibility test in Row.Compatible.
type Join struct {
	left, right Rowsource
	condition   *expr.Expr
	ctx         *expr.Context
	schema      *Schema

	rightRows []*Row
	built     bool
	curLeft   *Row
	rightPos  int
}

func NewJoin(left, right Rowsource, condition *expr.Expr, ectx *expr.Context) *Join {
	return &Join{left: left, right: right, condition: condition, ctx: ectx,
		schema: left.EnsureVariables().Merge(right.EnsureVariables())}
}

func (j *Join) EnsureVariables() *Schema     { return j.schema }
func (j *Join) GetInnerRowsource() Rowsource { return nil }

// SetOrigin recomputes the merged schema after pushing: a variable origin
// (GRAPH ?g) widens the leaf schemas below.
func (j *Join) SetOrigin(o *rdfterm.Literal) {
	j.left.SetOrigin(o)
	j.right.SetOrigin(o)
	j.schema = j.left.EnsureVariables().Merge(j.right.EnsureVariables())
}

func (j *Join) Reset() error {
	j.built = false
	j.curLeft = nil
	j.rightPos = 0
	if err := j.left.Reset(); err != nil {
		return err
	}
	return j.right.Reset()
}

func (j *Join) ensureRightMaterialized(ctx context.Context) error {
	if j.built {
		return nil
	}
	rows, err := j.right.ReadAllRows(ctx)
	if err != nil {
		return err
	}
	j.rightRows = rows
	j.built = true
	return nil
}

func (j *Join) ReadRow(ctx context.Context) (*Row, error) {
	if err := j.ensureRightMaterialized(ctx); err != nil {
		return nil, err
	}
	for {
		if j.curLeft == nil {
			row, err := j.left.ReadRow(ctx)
			if err != nil || row == nil {
				return row, err
			}
			j.curLeft = row
			j.rightPos = 0
		}
		for j.rightPos < len(j.rightRows) {
			rr := j.rightRows[j.rightPos]
			j.rightPos++
			if !j.curLeft.Compatible(rr) {
				continue
			}
			merged := j.curLeft.Extend(j.schema, rr)
			if j.condition != nil {
				v, err := expr.Eval(j.ctx, j.condition, merged.ToBindings())
				if err != nil {
					continue
				}
				ok, err := expr.EffectiveBooleanValue(v)
				if err != nil || !ok {
					continue
				}
			}
			return merged, nil
		}
		j.curLeft = nil
	}
}

func (j *Join) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, j) }
