package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// LeftJoin implements OPTIONAL: every left row that has at least one
// compatible, condition-satisfying right row is extended by each such
// right row in turn; a left row with none is emitted once, NULL-padded
// over the right side's variables.
type LeftJoin struct {
	left, right Rowsource
	condition   *expr.Expr
	ctx         *expr.Context
	schema      *Schema

	rightRows []*Row
	built     bool

	curLeft    *Row
	rightPos   int
	matchedAny bool
}

func NewLeftJoin(left, right Rowsource, condition *expr.Expr, ectx *expr.Context) *LeftJoin {
	return &LeftJoin{left: left, right: right, condition: condition, ctx: ectx,
		schema: left.EnsureVariables().Merge(right.EnsureVariables())}
}

func (j *LeftJoin) EnsureVariables() *Schema     { return j.schema }
func (j *LeftJoin) GetInnerRowsource() Rowsource { return nil }

func (j *LeftJoin) SetOrigin(o *rdfterm.Literal) {
	j.left.SetOrigin(o)
	j.right.SetOrigin(o)
	j.schema = j.left.EnsureVariables().Merge(j.right.EnsureVariables())
}

func (j *LeftJoin) Reset() error {
	j.built = false
	j.curLeft = nil
	j.rightPos = 0
	j.matchedAny = false
	if err := j.left.Reset(); err != nil {
		return err
	}
	return j.right.Reset()
}

func (j *LeftJoin) ensureRightMaterialized(ctx context.Context) error {
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

func (j *LeftJoin) satisfies(merged *Row) bool {
	if j.condition == nil {
		return true
	}
	v, err := expr.Eval(j.ctx, j.condition, merged.ToBindings())
	if err != nil {
		return false
	}
	ok, err := expr.EffectiveBooleanValue(v)
	return err == nil && ok
}

func (j *LeftJoin) ReadRow(ctx context.Context) (*Row, error) {
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
			j.matchedAny = false
		}
		for j.rightPos < len(j.rightRows) {
			rr := j.rightRows[j.rightPos]
			j.rightPos++
			if !j.curLeft.Compatible(rr) {
				continue
			}
			merged := j.curLeft.Extend(j.schema, rr)
			if !j.satisfies(merged) {
				continue
			}
			j.matchedAny = true
			return merged, nil
		}
		// exhausted right side for this left row
		out := j.curLeft
		matched := j.matchedAny
		j.curLeft = nil
		if !matched {
			return out.Extend(j.schema, NewRow(j.right.EnsureVariables())), nil
		}
	}
}

func (j *LeftJoin) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, j) }
