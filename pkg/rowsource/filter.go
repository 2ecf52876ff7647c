package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Filter drops rows for which any condition fails to evaluate true,
// including rows where evaluation errors. Filter's contract is "drop on
// error", distinguishing it from Project/BIND, which propagate an error as
// an unbound value instead.
type Filter struct {
	conditions []*expr.Expr
	child      Rowsource
	ctx        *expr.Context
}

// NewFilter constructs a Filter rowsource.
func NewFilter(conditions []*expr.Expr, child Rowsource, ectx *expr.Context) *Filter {
	return &Filter{conditions: conditions, child: child, ctx: ectx}
}

func (f *Filter) EnsureVariables() *Schema                        { return f.child.EnsureVariables() }
func (f *Filter) GetInnerRowsource() Rowsource                    { return f.child }
func (f *Filter) Reset() error                                    { return f.child.Reset() }
func (f *Filter) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, f) }

// SetOrigin records the active graph context on a private copy of the
// evaluation context, so an EXISTS inside the filter conditions is
// evaluated against the same named graph this Filter is scoped to.
func (f *Filter) SetOrigin(o *rdfterm.Literal) {
	f.child.SetOrigin(o)
	if o != nil {
		ectx := *f.ctx
		ectx.Origin = o
		f.ctx = &ectx
	}
}

func (f *Filter) ReadRow(ctx context.Context) (*Row, error) {
	for {
		row, err := f.child.ReadRow(ctx)
		if err != nil || row == nil {
			return row, err
		}
		env := row.ToBindings()
		ok := true
		for _, cond := range f.conditions {
			v, err := expr.Eval(f.ctx, cond, env)
			if err != nil {
				ok = false
				break
			}
			b, err := expr.EffectiveBooleanValue(v)
			if err != nil || !b {
				ok = false
				break
			}
		}
		if ok {
			return row, nil
		}
	}
}
