package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Assign implements BIND(expr AS ?var). Unlike Filter, an evaluation error
// here does not drop the row; the variable is simply left unbound,
// matching SPARQL's BIND error-handling rule.
type Assign struct {
	varName string
	expr    *expr.Expr
	child   Rowsource
	ctx     *expr.Context
	schema  *Schema
}

func NewAssign(varName string, e *expr.Expr, child Rowsource, ectx *expr.Context) *Assign {
	a := &Assign{varName: varName, expr: e, child: child, ctx: ectx}
	a.computeSchema()
	return a
}

func (a *Assign) computeSchema() {
	vars := a.child.EnsureVariables().Vars
	hasVar := false
	for _, v := range vars {
		if v == a.varName {
			hasVar = true
			break
		}
	}
	if !hasVar {
		vars = append(append([]string(nil), vars...), a.varName)
	}
	a.schema = NewSchema(vars)
}

func (a *Assign) EnsureVariables() *Schema     { return a.schema }
func (a *Assign) GetInnerRowsource() Rowsource { return a.child }

func (a *Assign) SetOrigin(o *rdfterm.Literal) {
	a.child.SetOrigin(o)
	a.computeSchema()
	if o != nil {
		ectx := *a.ctx
		ectx.Origin = o
		a.ctx = &ectx
	}
}

func (a *Assign) Reset() error { return a.child.Reset() }

func (a *Assign) ReadRow(ctx context.Context) (*Row, error) {
	row, err := a.child.ReadRow(ctx)
	if err != nil || row == nil {
		return row, err
	}
	out := NewRow(a.schema)
	for i, v := range row.Schema.Vars {
		if row.Bound[i] {
			out.Set(v, row.Values[i])
		}
	}
	v, err := expr.Eval(a.ctx, a.expr, row.ToBindings())
	if err == nil {
		out.Set(a.varName, v)
	}
	return out, nil
}

func (a *Assign) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, a) }
