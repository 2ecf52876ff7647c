package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Group evaluates its key expressions for every child row and assigns a
// dense, order-of-first-appearance group id, stamped onto each emitted
// row's GroupID field so a following Aggregation rowsource can bucket by
// it without re-evaluating the keys.
type Group struct {
	keys  []*expr.Expr
	child Rowsource
	ctx   *expr.Context

	rows []*Row
	pos  int
}

func NewGroup(keys []*expr.Expr, child Rowsource, ectx *expr.Context) *Group {
	return &Group{keys: keys, child: child, ctx: ectx}
}

func (g *Group) EnsureVariables() *Schema     { return g.child.EnsureVariables() }
func (g *Group) GetInnerRowsource() Rowsource { return g.child }
func (g *Group) SetOrigin(o *rdfterm.Literal) { g.child.SetOrigin(o) }

func (g *Group) Reset() error {
	g.rows = nil
	g.pos = 0
	return g.child.Reset()
}

func (g *Group) materialize(ctx context.Context) error {
	if g.rows != nil {
		return nil
	}
	childRows, err := g.child.ReadAllRows(ctx)
	if err != nil {
		return err
	}
	seen := map[string]int64{}
	var nextID int64
	out := make([]*Row, len(childRows))
	for i, r := range childRows {
		key := groupKey(g.ctx, g.keys, r)
		id, ok := seen[key]
		if !ok {
			id = nextID
			nextID++
			seen[key] = id
		}
		row := r.Clone()
		row.GroupID = id
		row.Offset = i
		out[i] = row
	}
	g.rows = out
	return nil
}

func groupKey(ctx *expr.Context, keys []*expr.Expr, r *Row) string {
	if len(keys) == 0 {
		return "0"
	}
	env := r.ToBindings()
	key := ""
	for _, k := range keys {
		v, err := expr.Eval(ctx, k, env)
		if err != nil {
			key += "<error>|"
			continue
		}
		key += v.String() + "|"
	}
	return key
}

func (g *Group) ReadRow(ctx context.Context) (*Row, error) {
	if err := g.materialize(ctx); err != nil {
		return nil, err
	}
	if g.pos >= len(g.rows) {
		return nil, nil
	}
	row := g.rows[g.pos]
	g.pos++
	return row, nil
}

func (g *Group) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, g) }
