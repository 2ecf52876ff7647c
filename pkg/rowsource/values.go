package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Values is the rowsource for an inline VALUES block: each table row
// becomes one solution row, with a nil cell left unbound rather than bound
// to some sentinel value.
type Values struct {
	vars   []string
	data   [][]*rdfterm.Literal
	schema *Schema
	pos    int
}

func NewValues(vars []string, data [][]*rdfterm.Literal) *Values {
	return &Values{vars: vars, data: data, schema: NewSchema(vars)}
}

func (v *Values) EnsureVariables() *Schema    { return v.schema }
func (v *Values) GetInnerRowsource() Rowsource { return nil }
func (v *Values) SetOrigin(o *rdfterm.Literal) {}
func (v *Values) Reset() error                 { v.pos = 0; return nil }

func (v *Values) ReadRow(ctx context.Context) (*Row, error) {
	if v.pos >= len(v.data) {
		return nil, nil
	}
	cells := v.data[v.pos]
	v.pos++
	row := NewRow(v.schema)
	for i, c := range cells {
		if c != nil {
			row.Set(v.vars[i], *c)
		}
	}
	return row, nil
}

func (v *Values) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, v) }
