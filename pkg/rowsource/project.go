package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Project narrows each child row down to a fixed, ordered variable list:
// SELECT's "Variables([...])" in the textual form.
type Project struct {
	vars   []string
	child  Rowsource
	schema *Schema
}

func NewProject(vars []string, child Rowsource) *Project {
	return &Project{vars: vars, child: child, schema: NewSchema(vars)}
}

func (p *Project) EnsureVariables() *Schema    { return p.schema }
func (p *Project) GetInnerRowsource() Rowsource { return p.child }
func (p *Project) SetOrigin(o *rdfterm.Literal) { p.child.SetOrigin(o) }
func (p *Project) Reset() error                 { return p.child.Reset() }

func (p *Project) ReadRow(ctx context.Context) (*Row, error) {
	row, err := p.child.ReadRow(ctx)
	if err != nil || row == nil {
		return row, err
	}
	out := NewRow(p.schema)
	for _, v := range p.vars {
		if val, ok := row.Get(v); ok {
			out.Set(v, val)
		}
	}
	return out, nil
}

func (p *Project) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, p) }

// Distinct and Reduced both suppress duplicate rows. REDUCED permits, but
// does not require, duplicate elimination; this engine always eliminates,
// which is a conforming choice.
type Distinct struct {
	child Rowsource
	seen  map[string]bool
}

func NewDistinct(child Rowsource) *Distinct { return &Distinct{child: child, seen: map[string]bool{}} }

// NewReduced constructs the rowsource for OpReduced. REDUCED only permits
// duplicate elimination; this engine performs it unconditionally using the
// same machinery as DISTINCT (see the Distinct doc comment).
func NewReduced(child Rowsource) *Distinct { return NewDistinct(child) }

func (d *Distinct) EnsureVariables() *Schema    { return d.child.EnsureVariables() }
func (d *Distinct) GetInnerRowsource() Rowsource { return d.child }
func (d *Distinct) SetOrigin(o *rdfterm.Literal) { d.child.SetOrigin(o) }

func (d *Distinct) Reset() error {
	d.seen = map[string]bool{}
	return d.child.Reset()
}

func (d *Distinct) ReadRow(ctx context.Context) (*Row, error) {
	for {
		row, err := d.child.ReadRow(ctx)
		if err != nil || row == nil {
			return row, err
		}
		key := rowKey(row)
		if d.seen[key] {
			continue
		}
		d.seen[key] = true
		return row, nil
	}
}

func (d *Distinct) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, d) }

func rowKey(r *Row) string {
	key := ""
	for i, v := range r.Schema.Vars {
		key += v + "="
		if r.Bound[i] {
			key += r.Values[i].String()
		}
		key += "|"
	}
	return key
}
