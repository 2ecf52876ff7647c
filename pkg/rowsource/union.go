package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Union concatenates its two children's rows over their merged schema,
// NULL-padding whichever side doesn't bind a given variable.
type Union struct {
	left, right Rowsource
	schema      *Schema
	onRight     bool
}

func NewUnion(left, right Rowsource) *Union {
	return &Union{left: left, right: right, schema: left.EnsureVariables().Merge(right.EnsureVariables())}
}

func (u *Union) EnsureVariables() *Schema     { return u.schema }
func (u *Union) GetInnerRowsource() Rowsource { return nil }

func (u *Union) SetOrigin(o *rdfterm.Literal) {
	u.left.SetOrigin(o)
	u.right.SetOrigin(o)
	u.schema = u.left.EnsureVariables().Merge(u.right.EnsureVariables())
}

func (u *Union) Reset() error {
	u.onRight = false
	if err := u.left.Reset(); err != nil {
		return err
	}
	return u.right.Reset()
}

func (u *Union) ReadRow(ctx context.Context) (*Row, error) {
	if !u.onRight {
		row, err := u.left.ReadRow(ctx)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return row.Extend(u.schema, NewRow(NewSchema(nil))), nil
		}
		u.onRight = true
	}
	row, err := u.right.ReadRow(ctx)
	if err != nil || row == nil {
		return row, err
	}
	return row.Extend(u.schema, NewRow(NewSchema(nil))), nil
}

func (u *Union) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, u) }

// Diff implements MINUS: left rows that have no compatible counterpart in
// right, over the join of variables they share. A row that shares no
// variables at all with any right row is never excluded, per SPARQL's
// MINUS semantics (disjoint domains never exclude).
type Diff struct {
	left, right Rowsource
	rightRows   []*Row
	built       bool
}

func NewDiff(left, right Rowsource) *Diff { return &Diff{left: left, right: right} }

func (d *Diff) EnsureVariables() *Schema    { return d.left.EnsureVariables() }
func (d *Diff) GetInnerRowsource() Rowsource { return nil }
func (d *Diff) SetOrigin(o *rdfterm.Literal) { d.left.SetOrigin(o); d.right.SetOrigin(o) }

func (d *Diff) Reset() error {
	d.built = false
	if err := d.left.Reset(); err != nil {
		return err
	}
	return d.right.Reset()
}

func (d *Diff) ensureRight(ctx context.Context) error {
	if d.built {
		return nil
	}
	rows, err := d.right.ReadAllRows(ctx)
	if err != nil {
		return err
	}
	d.rightRows = rows
	d.built = true
	return nil
}

func (d *Diff) ReadRow(ctx context.Context) (*Row, error) {
	if err := d.ensureRight(ctx); err != nil {
		return nil, err
	}
	for {
		row, err := d.left.ReadRow(ctx)
		if err != nil || row == nil {
			return row, err
		}
		excluded := false
		for _, rr := range d.rightRows {
			if sharesVariable(row, rr) && row.Compatible(rr) {
				excluded = true
				break
			}
		}
		if !excluded {
			return row, nil
		}
	}
}

func sharesVariable(a, b *Row) bool {
	for i, v := range a.Schema.Vars {
		if !a.Bound[i] {
			continue
		}
		if _, ok := b.Get(v); ok {
			return true
		}
	}
	return false
}

func (d *Diff) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, d) }
