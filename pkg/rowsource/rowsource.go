package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Rowsource is the pull contract every algebra operator implements: read
// rows one at a time, read them all, reset to the start, report the schema
// it produces, expose an inner child for single-child operators, and
// accept a named-graph origin pushed down from an enclosing Graph node.
type Rowsource interface {
	// EnsureVariables returns the schema of rows this Rowsource produces.
	EnsureVariables() *Schema

	// ReadRow returns the next row, or (nil, nil) at end of stream.
	ReadRow(ctx context.Context) (*Row, error)

	// ReadAllRows drains the rowsource from its current position.
	ReadAllRows(ctx context.Context) ([]*Row, error)

	// Reset rewinds the rowsource to produce its first row again.
	Reset() error

	// GetInnerRowsource returns the single child rowsource this one wraps,
	// or nil for a leaf or binary operator.
	GetInnerRowsource() Rowsource

	// SetOrigin pushes a named-graph context down from an enclosing Graph
	// node; a BGP rowsource uses it to restrict pattern matching to one
	// named graph instead of the default graph.
	SetOrigin(origin *rdfterm.Literal)
}

// ReadAll is the default ReadAllRows implementation, which every operator's
// ReadAllRows method delegates to: pull rows until end of stream.
func ReadAll(ctx context.Context, rs Rowsource) ([]*Row, error) {
	var out []*Row
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		row, err := rs.ReadRow(ctx)
		if err != nil {
			return out, err
		}
		if row == nil {
			return out, nil
		}
		out = append(out, row)
	}
}

// Empty is the Rowsource for the empty-BGP unit element ("Z"): it produces
// exactly one row with no bound variables, the identity element for Join.
type Empty struct {
	schema  *Schema
	emitted bool
}

// NewEmpty constructs the unit rowsource.
func NewEmpty() *Empty { return &Empty{schema: NewSchema(nil)} }

func (e *Empty) EnsureVariables() *Schema { return e.schema }

func (e *Empty) ReadRow(ctx context.Context) (*Row, error) {
	if e.emitted {
		return nil, nil
	}
	e.emitted = true
	return NewRow(e.schema), nil
}

func (e *Empty) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, e) }
func (e *Empty) Reset() error                                    { e.emitted = false; return nil }
func (e *Empty) GetInnerRowsource() Rowsource                    { return nil }
func (e *Empty) SetOrigin(origin *rdfterm.Literal)                {}
