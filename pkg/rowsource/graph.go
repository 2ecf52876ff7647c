package rowsource

import (
	"context"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Graph pushes a named-graph origin down to every BGP rowsource beneath it
// via SetOrigin, then passes rows through unchanged. The origin is pushed at
// construction time, before any enclosing operator captures this subtree's
// schema, so a variable origin (GRAPH ?g) has already widened the leaf
// schemas by the time a parent Join/Project reads them.
type Graph struct {
	origin rdfterm.Literal
	child  Rowsource
}

func NewGraph(origin rdfterm.Literal, child Rowsource) *Graph {
	g := &Graph{origin: origin, child: child}
	child.SetOrigin(&g.origin)
	return g
}

func (g *Graph) EnsureVariables() *Schema     { return g.child.EnsureVariables() }
func (g *Graph) GetInnerRowsource() Rowsource { return g.child }

// SetOrigin from an enclosing Graph is ignored: the nearer GRAPH clause
// wins for everything beneath it.
func (g *Graph) SetOrigin(o *rdfterm.Literal) {}

func (g *Graph) Reset() error { return g.child.Reset() }

func (g *Graph) ReadRow(ctx context.Context) (*Row, error) {
	return g.child.ReadRow(ctx)
}

func (g *Graph) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, g) }
