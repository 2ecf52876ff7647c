package expr

import (
	"math/rand"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// ExistsEvaluator evaluates an EXISTS/NOT EXISTS sub-pattern against the
// current outer-row environment and active graph origin. It is implemented
// by package rowsource, which is free to type-assert Expr.ExistsPattern
// back to *pattern.Pattern; package expr never needs to know the concrete
// type.
type ExistsEvaluator interface {
	Eval(p interface{}, negated bool, env rdfterm.Bindings, origin *rdfterm.Literal) (bool, error)
}

// Context is the evaluation context threaded through every call to Eval:
// the base URI for URI()/IRI() resolution, the EXISTS callback, a
// blank-node id source for BNODE(), a query-fixed "now" for NOW(), and a
// seeded RNG for RAND().
type Context struct {
	BaseURI string
	Exists  ExistsEvaluator

	// Origin is the active named-graph context, pushed by a Filter sitting
	// under a GRAPH clause so EXISTS sub-evaluation stays scoped to the
	// same graph; nil means the default graph.
	Origin *rdfterm.Literal

	NewBlankID func() string
	Rand       *rand.Rand
	Now        rdfterm.DateTime
}

// NewContext builds a Context with the given base URI and EXISTS evaluator,
// wiring the caller-supplied blank node id generator and an RNG seeded with
// seed.
func NewContext(baseURI string, exists ExistsEvaluator, blankGen func() string, seed int64, now rdfterm.DateTime) *Context {
	return &Context{
		BaseURI:    baseURI,
		Exists:     exists,
		NewBlankID: blankGen,
		Rand:       rand.New(rand.NewSource(seed)),
		Now:        now,
	}
}
