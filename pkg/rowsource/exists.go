package rowsource

import (
	"context"
	"fmt"

	"github.com/rasqal-go/sparql/pkg/compiler"
	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// ExistsEvaluator implements expr.ExistsEvaluator: it compiles an
// EXISTS/NOT EXISTS sub-pattern fresh for every call, joins it against a
// one-row rowsource carrying the outer row's current bindings, and reports
// whether at least one solution survives.
//
// There is deliberately no per-construct short-circuit evaluator (AND over
// group children, OR over union branches, ground-triple probes); the inner
// pattern goes through the ordinary compiler+rowsource pipeline, seeded
// with the outer bindings via a join. Per-construct short-circuiting would
// be a performance optimization over this same semantics, not a different
// result; see DESIGN.md for the trade-off.
//
// Evaluation never touches shared query state: each call builds a private
// Bindings environment, a private algebra tree, and a private rowsource
// tree, so every variable keeps its prior value after the call. Matching
// the whole pattern as one unit is also what gives NOT EXISTS its joint
// semantics: all triples must be consistently bound together, never
// checked triple-by-triple.
type ExistsEvaluator struct {
	Builder *Builder
}

// Eval implements expr.ExistsEvaluator. origin is the active named-graph
// context at the EXISTS call site; it is pushed onto the inner rowsource
// tree so the sub-pattern's BGPs match against the same graph the
// enclosing Filter was scoped to. A GRAPH clause inside the sub-pattern
// still wins for its own subtree, since the nearer push happens at
// construction time.
func (x *ExistsEvaluator) Eval(p interface{}, negated bool, env rdfterm.Bindings, origin *rdfterm.Literal) (bool, error) {
	pat, ok := p.(*pattern.Pattern)
	if !ok {
		return false, fmt.Errorf("rowsource: EXISTS pattern has unexpected type %T", p)
	}

	vt := rdfterm.NewVarTable()
	c := compiler.New(vt)
	alg, err := c.Compile(pat)
	if err != nil {
		return false, fmt.Errorf("rowsource: compiling EXISTS pattern: %w", err)
	}
	inner, err := x.Builder.Build(alg)
	if err != nil {
		return false, fmt.Errorf("rowsource: building EXISTS pattern: %w", err)
	}
	if origin != nil {
		inner.SetOrigin(origin)
	}

	outer := outerRowSource(env)
	joined := NewJoin(outer, inner, nil, x.Builder.Ctx)

	row, err := joined.ReadRow(context.Background())
	if err != nil {
		return false, err
	}
	found := row != nil
	if negated {
		return !found, nil
	}
	return found, nil
}

// outerRowSource wraps an outer row's current bindings as a one-row
// rowsource, so the inner pattern's Join sees them as ordinary join
// partners rather than needing any special-cased substitution path.
func outerRowSource(env rdfterm.Bindings) Rowsource {
	vars := make([]string, 0, len(env))
	for k := range env {
		vars = append(vars, k)
	}
	row := make([]*rdfterm.Literal, len(vars))
	for i, v := range vars {
		val := env[v]
		row[i] = &val
	}
	return NewValues(vars, [][]*rdfterm.Literal{row})
}
