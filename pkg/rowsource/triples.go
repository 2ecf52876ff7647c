package rowsource

import (
	"context"
	"fmt"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/rasqal-go/sparql/pkg/triplestore"
)

// Triples is the Rowsource for a Bgp algebra node: a nested-loop
// backtracking join of one or more triple patterns against a
// triplestore.Source, restricted to a named graph when an enclosing Graph
// node has pushed one down via SetOrigin.
//
// Results are computed once, on the first pull, and then replayed from a
// buffer on subsequent ReadRow calls; Reset rewinds the replay cursor
// rather than re-querying the store. This keeps the matching algorithm
// itself simple and correct at the cost of full materialization per BGP.
type Triples struct {
	triples []rdfterm.Triple
	source  triplestore.Source
	origin  *rdfterm.Literal

	schema *Schema
	rows   []*Row
	pos    int
	built  bool
}

// NewTriples constructs a Bgp rowsource over a triple pattern list and a
// triples source.
func NewTriples(triples []rdfterm.Triple, source triplestore.Source) *Triples {
	return &Triples{triples: triples, source: source, schema: NewSchema(bgpVars(triples))}
}

func bgpVars(triples []rdfterm.Triple) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range triples {
		for _, v := range t.Variables() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func (t *Triples) EnsureVariables() *Schema    { return t.schema }
func (t *Triples) GetInnerRowsource() Rowsource { return nil }

// SetOrigin scopes matching to one named graph. A variable origin (GRAPH ?g)
// additionally adds ?g to the schema so matches bind it.
func (t *Triples) SetOrigin(origin *rdfterm.Literal) {
	t.origin = origin
	t.built = false
	if origin != nil && origin.IsVariable() {
		if _, ok := t.schema.Index(origin.VarName); !ok {
			t.schema = NewSchema(append(append([]string(nil), t.schema.Vars...), origin.VarName))
		}
	}
}

func (t *Triples) Reset() error {
	t.pos = 0
	return nil
}

func (t *Triples) ReadRow(ctx context.Context) (*Row, error) {
	if !t.built {
		if err := t.build(); err != nil {
			return nil, err
		}
	}
	if t.pos >= len(t.rows) {
		return nil, nil
	}
	row := t.rows[t.pos]
	t.pos++
	return row, nil
}

func (t *Triples) ReadAllRows(ctx context.Context) ([]*Row, error) { return ReadAll(ctx, t) }

// build runs the nested-loop backtracking match across t.triples, one
// pattern at a time, extending a set of partial bindings.
func (t *Triples) build() error {
	partials := []rdfterm.Bindings{{}}
	for _, pat := range t.triples {
		var next []rdfterm.Bindings
		for _, bind := range partials {
			instantiated := pat.Instantiate(bind)
			if t.origin != nil {
				o := *t.origin
				if o.IsVariable() {
					if v, ok := bind[o.VarName]; ok {
						o = v
					}
				}
				instantiated.Origin = &o
			}
			it, err := t.source.Match(instantiated)
			if err != nil {
				return fmt.Errorf("rowsource: matching %s: %w", instantiated, err)
			}
			for {
				match, ok, err := it.Next()
				if err != nil {
					it.Close()
					return err
				}
				if !ok {
					break
				}
				ext, ok := unify(bind, instantiated, match)
				if ok {
					next = append(next, ext)
				}
			}
			it.Close()
		}
		partials = next
		if len(partials) == 0 {
			break
		}
	}

	t.rows = make([]*Row, 0, len(partials))
	for _, bind := range partials {
		row := NewRow(t.schema)
		for name, val := range bind {
			if _, ok := t.schema.Index(name); ok {
				row.Set(name, val)
			}
		}
		row.Offset = len(t.rows)
		t.rows = append(t.rows, row)
	}
	t.built = true
	return nil
}

// unify extends bind with the bindings pat's variable positions take on
// against a concrete matched triple, failing if a variable already bound
// disagrees with the match (can only happen for a variable repeated within
// one triple, e.g. ?x ?p ?x). A variable origin (GRAPH ?g) binds from the
// matched triple's own origin.
func unify(bind rdfterm.Bindings, pat, match rdfterm.Triple) (rdfterm.Bindings, bool) {
	out := bind.Clone()
	pairs := [][2]rdfterm.Literal{{pat.Subject, match.Subject}, {pat.Predicate, match.Predicate}, {pat.Object, match.Object}}
	if pat.Origin != nil && match.Origin != nil {
		pairs = append(pairs, [2]rdfterm.Literal{*pat.Origin, *match.Origin})
	}
	for _, pr := range pairs {
		patTerm, val := pr[0], pr[1]
		if !patTerm.IsVariable() {
			continue
		}
		if existing, ok := out[patTerm.VarName]; ok {
			if !existing.SameTerm(val) {
				return nil, false
			}
			continue
		}
		out[patTerm.VarName] = val
	}
	return out, true
}
