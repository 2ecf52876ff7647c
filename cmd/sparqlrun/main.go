// Command sparqlrun is a minimal driver wiring a World, a Query, and an
// in-memory triplestore together: enough to run one hand-built query and
// print its results, not a full command-line SPARQL client (the parser
// that would turn SPARQL text into a pattern.Pattern lives outside this
// module).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/query"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/rasqal-go/sparql/pkg/triplestore"
)

func main() {
	store := triplestore.NewMemory()
	store.Add(rdfterm.Triple{
		Subject:   rdfterm.URI("http://example.org/alice"),
		Predicate: rdfterm.URI("http://example.org/knows"),
		Object:    rdfterm.URI("http://example.org/bob"),
	})
	store.Add(rdfterm.Triple{
		Subject:   rdfterm.URI("http://example.org/bob"),
		Predicate: rdfterm.URI("http://example.org/knows"),
		Object:    rdfterm.URI("http://example.org/carol"),
	})

	world := query.NewWorld(store, query.Options{BaseURI: "http://example.org/"})
	q := query.NewQuery(world)

	p := pattern.SelectPat(&pattern.SelectModifier{
		Where: pattern.Basic([]rdfterm.Triple{{
			Subject:   rdfterm.VarRef("s"),
			Predicate: rdfterm.URI("http://example.org/knows"),
			Object:    rdfterm.VarRef("o"),
		}}, nil),
		ProjectionVars: []string{"s", "o"},
		Limit:          -1,
	})

	if err := q.Prepare(p); err != nil {
		fmt.Fprintln(os.Stderr, "prepare failed:", err)
		os.Exit(1)
	}

	rows, err := q.Execute(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "execute failed:", err)
		os.Exit(1)
	}
	for _, row := range rows {
		for _, v := range q.Variables() {
			val, ok := row[v]
			if !ok {
				fmt.Printf("?%s=unbound ", v)
				continue
			}
			fmt.Printf("?%s=%s ", v, val.String())
		}
		fmt.Println()
	}
}
