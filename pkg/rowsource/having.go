package rowsource

import "github.com/rasqal-go/sparql/pkg/expr"

// Having reuses Filter's exact drop-on-error semantics: HAVING is
// evaluated after Aggregation the same way FILTER is evaluated after a
// BGP. The only difference is where it sits in the pipeline, not how it
// decides to keep or drop a row.
func NewHaving(conditions []*expr.Expr, child Rowsource, ectx *expr.Context) *Filter {
	return NewFilter(conditions, child, ectx)
}
