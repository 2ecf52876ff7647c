package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/rasqal-go/sparql/pkg/triplestore"
)

func v(name string) rdfterm.Literal { return rdfterm.VarRef(name) }
func u(uri string) rdfterm.Literal  { return rdfterm.URI(uri) }

func newTestWorld(triples ...rdfterm.Triple) *World {
	store := triplestore.NewMemory()
	for _, t := range triples {
		store.Add(t)
	}
	return NewWorld(store, Options{})
}

func bindingsSet(rows []rdfterm.Bindings, varName string) map[string]bool {
	out := map[string]bool{}
	for _, r := range rows {
		if val, ok := r[varName]; ok {
			out[val.Str()] = true
		}
	}
	return out
}

func TestBasicBGPWithArithmeticFilter(t *testing.T) {
	w := newTestWorld(
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(3)},
		rdfterm.Triple{Subject: u("http://ex/b"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(9)},
		rdfterm.Triple{Subject: u("http://ex/c"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(11)},
	)

	filterExpr := expr.Call(expr.OpLt, expr.Call(expr.OpPlus, expr.Var("v"), expr.Lit(rdfterm.Integer(1))), expr.Lit(rdfterm.Integer(10)))
	where := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("v")}}, filterExpr)
	sel := pattern.SelectPat(&pattern.SelectModifier{
		Where: where, ProjectionVars: []string{"s"}, Limit: -1, Offset: -1,
	})

	q := NewQuery(w)
	require.NoError(t, q.Prepare(sel))
	rows, err := q.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"http://ex/a": true}, bindingsSet(rows, "s"),
		"only ?s=<http://ex/a> satisfies ?v + 1 < 10")
}

// EXISTS re-evaluated per outer row must leave no observable trace on any
// other row's bindings, and every row here satisfies its own EXISTS.
func TestExistsPerRowReentrancy(t *testing.T) {
	w := newTestWorld(
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(1)},
		rdfterm.Triple{Subject: u("http://ex/b"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(2)},
	)

	inner := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("v")}}, nil)
	existsExpr := &expr.Expr{Op: expr.OpExists, ExistsPattern: inner}
	where := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("v")}}, existsExpr)
	sel := pattern.SelectPat(&pattern.SelectModifier{
		Where: where, ProjectionVars: []string{"s"}, Limit: -1, Offset: -1,
	})

	q := NewQuery(w)
	require.NoError(t, q.Prepare(sel))
	rows, err := q.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2, "every row should satisfy its own EXISTS")
}

// NOT EXISTS must check the inner pattern jointly (all triples
// consistently bound), not triple-by-triple.
func TestNotExistsMatchesPatternJointly(t *testing.T) {
	w := newTestWorld(
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(1)},
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/q"), Object: rdfterm.Integer(2)},
		rdfterm.Triple{Subject: u("http://ex/b"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(1)},
	)

	inner := pattern.Basic([]rdfterm.Triple{
		{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("x")},
		{Subject: v("s"), Predicate: u("http://ex/q"), Object: v("x")},
	}, nil)
	notExistsExpr := &expr.Expr{Op: expr.OpNotExists, ExistsPattern: inner}
	where := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("v")}}, notExistsExpr)
	sel := pattern.SelectPat(&pattern.SelectModifier{
		Where: where, ProjectionVars: []string{"s"}, Limit: -1, Offset: -1,
	})

	q := NewQuery(w)
	require.NoError(t, q.Prepare(sel))
	rows, err := q.Execute(context.Background())
	require.NoError(t, err)
	got := bindingsSet(rows, "s")
	assert.True(t, got["http://ex/a"], "no joint ?x match exists for <a> (1 vs 2)")
	assert.True(t, got["http://ex/b"], "<b> has no <q> triple at all")
}

// SELECT DISTINCT over data with duplicate ?o values for distinct
// subjects must collapse them to one row.
func TestSelectDistinctEliminatesDuplicates(t *testing.T) {
	w := newTestWorld(
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/likes"), Object: u("http://ex/x")},
		rdfterm.Triple{Subject: u("http://ex/b"), Predicate: u("http://ex/likes"), Object: u("http://ex/x")},
	)
	where := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/likes"), Object: v("o")}}, nil)
	sel := pattern.SelectPat(&pattern.SelectModifier{
		Where: where, ProjectionVars: []string{"o"}, Distinct: true, Limit: -1, Offset: -1,
	})

	q := NewQuery(w)
	require.NoError(t, q.Prepare(sel))
	rows, err := q.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// End-to-end GROUP BY + aggregate: one output row per group, carrying both
// the group key and the aggregated value.
func TestGroupByAggregateEndToEnd(t *testing.T) {
	w := newTestWorld(
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(1)},
		rdfterm.Triple{Subject: u("http://ex/a"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(2)},
		rdfterm.Triple{Subject: u("http://ex/b"), Predicate: u("http://ex/p"), Object: rdfterm.Integer(5)},
	)
	where := pattern.Basic([]rdfterm.Triple{{Subject: v("s"), Predicate: u("http://ex/p"), Object: v("x")}}, nil)
	sel := pattern.SelectPat(&pattern.SelectModifier{
		Where:           where,
		ProjectionVars:  []string{"s", "total"},
		ProjectionExprs: map[string]*expr.Expr{"total": expr.Call(expr.OpSum, expr.Var("x"))},
		GroupBy:         []*expr.Expr{expr.Var("s")},
		Limit:           -1, Offset: -1,
	})

	q := NewQuery(w)
	require.NoError(t, q.Prepare(sel))
	rows, err := q.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	totals := map[string]int64{}
	for _, r := range rows {
		s, ok := r["s"]
		require.True(t, ok, "group key ?s must be bound in aggregate output, got %v", r)
		tot, ok := r["total"]
		require.True(t, ok, "?total must be bound, got %v", r)
		totals[s.Str()] = tot.Int
	}
	assert.Equal(t, map[string]int64{"http://ex/a": 3, "http://ex/b": 5}, totals)
}

// A failed Prepare must permanently fail the query.
func TestPrepareFailureMarksQueryFailed(t *testing.T) {
	w := newTestWorld()
	modifier := &pattern.SelectModifier{
		Where:  pattern.Basic(nil, nil),
		Having: []*expr.Expr{expr.Call(expr.OpSum, expr.Var("x"))}, // new aggregate, no projection to extract from
		Limit:  -1, Offset: -1,
	}
	sel := pattern.SelectPat(modifier)
	q := NewQuery(w)
	require.Error(t, q.Prepare(sel), "a HAVING clause introducing a new aggregate must fail Prepare")

	_, execErr := q.Execute(context.Background())
	assert.Error(t, execErr, "Execute on a failed query must keep failing, not silently succeed")
}
