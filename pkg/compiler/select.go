package compiler

import (
	"fmt"
	"sort"

	"github.com/rasqal-go/sparql/pkg/algebra"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/pattern"
)

// compileSelect implements the composed solution-modifier pipeline: WHERE
// is compiled first, then, in this fixed order, GROUP BY, aggregate
// extraction, HAVING, PROJECT, ORDER BY, DISTINCT or REDUCED, SLICE, and
// finally an inline VALUES join if the SELECT carries one.
func (c *Compiler) compileSelect(m *pattern.SelectModifier) (*algebra.Node, error) {
	node, err := c.Compile(m.Where)
	if err != nil {
		return nil, err
	}

	// Collect every expression that might carry an aggregate: projection
	// expressions, HAVING conditions, ORDER BY keys. GROUP BY keys
	// themselves are never aggregates. Projection expressions are visited
	// in projection order (map iteration order would make the synthetic
	// variable numbering non-deterministic across compiles, breaking the
	// compile-twice-equal-algebras property).
	projOrder := orderedProjectionExprNames(m)
	var aggCarriers []*expr.Expr
	for _, name := range projOrder {
		aggCarriers = append(aggCarriers, m.ProjectionExprs[name])
	}
	aggCarriers = append(aggCarriers, m.Having...)
	for _, oc := range m.OrderBy {
		aggCarriers = append(aggCarriers, oc.Expr)
	}

	hasAggregate := len(m.GroupBy) > 0
	for _, e := range aggCarriers {
		if e.ContainsAggregate() {
			hasAggregate = true
			break
		}
	}

	if hasAggregate {
		if len(m.GroupBy) > 0 {
			c.declareGroupKeyVars(m.GroupBy)
			node = algebra.Group(m.GroupBy, node)
		}
		extractor := newAggregateExtractor(c)
		for _, k := range projOrder {
			m.ProjectionExprs[k] = extractor.extract(m.ProjectionExprs[k])
		}
		for i := range m.OrderBy {
			m.OrderBy[i].Expr = extractor.extract(m.OrderBy[i].Expr)
		}
		// HAVING may only reference aggregates already extracted from the
		// projection; check before extracting so a previously-unseen
		// aggregate is reported rather than silently minted a binding of
		// its own.
		for _, e := range m.Having {
			if err := extractor.rejectNewAggregate(e); err != nil {
				return nil, err
			}
		}
		for i, e := range m.Having {
			m.Having[i] = extractor.extract(e)
		}
		if len(extractor.bindings) > 0 {
			node = algebra.Aggregation(extractor.bindings, node)
		}
	}

	if len(m.Having) > 0 {
		node = algebra.Having(m.Having, node)
	}

	projVars, assignments := projectionPlan(m)
	for _, a := range assignments {
		node = algebra.Assign(a.Var, a.Expr, node)
	}
	if !m.Star {
		node = algebra.Project(projVars, node)
	}

	if len(m.OrderBy) > 0 {
		conds := make([]algebra.OrderCondition, len(m.OrderBy))
		for i, oc := range m.OrderBy {
			conds[i] = algebra.OrderCondition{Expr: oc.Expr, Descending: oc.Descending}
		}
		node = algebra.OrderBy(conds, node)
	}

	switch {
	case m.Distinct:
		node = algebra.Distinct(node)
	case m.Reduced:
		node = algebra.Reduced(node)
	}

	if m.Limit >= 0 || m.Offset > 0 {
		limit := int64(-1)
		if m.Limit >= 0 {
			limit = int64(m.Limit)
		}
		offset := int64(0)
		if m.Offset > 0 {
			offset = int64(m.Offset)
		}
		node = algebra.Slice(limit, offset, node)
	}

	if m.InlineValues != nil {
		values := algebra.Values(m.InlineValues.Vars, m.InlineValues.Rows)
		node = algebra.Join(node, values, nil)
	}

	return node, nil
}

func (c *Compiler) declareGroupKeyVars(keys []*expr.Expr) {
	for _, k := range keys {
		c.declareExprVars(k)
	}
}

// projectionPlan splits a SELECT's projection into plain variable names
// (passed straight to algebra.Project) and AS-aliased expressions, which
// must be realized with an Assign node immediately below the Project so
// the projected variable actually has a value to read.
type assignment struct {
	Var  string
	Expr *expr.Expr
}

// orderedProjectionExprNames lists the AS-aliased projection expression
// names in a stable order: projection-list order first, then any remaining
// aliases sorted by name.
func orderedProjectionExprNames(m *pattern.SelectModifier) []string {
	var out []string
	for _, v := range m.ProjectionVars {
		if _, ok := m.ProjectionExprs[v]; ok {
			out = append(out, v)
		}
	}
	var extra []string
	for name := range m.ProjectionExprs {
		seen := false
		for _, v := range out {
			if v == name {
				seen = true
				break
			}
		}
		if !seen {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func projectionPlan(m *pattern.SelectModifier) ([]string, []assignment) {
	if m.Star {
		return nil, nil
	}
	vars := append([]string(nil), m.ProjectionVars...)
	var assigns []assignment
	// Deterministic order for aliased expressions not already covered by
	// ProjectionVars, sorted by name so the algebra text form is stable.
	var extra []string
	for name := range m.ProjectionExprs {
		found := false
		for _, v := range vars {
			if v == name {
				found = true
				break
			}
		}
		if !found {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	vars = append(vars, extra...)
	for _, v := range vars {
		if e, ok := m.ProjectionExprs[v]; ok {
			assigns = append(assigns, assignment{Var: v, Expr: e})
		}
	}
	return vars, assigns
}

// aggregateExtractor implements the aggregate-extraction algorithm: every
// distinct aggregate sub-expression (by structural key)
// is replaced in place with a reference to one freshly minted "$$agg$$N"
// variable, and an AggregateBinding is recorded for it. Callers run
// projection and ORDER BY extraction first, then rejectNewAggregate over
// every HAVING expression: an aggregate appearing in HAVING that was not
// already seen is a compile error, never a fresh binding.
type aggregateExtractor struct {
	c        *Compiler
	seen     map[string]string // structural key -> minted variable name
	bindings []algebra.AggregateBinding
}

func newAggregateExtractor(c *Compiler) *aggregateExtractor {
	return &aggregateExtractor{c: c, seen: map[string]string{}}
}

// rejectNewAggregate walks e looking for an aggregate sub-expression whose
// structural key was not already seen while extracting the projection.
// It does not mutate e or x.
func (x *aggregateExtractor) rejectNewAggregate(e *expr.Expr) error {
	if e == nil {
		return nil
	}
	if e.Op.IsAggregate() {
		if _, ok := x.seen[e.StructuralKey()]; !ok {
			return fmt.Errorf("compiler: found new aggregate expression in HAVING")
		}
		return nil
	}
	for _, a := range e.Args {
		if err := x.rejectNewAggregate(a); err != nil {
			return err
		}
	}
	return nil
}

func (x *aggregateExtractor) extract(e *expr.Expr) *expr.Expr {
	if e == nil {
		return nil
	}
	if e.Op.IsAggregate() {
		key := e.StructuralKey()
		name, ok := x.seen[key]
		if !ok {
			name = fmt.Sprintf("$$agg$$%d", x.c.aggSeq)
			x.c.aggSeq++
			x.c.vt.DeclareAnonymous(name)
			x.seen[key] = name
			x.bindings = append(x.bindings, algebra.AggregateBinding{Var: name, Expr: e})
		}
		return expr.Var(name)
	}
	if len(e.Args) == 0 {
		return e
	}
	cp := e.Clone()
	for i, a := range cp.Args {
		cp.Args[i] = x.extract(a)
	}
	return cp
}
