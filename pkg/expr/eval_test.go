package expr

import (
	"testing"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

func testContext() *Context {
	return NewContext("http://example.org/base", nil, func() string { return "b0" }, 1,
		rdfterm.DateTime{Year: 2024, Month: 1, Day: 1})
}

func mustEval(t *testing.T, e *Expr, env rdfterm.Bindings) rdfterm.Literal {
	t.Helper()
	v, err := Eval(testContext(), e, env)
	if err != nil {
		t.Fatalf("Eval(%s) returned error: %v", e.Text(), err)
	}
	return v
}

// Three-valued AND: an erroring side combined with a `false` side must
// resolve to false, not propagate the error.
func TestAndThreeValuedLogic(t *testing.T) {
	errExpr := Var("missing")
	falseExpr := Lit(rdfterm.Boolean(false))
	trueExpr := Lit(rdfterm.Boolean(true))

	got := mustEval(t, Call(OpAnd, errExpr, falseExpr), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindBoolean || got.Bool != false {
		t.Errorf("error AND false = %v, want false", got)
	}

	if _, err := Eval(testContext(), Call(OpAnd, errExpr, trueExpr), rdfterm.Bindings{}); err == nil {
		t.Errorf("error AND true should propagate an error")
	}
}

func TestOrThreeValuedLogic(t *testing.T) {
	errExpr := Var("missing")
	falseExpr := Lit(rdfterm.Boolean(false))
	trueExpr := Lit(rdfterm.Boolean(true))

	got := mustEval(t, Call(OpOr, errExpr, trueExpr), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindBoolean || got.Bool != true {
		t.Errorf("error OR true = %v, want true", got)
	}

	if _, err := Eval(testContext(), Call(OpOr, errExpr, falseExpr), rdfterm.Bindings{}); err == nil {
		t.Errorf("error OR false should propagate an error")
	}
}

// BOUND must inspect the variable slot without the normal early
// flattening, so an unbound variable never errors BOUND itself.
func TestBoundDoesNotFlattenItsArgument(t *testing.T) {
	got := mustEval(t, Call(OpBound, Var("v")), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindBoolean || got.Bool != false {
		t.Errorf("BOUND(?unbound) = %v, want false", got)
	}
	got = mustEval(t, Call(OpBound, Var("v")), rdfterm.Bindings{"v": rdfterm.Integer(1)})
	if got.Kind != rdfterm.KindBoolean || got.Bool != true {
		t.Errorf("BOUND(?bound) = %v, want true", got)
	}
}

func TestComparisonNumericPromotion(t *testing.T) {
	got := mustEval(t, Call(OpEq, Lit(rdfterm.Integer(1)), Lit(rdfterm.Double(1.0))), rdfterm.Bindings{})
	if !got.Bool {
		t.Errorf("1 = 1.0e0 should hold under numeric promotion")
	}
}

func TestComparisonPlainStringVsTypedIntegerIsAnError(t *testing.T) {
	a := Lit(rdfterm.TypedString("1", rdfterm.XSDInteger))
	b := Lit(rdfterm.PlainString("1", ""))
	if _, err := Eval(testContext(), Call(OpEq, a, b), rdfterm.Bindings{}); err == nil {
		t.Errorf("comparing a typed integer literal to a plain string must error, not silently coerce")
	}
}

func TestSameTermStricterThanEquals(t *testing.T) {
	a := Lit(rdfterm.Integer(1))
	b := Lit(rdfterm.TypedString("1", rdfterm.XSDInteger))
	got := mustEval(t, Call(OpSameTerm, a, b), rdfterm.Bindings{})
	if got.Bool {
		t.Errorf("sameTerm(1, \"1\"^^xsd:integer) must be false despite value equality")
	}
}

func TestStrDiscardsDatatype(t *testing.T) {
	got := mustEval(t, Call(OpStr, Lit(rdfterm.TypedString("42", rdfterm.XSDInteger))), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindPlainString || got.Lexical != "42" {
		t.Errorf("STR() = %v, want plain string \"42\"", got)
	}
}

func TestCoalesceReturnsFirstSuccess(t *testing.T) {
	got := mustEval(t, Call(OpCoalesce, Var("missing"), Lit(rdfterm.Integer(7))), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindInteger || got.Int != 7 {
		t.Errorf("COALESCE(?missing, 7) = %v, want 7", got)
	}
}

func TestCoalesceAllErrorsIsError(t *testing.T) {
	if _, err := Eval(testContext(), Call(OpCoalesce, Var("a"), Var("b")), rdfterm.Bindings{}); err == nil {
		t.Errorf("COALESCE() with every argument erroring must itself error")
	}
}

func TestInShortCircuitsOnFirstMatch(t *testing.T) {
	got := mustEval(t, Call(OpIn, Lit(rdfterm.Integer(2)), Lit(rdfterm.Integer(1)), Lit(rdfterm.Integer(2))), rdfterm.Bindings{})
	if !got.Bool {
		t.Errorf("2 IN (1, 2) should be true")
	}
	got = mustEval(t, Call(OpNotIn, Lit(rdfterm.Integer(3)), Lit(rdfterm.Integer(1)), Lit(rdfterm.Integer(2))), rdfterm.Bindings{})
	if !got.Bool {
		t.Errorf("3 NOT IN (1, 2) should be true")
	}
}

func TestIfEvaluatesExactlyOneBranch(t *testing.T) {
	got := mustEval(t, Call(OpIf, Lit(rdfterm.Boolean(true)), Lit(rdfterm.Integer(1)), Var("boom")), rdfterm.Bindings{})
	if got.Int != 1 {
		t.Errorf("IF(true, 1, ?boom) = %v, want 1 (and must not evaluate ?boom)", got)
	}
}

// LANGMATCHES per RFC 4647 basic filtering.
func TestLangMatches(t *testing.T) {
	cases := []struct {
		tag, rng string
		want     bool
	}{
		{"en-US", "*", true},
		{"en-US", "en", true},
		{"en", "en-US", false},
		{"", "*", false},
		{"en-US", "EN", true},
	}
	for _, c := range cases {
		got := mustEval(t, Call(OpLangMatches, Lit(rdfterm.PlainString(c.tag, "")), Lit(rdfterm.PlainString(c.rng, ""))), rdfterm.Bindings{})
		if got.Bool != c.want {
			t.Errorf("langMatches(%q, %q) = %v, want %v", c.tag, c.rng, got.Bool, c.want)
		}
	}
}

func TestAggregateInScalarContextIsAnError(t *testing.T) {
	_, err := Eval(testContext(), Call(OpCount, Var("x")), rdfterm.Bindings{"x": rdfterm.Integer(1)})
	if err == nil {
		t.Errorf("an aggregate evaluated outside an Aggregation rowsource must error")
	}
}

func TestArithmeticIntegerPromotion(t *testing.T) {
	got := mustEval(t, Call(OpPlus, Lit(rdfterm.Integer(9)), Lit(rdfterm.Integer(1))), rdfterm.Bindings{})
	if got.Kind != rdfterm.KindInteger || got.Int != 10 {
		t.Errorf("9 + 1 = %v, want integer 10", got)
	}
}

func TestFlatteningInvariantResolvesVariableReferences(t *testing.T) {
	got := mustEval(t, Call(OpPlus, Var("v"), Lit(rdfterm.Integer(1))), rdfterm.Bindings{"v": rdfterm.Integer(3)})
	if got.Int != 4 {
		t.Errorf("?v + 1 with ?v=3 = %v, want 4", got)
	}
}
