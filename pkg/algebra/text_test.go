package algebra

import (
	"strings"
	"testing"

	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

func TestTextEmptyBgpRendersZ(t *testing.T) {
	n := Bgp(nil)
	if got := n.Text(); got != "Z" {
		t.Errorf("Text() of empty Bgp = %q, want %q", got, "Z")
	}
}

func TestTextNilChildRendersZ(t *testing.T) {
	n := Distinct(nil)
	if !strings.Contains(n.Text(), "Z") {
		t.Errorf("Text() with a nil child must render the child as Z, got %q", n.Text())
	}
}

func TestTextBgpListsTriples(t *testing.T) {
	n := Bgp([]rdfterm.Triple{
		{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.VarRef("o")},
	})
	got := n.Text()
	if got != "BGP(?s <http://ex/p> ?o)" {
		t.Errorf("BGP text = %q, want %q", got, "BGP(?s <http://ex/p> ?o)")
	}
}

// Byte-for-byte rendering of the textual algebra for
// SELECT ?s WHERE { ?s <p> ?v . FILTER(?v + 1 < 10) }.
func TestTextProjectFilterBGPExactRendering(t *testing.T) {
	cond := expr.Call(expr.OpLt,
		expr.Call(expr.OpPlus, expr.Var("v"), expr.Lit(rdfterm.Integer(1))),
		expr.Lit(rdfterm.Integer(10)))
	n := Project([]string{"s"},
		Filter([]*expr.Expr{cond},
			Bgp([]rdfterm.Triple{{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.VarRef("v")}})))

	want := "Project(\n" +
		"  Filter(\n" +
		"    BGP(?s <http://ex/p> ?v) ,\n" +
		"    op lt(op plus(?v, 1), 10)\n" +
		"  ) ,\n" +
		"  Variables([ ?s ])\n" +
		")"
	if got := n.Text(); got != want {
		t.Errorf("rendering mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTextSliceShowsNoneForUnboundedLimit(t *testing.T) {
	n := Slice(-1, 5, Bgp(nil))
	if !strings.Contains(n.Text(), "limit none offset 5") {
		t.Errorf("Slice text = %q, want it to mention 'limit none offset 5'", n.Text())
	}
}

func TestTextSliceShowsNumericLimit(t *testing.T) {
	n := Slice(10, 0, Bgp(nil))
	if !strings.Contains(n.Text(), "limit 10 offset 0") {
		t.Errorf("Slice text = %q, want it to mention 'limit 10 offset 0'", n.Text())
	}
}

func TestTextProjectListsPrefixedVariables(t *testing.T) {
	n := Project([]string{"s", "o"}, Bgp(nil))
	got := n.Text()
	if !strings.Contains(got, "?s") || !strings.Contains(got, "?o") {
		t.Errorf("Project text = %q, want it to mention ?s and ?o", got)
	}
}

func TestTextJoinWithConditionIncludesConditionsBlock(t *testing.T) {
	cond := expr.Call(expr.OpGt, expr.Var("w"), expr.Lit(rdfterm.Integer(0)))
	n := Join(Bgp(nil), Bgp(nil), cond)
	got := n.Text()
	if !strings.Contains(got, "Conditions([") {
		t.Errorf("Join with a condition must render a Conditions([...]) block, got %q", got)
	}
}

func TestTextJoinWithoutConditionOmitsConditionsBlock(t *testing.T) {
	n := Join(Bgp(nil), Bgp(nil), nil)
	got := n.Text()
	if strings.Contains(got, "Conditions([") {
		t.Errorf("Join without a condition must not render a Conditions([...]) block, got %q", got)
	}
}

func TestTextOrderByMarksDescending(t *testing.T) {
	n := OrderBy([]OrderCondition{{Expr: expr.Var("s"), Descending: true}}, Bgp(nil))
	if !strings.Contains(n.Text(), "DESC(") {
		t.Errorf("descending OrderBy key must be wrapped in DESC(...), got %q", n.Text())
	}
}

func TestTextIsDeterministicAcrossCalls(t *testing.T) {
	n := Filter([]*expr.Expr{expr.Call(expr.OpLt, expr.Var("v"), expr.Lit(rdfterm.Integer(10)))}, Bgp([]rdfterm.Triple{
		{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.VarRef("v")},
	}))
	a := n.Text()
	b := n.Text()
	if a != b {
		t.Errorf("Text() must be bit-stable across repeated calls, got %q then %q", a, b)
	}
}

func TestTextValuesReportsRowCount(t *testing.T) {
	one := rdfterm.Integer(1)
	n := Values([]string{"x"}, [][]*rdfterm.Literal{{&one}, {nil}})
	if !strings.Contains(n.Text(), "rows=2") {
		t.Errorf("Values text = %q, want it to mention rows=2", n.Text())
	}
}
