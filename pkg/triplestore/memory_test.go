package triplestore

import (
	"testing"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

func drain(t *testing.T, it Iterator) []rdfterm.Triple {
	t.Helper()
	var out []rdfterm.Triple
	for {
		tr, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		out = append(out, tr)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return out
}

func TestMemoryAddPanicsOnNonGroundTriple(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Add must panic when given a triple with an unbound variable")
		}
	}()
	m := NewMemory()
	m.Add(rdfterm.Triple{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/o")})
}

func TestMemoryTriplePresent(t *testing.T) {
	m := NewMemory()
	tr := rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/b")}
	m.Add(tr)

	present, err := m.TriplePresent(tr)
	if err != nil || !present {
		t.Errorf("TriplePresent(added triple) = %v, %v, want true, nil", present, err)
	}

	absent := rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/other")}
	present, err = m.TriplePresent(absent)
	if err != nil || present {
		t.Errorf("TriplePresent(unadded triple) = %v, %v, want false, nil", present, err)
	}
}

func TestMemoryMatchBySubject(t *testing.T) {
	m := NewMemory()
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/1")})
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/q"), Object: rdfterm.URI("http://ex/2")})
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/b"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/3")})

	it, err := m.Match(rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.VarRef("p"), Object: rdfterm.VarRef("o")})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	got := drain(t, it)
	if len(got) != 2 {
		t.Fatalf("Match(?a ?p ?o) = %d triples, want 2", len(got))
	}
}

func TestMemoryMatchAllVariableIsFullScan(t *testing.T) {
	m := NewMemory()
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/1")})
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/b"), Predicate: rdfterm.URI("http://ex/q"), Object: rdfterm.URI("http://ex/2")})

	it, err := m.Match(rdfterm.Triple{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.VarRef("p"), Object: rdfterm.VarRef("o")})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	got := drain(t, it)
	if len(got) != 2 {
		t.Errorf("Match(?s ?p ?o) = %d triples, want 2", len(got))
	}
}

func TestMemoryMatchFiltersOnGroundObject(t *testing.T) {
	m := NewMemory()
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/a"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/x")})
	m.Add(rdfterm.Triple{Subject: rdfterm.URI("http://ex/b"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/y")})

	it, err := m.Match(rdfterm.Triple{Subject: rdfterm.VarRef("s"), Predicate: rdfterm.URI("http://ex/p"), Object: rdfterm.URI("http://ex/x")})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	got := drain(t, it)
	if len(got) != 1 || !got[0].Subject.SameTerm(rdfterm.URI("http://ex/a")) {
		t.Errorf("Match(?s p x) = %v, want exactly the triple with subject <http://ex/a>", got)
	}
}
