package triplestore

import "github.com/rasqal-go/sparql/pkg/rdfterm"

// Memory is a reference Source implementation backed by a flat slice plus
// three single-position indexes (by subject, by predicate, by object),
// since a triple pattern may fix any subset of the three positions.
type Memory struct {
	triples []rdfterm.Triple
	byS     map[string][]int
	byP     map[string][]int
	byO     map[string][]int
}

// NewMemory creates an empty in-memory triple store.
func NewMemory() *Memory {
	return &Memory{
		byS: make(map[string][]int),
		byP: make(map[string][]int),
		byO: make(map[string][]int),
	}
}

// Add inserts a ground triple. Adding a non-ground triple is a caller bug
// and panics.
func (m *Memory) Add(t rdfterm.Triple) {
	if !t.IsGround() {
		panic("triplestore: Memory.Add requires a ground triple")
	}
	idx := len(m.triples)
	m.triples = append(m.triples, t)
	sk, pk, ok := termKey(t.Subject), termKey(t.Predicate), termKey(t.Object)
	m.byS[sk] = append(m.byS[sk], idx)
	m.byP[pk] = append(m.byP[pk], idx)
	m.byO[ok] = append(m.byO[ok], idx)
}

func termKey(l rdfterm.Literal) string { return l.String() }

// TriplePresent implements Source. A probe carrying an Origin only matches
// triples stored under that same graph name; an origin-less probe matches
// regardless of graph (the default graph is the union of all graphs in this
// reference store).
func (m *Memory) TriplePresent(t rdfterm.Triple) (bool, error) {
	for _, idx := range m.byS[termKey(t.Subject)] {
		c := m.triples[idx]
		if c.Subject.SameTerm(t.Subject) && c.Predicate.SameTerm(t.Predicate) && c.Object.SameTerm(t.Object) && originMatches(t.Origin, c.Origin) {
			return true, nil
		}
	}
	return false, nil
}

// originMatches applies the named-graph scoping rule: nil pattern origin
// matches anything; a variable origin matches any triple that has a graph
// name to bind it to; a ground origin requires the same graph name.
func originMatches(pat, actual *rdfterm.Literal) bool {
	if pat == nil {
		return true
	}
	if pat.IsVariable() {
		return actual != nil
	}
	return actual != nil && pat.SameTerm(*actual)
}

// Match implements Source, using the index of the first ground position
// in subject, predicate, object order, falling back to a full scan when
// the pattern is all-variable.
func (m *Memory) Match(pat rdfterm.Triple) (Iterator, error) {
	var candidates []int
	switch {
	case !pat.Subject.IsVariable():
		candidates = m.byS[termKey(pat.Subject)]
	case !pat.Predicate.IsVariable():
		candidates = m.byP[termKey(pat.Predicate)]
	case !pat.Object.IsVariable():
		candidates = m.byO[termKey(pat.Object)]
	default:
		candidates = allIndexes(len(m.triples))
	}

	out := make([]rdfterm.Triple, 0, len(candidates))
	for _, idx := range candidates {
		t := m.triples[idx]
		if matches(pat.Subject, t.Subject) && matches(pat.Predicate, t.Predicate) && matches(pat.Object, t.Object) && originMatches(pat.Origin, t.Origin) {
			out = append(out, t)
		}
	}
	return &sliceIterator{triples: out}, nil
}

func matches(patTerm, actual rdfterm.Literal) bool {
	if patTerm.IsVariable() {
		return true
	}
	return patTerm.SameTerm(actual)
}

func allIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
