// Package triplestore defines the triples-source adapter interface the
// engine matches BGP patterns against, plus an in-memory reference
// implementation used by tests and the CLI driver. A Source answers two
// questions: "is this ground triple present?" and "iterate the triples
// matching this pattern".
package triplestore

import "github.com/rasqal-go/sparql/pkg/rdfterm"

// Source is the adapter the engine matches BGP triple patterns against.
// Implementations may be backed by an in-memory index (Memory, below), a
// database, or a remote endpoint; the rowsource layer never assumes
// anything beyond this interface.
type Source interface {
	// TriplePresent reports whether a fully ground triple exists in the
	// store.
	TriplePresent(t rdfterm.Triple) (bool, error)

	// Match returns an iterator over every stored triple matching pattern
	// (which may have variable positions); the iterator yields only the
	// ground triples, never re-binding pattern itself.
	Match(pattern rdfterm.Triple) (Iterator, error)
}

// Iterator yields ground triples one at a time.
type Iterator interface {
	Next() (rdfterm.Triple, bool, error)
	Close() error
}

// sliceIterator adapts a pre-filtered slice to Iterator.
type sliceIterator struct {
	triples []rdfterm.Triple
	pos     int
}

func (it *sliceIterator) Next() (rdfterm.Triple, bool, error) {
	if it.pos >= len(it.triples) {
		return rdfterm.Triple{}, false, nil
	}
	t := it.triples[it.pos]
	it.pos++
	return t, true, nil
}

func (it *sliceIterator) Close() error { return nil }
