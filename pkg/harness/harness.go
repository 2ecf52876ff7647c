// Package harness implements the test-classification rules a W3C
// manifest-driven test driver applies: deriving a test's kind and expected
// outcome from its rdf:type URI, reading the approval and
// result-cardinality annotations, and resolving an expected/actual outcome
// pair into one of the five reportable states. Reading the manifest RDF
// graph itself is the driver's job; this package only encodes what the
// URIs mean once extracted.
package harness

import "strings"

// Kind is the broad test category, derived from the entry's rdf:type URI.
type Kind int

const (
	KindUnknown Kind = iota
	KindQuery        // QueryEvaluationTest: run the query, compare results
	KindUpdate       // UpdateEvaluationTest: out of engine scope, skipped
	KindProtocol     // ProtocolTest: out of engine scope, skipped
	KindSyntax       // syntax-only: the query need only parse (or fail to)
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindUpdate:
		return "update"
	case KindProtocol:
		return "protocol"
	case KindSyntax:
		return "syntax"
	default:
		return "unknown"
	}
}

// Classification is everything the driver needs to know about one manifest
// entry before running it.
type Classification struct {
	Kind Kind

	// ExpectFailure flips the expected outcome: the test passes by failing
	// (negative syntax tests and anything typed "Negative").
	ExpectFailure bool

	// SPARQL11 marks a SPARQL 1.1 test ("Test11" in the type URI).
	SPARQL11 bool
}

// ClassifyType derives a Classification from an rdf:type URI by substring:
// the kind keywords are checked first, any "Syntax" type is syntax-only,
// and "Negative" or "TestBadSyntax" anywhere in the URI flips the expected
// outcome to FAIL.
func ClassifyType(typeURI string) Classification {
	c := Classification{}
	switch {
	case strings.Contains(typeURI, "QueryEvaluationTest"):
		c.Kind = KindQuery
	case strings.Contains(typeURI, "UpdateEvaluationTest"):
		c.Kind = KindUpdate
	case strings.Contains(typeURI, "ProtocolTest"):
		c.Kind = KindProtocol
	}
	if strings.Contains(typeURI, "Syntax") {
		c.Kind = KindSyntax
	}
	if strings.Contains(typeURI, "Negative") || strings.Contains(typeURI, "TestBadSyntax") {
		c.ExpectFailure = true
	}
	if strings.Contains(typeURI, "Test11") {
		c.SPARQL11 = true
	}
	return c
}

// LaxCardinality reports whether a mf:resultCardinality URI permits an
// approximate row-count match.
func LaxCardinality(cardinalityURI string) bool {
	return strings.Contains(cardinalityURI, "LaxCardinality")
}

// Approval is the dawgt:approval status of a manifest entry.
type Approval int

const (
	ApprovalNone Approval = iota
	Approved
	Withdrawn
)

// ClassifyApproval maps a dawgt:approval URI to its status.
func ClassifyApproval(approvalURI string) Approval {
	switch {
	case strings.HasSuffix(approvalURI, "Approved"):
		return Approved
	case strings.HasSuffix(approvalURI, "Withdrawn"):
		return Withdrawn
	default:
		return ApprovalNone
	}
}

// State is the reported outcome of one test run.
type State int

const (
	Pass State = iota
	Fail
	XFail  // expected to fail and did
	UXPass // expected to fail but passed
	Skip
)

// stateChars is the single-character progress summary, index-aligned with
// the State values: ".F*!-".
var stateChars = [...]byte{'.', 'F', '*', '!', '-'}

var stateLabels = [...]string{"pass", "FAIL", "XFAIL", "UXPASS", "SKIP"}

// Char returns the one-character progress marker for the state.
func (s State) Char() byte { return stateChars[s] }

// Label returns the long display label for the state.
func (s State) Label() string { return stateLabels[s] }

func (s State) String() string { return s.Label() }

// Resolve folds an expected/actual outcome pair into the reported state: a
// test expected to fail that does fail is XFAIL, one that unexpectedly
// passes is UXPASS.
func Resolve(expectFailure, passed bool) State {
	switch {
	case !expectFailure && passed:
		return Pass
	case !expectFailure && !passed:
		return Fail
	case expectFailure && !passed:
		return XFail
	default:
		return UXPass
	}
}
