// Package expr implements the tagged-sum expression tree and its
// evaluator: roughly fifty operators over the rdfterm.Literal model, with
// SPARQL's three-valued logic and per-expression error propagation that
// never aborts the pipeline.
package expr

import (
	"fmt"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Op tags the expression operator.
type Op int

const (
	OpLiteral Op = iota // wraps a rdfterm.Literal; Kind==KindVariable means "reference to a variable"

	// Boolean (three-valued logic)
	OpAnd
	OpOr
	OpNot

	// Comparison
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpSameTerm

	// Variable introspection
	OpBound

	// Term accessors
	OpStr
	OpLang
	OpDatatype
	OpLangMatches

	// String matching. OpStrMatch/OpStrNMatch are the RDQL-inherited =~ and
	// !~ forms; they share REGEX's engine, with OpStrNMatch negating.
	OpRegex
	OpStrMatch
	OpStrNMatch

	// Control flow
	OpIf
	OpCoalesce
	OpIn
	OpNotIn

	// Construction
	OpStrDt
	OpStrLang
	OpBnode
	OpUri
	OpIri // alias of OpUri

	// Arithmetic
	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpUMinus // unary negation

	// String functions
	OpConcat
	OpSubstr
	OpStrlen
	OpUcase
	OpLcase
	OpContains
	OpStrStarts
	OpStrEnds
	OpReplace
	OpEncodeForURI

	// Numeric functions
	OpAbs
	OpCeil
	OpFloor
	OpRound

	// Datetime part extraction
	OpYear
	OpMonth
	OpDay
	OpHours
	OpMinutes
	OpSeconds
	OpTimezone
	OpTz
	OpNow

	// Type-test predicates
	OpIsURI
	OpIsBlank
	OpIsLiteral
	OpIsNumeric

	// Misc built-ins
	OpRand
	OpMD5
	OpSHA1
	OpSHA256
	OpUUID
	OpStrUUID

	// Aggregates, only legal directly under an Aggregation rowsource;
	// the compiler extracts these into synthetic variables before scalar
	// evaluation ever sees them.
	OpCount
	OpSum
	OpAvg
	OpMin
	OpMax
	OpSample
	OpGroupConcat

	// EXISTS / NOT EXISTS are handled structurally: see the ExistsPattern
	// field below.
	OpExists
	OpNotExists

	// Cast
	OpCast
)

// Expr is the tagged expression tree node.
type Expr struct {
	Op Op

	Lit rdfterm.Literal // OpLiteral payload (ground value or variable reference)

	Args []*Expr // operator arguments, in SPARQL argument order

	// OpRegex: optional flags string ("i", "s", "m")
	RegexFlags string

	// Aggregate DISTINCT flag; OpCast target datatype URI (also carries the
	// OpGroupConcat separator).
	Distinct bool // aggregate DISTINCT modifier
	CastType string

	// OpExists / OpNotExists: the inner graph pattern, opaque here to avoid
	// an import cycle with package pattern (which itself embeds *Expr for
	// FILTER clauses). The compiler/rowsource packages type-assert this
	// back to *pattern.Pattern when they build the EXISTS rowsource.
	ExistsPattern interface{}
}

// Var constructs a variable-reference expression, the form Eval resolves
// against the environment as early as possible in every operator except
// BOUND.
func Var(name string) *Expr { return &Expr{Op: OpLiteral, Lit: rdfterm.VarRef(name)} }

// Lit constructs a ground-literal expression.
func Lit(l rdfterm.Literal) *Expr { return &Expr{Op: OpLiteral, Lit: l} }

// Call constructs a generic n-ary operator expression.
func Call(op Op, args ...*Expr) *Expr { return &Expr{Op: op, Args: args} }

// IsAggregate reports whether this operator is one of the SPARQL aggregate
// functions.
func (op Op) IsAggregate() bool {
	switch op {
	case OpCount, OpSum, OpAvg, OpMin, OpMax, OpSample, OpGroupConcat:
		return true
	default:
		return false
	}
}

// ContainsAggregate reports whether e or any descendant is an aggregate
// call. Used by the compiler's aggregate-extraction walk.
func (e *Expr) ContainsAggregate() bool {
	if e == nil {
		return false
	}
	if e.Op.IsAggregate() {
		return true
	}
	for _, a := range e.Args {
		if a.ContainsAggregate() {
			return true
		}
	}
	return false
}

// StructuralKey returns a string uniquely determined by the expression's
// shape and leaf values, used by aggregate extraction to recognize
// structurally-equal aggregate sub-expressions that should share one
// synthetic variable.
func (e *Expr) StructuralKey() string {
	if e == nil {
		return "<nil>"
	}
	s := fmt.Sprintf("op%d(", e.Op)
	if e.Op == OpLiteral {
		s += e.Lit.String()
	}
	if e.Distinct {
		s += "!distinct"
	}
	for _, a := range e.Args {
		s += a.StructuralKey() + ","
	}
	s += ")"
	return s
}

// Clone returns a deep copy of the expression tree, used when the compiler
// rewrites an aggregate occurrence in place without disturbing shared
// sub-trees elsewhere.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Args != nil {
		cp.Args = make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			cp.Args[i] = a.Clone()
		}
	}
	return &cp
}
