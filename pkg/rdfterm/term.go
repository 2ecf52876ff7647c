// Package rdfterm implements the RDF term (literal) and variable model that
// the rest of the engine is built on: a tagged-sum value type covering URIs,
// blank nodes, plain/typed strings, numerics, booleans, datetimes and
// variable references, plus the named-slot variable table queries bind
// values into.
//
// Terms are value types rather than reference-counted or interned nodes.
// Go strings are immutable and cheap to copy, so sharing falls out of the
// language; see DESIGN.md for the trade-off notes.
package rdfterm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags the variant of a Literal.
type Kind int

const (
	KindUnknown Kind = iota
	KindURI
	KindBlank
	KindQName
	KindPlainString
	KindTypedString
	KindInteger
	KindDecimal
	KindDouble
	KindBoolean
	KindDateTime
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindURI:
		return "uri"
	case KindBlank:
		return "blank"
	case KindQName:
		return "qname"
	case KindPlainString:
		return "string"
	case KindTypedString:
		return "typed-string"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Well-known XSD datatype URIs used when a Literal's DatatypeURI is left
// implicit (a simple literal has the effective datatype xsd:string under
// the SPARQL value-equality rules).
const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
)

// Literal is the tagged-sum RDF term. Exactly one field group is
// meaningful depending on Kind; callers should always branch on Kind
// rather than probing fields directly.
type Literal struct {
	Kind Kind

	// URI / Blank / QName
	Lexical string // URI string, blank node id, or "prefix:local" for QName
	Prefix  string // QName prefix only

	// PlainString / TypedString
	Lang        string // language tag, PlainString only
	DatatypeURI string // TypedString only

	// Numeric / boolean / datetime payloads
	Int     int64
	Dec     decimal.Decimal
	Dbl     float64
	Bool    bool
	DT      DateTime
	VarName string // KindVariable: the name of the referenced variable slot

	// varSlot is populated when a KindVariable literal is resolved against a
	// VarTable; -1 means "not yet resolved to a slot".
	varSlot int
}

// DateTime is the structured datetime payload used by the DateTime literal
// variant and by the YEAR()/MONTH()/... accessor operators.
type DateTime struct {
	Year, Month, Day          int
	Hour, Minute              int
	Second                    float64
	HasTZ                     bool
	TZOffsetMinutes           int
}

// URI constructs a KindURI literal.
func URI(uri string) Literal { return Literal{Kind: KindURI, Lexical: uri, varSlot: -1} }

// Blank constructs a KindBlank literal.
func Blank(id string) Literal { return Literal{Kind: KindBlank, Lexical: id, varSlot: -1} }

// PlainString constructs a KindPlainString literal, optionally with a
// language tag. A literal with a language tag never also carries a
// non-string datatype, per the RDF data model.
func PlainString(value, lang string) Literal {
	return Literal{Kind: KindPlainString, Lexical: value, Lang: lang, varSlot: -1}
}

// TypedString constructs a KindTypedString literal: a lexical form plus an
// explicit datatype URI.
func TypedString(value, datatypeURI string) Literal {
	return Literal{Kind: KindTypedString, Lexical: value, DatatypeURI: datatypeURI, varSlot: -1}
}

// Integer constructs a KindInteger literal.
func Integer(v int64) Literal { return Literal{Kind: KindInteger, Int: v, varSlot: -1} }

// Decimal constructs a KindDecimal literal backed by shopspring/decimal,
// giving the exact (non-floating) arithmetic xsd:decimal requires.
func Decimal(d decimal.Decimal) Literal { return Literal{Kind: KindDecimal, Dec: d, varSlot: -1} }

// DecimalFromString parses a decimal lexical form.
func DecimalFromString(s string) (Literal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Literal{}, fmt.Errorf("rdfterm: invalid decimal %q: %w", s, err)
	}
	return Decimal(d), nil
}

// Double constructs a KindDouble literal.
func Double(v float64) Literal { return Literal{Kind: KindDouble, Dbl: v, varSlot: -1} }

// Boolean constructs a KindBoolean literal.
func Boolean(v bool) Literal { return Literal{Kind: KindBoolean, Bool: v, varSlot: -1} }

// DateTimeLit constructs a KindDateTime literal.
func DateTimeLit(dt DateTime) Literal { return Literal{Kind: KindDateTime, DT: dt, varSlot: -1} }

// VarRef constructs a KindVariable literal: a reference to a variable
// slot, never a value.
func VarRef(name string) Literal { return Literal{Kind: KindVariable, VarName: name, varSlot: -1} }

// IsVariable reports whether this term is a reference to a variable rather
// than a ground value.
func (l Literal) IsVariable() bool { return l.Kind == KindVariable }

// IsGround reports whether the term carries no variable reference.
func (l Literal) IsGround() bool { return l.Kind != KindVariable }

// Clone returns an independent copy. Literal already has value semantics
// for every field (decimal.Decimal is immutable, strings are immutable), so
// Clone is the identity function; it exists so callers that hand ownership
// of a term to a new node have a single place to call.
func (l Literal) Clone() Literal { return l }

// Str implements the SPARQL STR() operator: the lexical form as a plain
// string, discarding datatype and language.
func (l Literal) Str() string {
	switch l.Kind {
	case KindURI:
		return l.Lexical
	case KindBlank:
		return "_:" + l.Lexical
	case KindQName:
		return l.Prefix + ":" + l.Lexical
	case KindPlainString, KindTypedString:
		return l.Lexical
	case KindInteger:
		return strconv.FormatInt(l.Int, 10)
	case KindDecimal:
		return l.Dec.String()
	case KindDouble:
		return strconv.FormatFloat(l.Dbl, 'g', -1, 64)
	case KindBoolean:
		if l.Bool {
			return "true"
		}
		return "false"
	case KindDateTime:
		return l.DT.String()
	default:
		return ""
	}
}

// LanguageTag returns the language tag, empty for everything except
// PlainString, matching LANG()'s "possibly empty plain string" contract.
func (l Literal) LanguageTag() string {
	if l.Kind == KindPlainString {
		return l.Lang
	}
	return ""
}

// Datatype returns the effective datatype URI: plain strings are
// xsd:string, typed strings carry their own, numerics/booleans/datetimes
// carry their XSD type, and anything else (URI, blank, variable) has no
// datatype and returns "".
func (l Literal) Datatype() string {
	switch l.Kind {
	case KindPlainString:
		return XSDString
	case KindTypedString:
		return l.DatatypeURI
	case KindInteger:
		return XSDInteger
	case KindDecimal:
		return XSDDecimal
	case KindDouble:
		return XSDDouble
	case KindBoolean:
		return XSDBoolean
	case KindDateTime:
		return XSDDateTime
	default:
		return ""
	}
}

// SameTerm implements SPARQL's sameTerm(): structural RDF-term identity
// with no coercion, stricter than value equality (=).
func (l Literal) SameTerm(other Literal) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case KindURI:
		return l.Lexical == other.Lexical
	case KindBlank:
		return l.Lexical == other.Lexical
	case KindQName:
		return l.Prefix == other.Prefix && l.Lexical == other.Lexical
	case KindPlainString:
		return l.Lexical == other.Lexical && strings.EqualFold(l.Lang, other.Lang)
	case KindTypedString:
		return l.Lexical == other.Lexical && l.DatatypeURI == other.DatatypeURI
	case KindInteger:
		return l.Int == other.Int
	case KindDecimal:
		return l.Dec.Equal(other.Dec)
	case KindDouble:
		return l.Dbl == other.Dbl
	case KindBoolean:
		return l.Bool == other.Bool
	case KindDateTime:
		return l.DT.Equal(other.DT)
	case KindVariable:
		return l.VarName == other.VarName
	default:
		return false
	}
}

// String renders the literal in a Turtle-ish debug form; used by the
// algebra textual form and by row printing.
func (l Literal) String() string {
	switch l.Kind {
	case KindURI:
		return "<" + l.Lexical + ">"
	case KindBlank:
		return "_:" + l.Lexical
	case KindQName:
		return l.Prefix + ":" + l.Lexical
	case KindPlainString:
		if l.Lang != "" {
			return "\"" + l.Lexical + "\"@" + l.Lang
		}
		return "\"" + l.Lexical + "\""
	case KindTypedString:
		return "\"" + l.Lexical + "\"^^<" + l.DatatypeURI + ">"
	case KindInteger:
		return strconv.FormatInt(l.Int, 10)
	case KindDecimal:
		return l.Dec.String()
	case KindDouble:
		return strconv.FormatFloat(l.Dbl, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(l.Bool)
	case KindDateTime:
		return l.DT.String()
	case KindVariable:
		return "?" + l.VarName
	default:
		return "<unknown>"
	}
}

func (dt DateTime) String() string {
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%09.6f", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	if !dt.HasTZ {
		return s
	}
	if dt.TZOffsetMinutes == 0 {
		return s + "Z"
	}
	sign := "+"
	off := dt.TZOffsetMinutes
	if off < 0 {
		sign = "-"
		off = -off
	}
	return fmt.Sprintf("%s%s%02d:%02d", s, sign, off/60, off%60)
}

// Equal is a field-by-field comparison used by DateTime's SameTerm case.
func (dt DateTime) Equal(other DateTime) bool {
	return dt.Year == other.Year && dt.Month == other.Month && dt.Day == other.Day &&
		dt.Hour == other.Hour && dt.Minute == other.Minute && dt.Second == other.Second &&
		dt.HasTZ == other.HasTZ && dt.TZOffsetMinutes == other.TZOffsetMinutes
}

// Compare orders two DateTime values field by field; used by ORDER BY and
// by the datetime comparison operators.
func (dt DateTime) Compare(other DateTime) int {
	if c := compareInt(dt.Year, other.Year); c != 0 {
		return c
	}
	if c := compareInt(dt.Month, other.Month); c != 0 {
		return c
	}
	if c := compareInt(dt.Day, other.Day); c != 0 {
		return c
	}
	if c := compareInt(dt.Hour, other.Hour); c != 0 {
		return c
	}
	if c := compareInt(dt.Minute, other.Minute); c != 0 {
		return c
	}
	switch {
	case dt.Second < other.Second:
		return -1
	case dt.Second > other.Second:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
