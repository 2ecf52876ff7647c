package expr

import (
	"fmt"
	"strings"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// ValueEqual implements SPARQL's "=" operator: numeric/datetime coercion
// across kinds, strict comparison otherwise, and an error when the two
// operands are not comparable at all (e.g. a URI against an integer).
func ValueEqual(a, b rdfterm.Literal) (bool, error) {
	if rankOf(a) != rankNotNumeric && rankOf(b) != rankNotNumeric {
		return CompareNumeric(a, b) == 0, nil
	}
	if a.Kind != b.Kind {
		// A plain string and a same-content xsd:string typed literal compare
		// equal; everything else cross-kind is an error.
		if isStringy(a) && isStringy(b) {
			return stringLexical(a) == stringLexical(b) && strings.EqualFold(a.LanguageTag(), b.LanguageTag()), nil
		}
		return false, fmt.Errorf("expr: cannot compare %s to %s", a.Kind, b.Kind)
	}
	switch a.Kind {
	case rdfterm.KindURI, rdfterm.KindBlank, rdfterm.KindQName:
		return a.SameTerm(b), nil
	case rdfterm.KindPlainString:
		return a.Lexical == b.Lexical && strings.EqualFold(a.Lang, b.Lang), nil
	case rdfterm.KindTypedString:
		if a.DatatypeURI != b.DatatypeURI {
			return false, fmt.Errorf("expr: cannot compare typed literals of different datatypes")
		}
		return a.Lexical == b.Lexical, nil
	case rdfterm.KindBoolean:
		return a.Bool == b.Bool, nil
	case rdfterm.KindDateTime:
		return a.DT.Equal(b.DT), nil
	case rdfterm.KindVariable:
		return false, fmt.Errorf("expr: unresolved variable in comparison")
	default:
		return false, fmt.Errorf("expr: uncomparable kind %s", a.Kind)
	}
}

func isStringy(l rdfterm.Literal) bool {
	return l.Kind == rdfterm.KindPlainString ||
		(l.Kind == rdfterm.KindTypedString && l.DatatypeURI == rdfterm.XSDString)
}

func stringLexical(l rdfterm.Literal) string { return l.Lexical }

// OrderCompare implements the total order ORDER BY needs: numeric and
// datetime operands compare by value; strings compare lexically;
// everything else falls back to the lexical form via Str(), so that
// mixed-kind order keys never panic, only produce a stable
// implementation-defined order.
func OrderCompare(a, b rdfterm.Literal) int {
	if rankOf(a) != rankNotNumeric && rankOf(b) != rankNotNumeric {
		return CompareNumeric(a, b)
	}
	if a.Kind == rdfterm.KindDateTime && b.Kind == rdfterm.KindDateTime {
		return a.DT.Compare(b.DT)
	}
	as, bs := a.Str(), b.Str()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// ValueCompare implements the ordered relational operators (<, <=, >, >=):
// numeric and datetime operands compare by value; plain/typed strings of
// the same kind compare lexically; anything else is an error (SPARQL does
// not order URIs or booleans).
func ValueCompare(a, b rdfterm.Literal) (int, error) {
	if rankOf(a) != rankNotNumeric && rankOf(b) != rankNotNumeric {
		return CompareNumeric(a, b), nil
	}
	if a.Kind == rdfterm.KindDateTime && b.Kind == rdfterm.KindDateTime {
		return a.DT.Compare(b.DT), nil
	}
	if isStringy(a) && isStringy(b) {
		switch {
		case a.Lexical < b.Lexical:
			return -1, nil
		case a.Lexical > b.Lexical:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("expr: %s and %s are not ordered", a.Kind, b.Kind)
}
