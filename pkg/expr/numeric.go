package expr

import (
	"fmt"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/shopspring/decimal"
)

// numRank orders the numeric type hierarchy SPARQL promotes through:
// integer < decimal < double. Promotion always widens to the higher rank.
type numRank int

const (
	rankNotNumeric numRank = iota
	rankInt
	rankDec
	rankDbl
)

func rankOf(l rdfterm.Literal) numRank {
	switch l.Kind {
	case rdfterm.KindInteger:
		return rankInt
	case rdfterm.KindDecimal:
		return rankDec
	case rdfterm.KindDouble:
		return rankDbl
	default:
		return rankNotNumeric
	}
}

func asDecimal(l rdfterm.Literal) decimal.Decimal {
	switch l.Kind {
	case rdfterm.KindInteger:
		return decimal.NewFromInt(l.Int)
	case rdfterm.KindDecimal:
		return l.Dec
	case rdfterm.KindDouble:
		return decimal.NewFromFloat(l.Dbl)
	default:
		return decimal.Zero
	}
}

func asFloat(l rdfterm.Literal) float64 {
	switch l.Kind {
	case rdfterm.KindInteger:
		return float64(l.Int)
	case rdfterm.KindDecimal:
		f, _ := l.Dec.Float64()
		return f
	case rdfterm.KindDouble:
		return l.Dbl
	default:
		return 0
	}
}

// numericArith applies a binary numeric operator with XPath's numeric
// promotion rule, which SPARQL inherits: the result's rank is the higher
// of the two operand ranks, except division, which never stays integer.
func numericArith(op Op, a, b rdfterm.Literal) (rdfterm.Literal, error) {
	ra, rb := rankOf(a), rankOf(b)
	if ra == rankNotNumeric || rb == rankNotNumeric {
		return rdfterm.Literal{}, fmt.Errorf("expr: %s is not numeric", nonNumericOperand(a, b))
	}
	top := ra
	if rb > top {
		top = rb
	}
	if op == OpDiv && top == rankInt {
		top = rankDec
	}
	switch top {
	case rankInt:
		x, y := a.Int, b.Int
		switch op {
		case OpPlus:
			return rdfterm.Integer(x + y), nil
		case OpMinus:
			return rdfterm.Integer(x - y), nil
		case OpMul:
			return rdfterm.Integer(x * y), nil
		}
	case rankDec:
		x, y := asDecimal(a), asDecimal(b)
		switch op {
		case OpPlus:
			return rdfterm.Decimal(x.Add(y)), nil
		case OpMinus:
			return rdfterm.Decimal(x.Sub(y)), nil
		case OpMul:
			return rdfterm.Decimal(x.Mul(y)), nil
		case OpDiv:
			if y.IsZero() {
				return rdfterm.Literal{}, fmt.Errorf("expr: division by zero")
			}
			return rdfterm.Decimal(x.Div(y)), nil
		}
	case rankDbl:
		x, y := asFloat(a), asFloat(b)
		switch op {
		case OpPlus:
			return rdfterm.Double(x + y), nil
		case OpMinus:
			return rdfterm.Double(x - y), nil
		case OpMul:
			return rdfterm.Double(x * y), nil
		case OpDiv:
			return rdfterm.Double(x / y), nil
		}
	}
	return rdfterm.Literal{}, fmt.Errorf("expr: unsupported arithmetic operator")
}

// NumericAdd exposes the promotion-aware addition package rowsource uses to
// fold SUM()/AVG() across a group's values.
func NumericAdd(a, b rdfterm.Literal) (rdfterm.Literal, error) { return numericArith(OpPlus, a, b) }

// NumericDivideByInt divides a numeric literal by a plain int64 count,
// promoting integer accumulators to decimal (AVG() never reports an
// integer result).
func NumericDivideByInt(a rdfterm.Literal, n int64) (rdfterm.Literal, error) {
	return numericArith(OpDiv, a, rdfterm.Integer(n))
}

func nonNumericOperand(a, b rdfterm.Literal) string {
	if rankOf(a) == rankNotNumeric {
		return a.Kind.String()
	}
	return b.Kind.String()
}

// CompareNumeric orders two numeric literals, promoting to the higher rank
// first, returning -1/0/1.
func CompareNumeric(a, b rdfterm.Literal) int {
	ra, rb := rankOf(a), rankOf(b)
	top := ra
	if rb > top {
		top = rb
	}
	if top == rankInt {
		return compareInt64(a.Int, b.Int)
	}
	if top == rankDbl {
		x, y := asFloat(a), asFloat(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	return asDecimal(a).Cmp(asDecimal(b))
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
