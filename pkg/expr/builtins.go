package expr

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/shopspring/decimal"
)

func evalNumericFunc(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	v, err := Eval(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	if rankOf(v) == rankNotNumeric {
		return rdfterm.Literal{}, fmt.Errorf("expr: %v requires a numeric argument, got %s", e.Op, v.Kind)
	}
	switch e.Op {
	case OpAbs:
		switch v.Kind {
		case rdfterm.KindInteger:
			if v.Int < 0 {
				return rdfterm.Integer(-v.Int), nil
			}
			return v, nil
		case rdfterm.KindDecimal:
			return rdfterm.Decimal(v.Dec.Abs()), nil
		default:
			return rdfterm.Double(math.Abs(v.Dbl)), nil
		}
	case OpCeil:
		return roundLike(v, math.Ceil, decimal.Decimal.Ceil), nil
	case OpFloor:
		return roundLike(v, math.Floor, decimal.Decimal.Floor), nil
	case OpRound:
		return roundLike(v, func(f float64) float64 { return math.Floor(f + 0.5) }, func(d decimal.Decimal) decimal.Decimal { return d.Round(0) }), nil
	}
	return rdfterm.Literal{}, fmt.Errorf("expr: unreachable numeric operator %v", e.Op)
}

func roundLike(v rdfterm.Literal, f func(float64) float64, d func(decimal.Decimal) decimal.Decimal) rdfterm.Literal {
	switch v.Kind {
	case rdfterm.KindInteger:
		return v
	case rdfterm.KindDecimal:
		return rdfterm.Decimal(d(v.Dec))
	default:
		return rdfterm.Double(f(v.Dbl))
	}
}

func evalDateTimePart(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	v, err := Eval(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	if v.Kind != rdfterm.KindDateTime {
		return rdfterm.Literal{}, fmt.Errorf("expr: %v requires a dateTime argument, got %s", e.Op, v.Kind)
	}
	dt := v.DT
	switch e.Op {
	case OpYear:
		return rdfterm.Integer(int64(dt.Year)), nil
	case OpMonth:
		return rdfterm.Integer(int64(dt.Month)), nil
	case OpDay:
		return rdfterm.Integer(int64(dt.Day)), nil
	case OpHours:
		return rdfterm.Integer(int64(dt.Hour)), nil
	case OpMinutes:
		return rdfterm.Integer(int64(dt.Minute)), nil
	case OpSeconds:
		return rdfterm.Decimal(decimal.NewFromFloat(dt.Second)), nil
	case OpTimezone:
		if !dt.HasTZ {
			return rdfterm.Literal{}, fmt.Errorf("expr: TIMEZONE() requires a dateTime with a timezone")
		}
		return rdfterm.TypedString(formatTZDuration(dt.TZOffsetMinutes), "http://www.w3.org/2001/XMLSchema#dayTimeDuration"), nil
	case OpTz:
		if !dt.HasTZ {
			return rdfterm.PlainString("", ""), nil
		}
		if dt.TZOffsetMinutes == 0 {
			return rdfterm.PlainString("Z", ""), nil
		}
		return rdfterm.PlainString(formatTZOffset(dt.TZOffsetMinutes), ""), nil
	}
	return rdfterm.Literal{}, fmt.Errorf("expr: unreachable datetime operator %v", e.Op)
}

func formatTZOffset(mins int) string {
	sign := "+"
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	return fmt.Sprintf("%s%02d:%02d", sign, mins/60, mins%60)
}

func formatTZDuration(mins int) string {
	sign := ""
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	return fmt.Sprintf("%sPT%dH%dM", sign, mins/60, mins%60)
}

func evalHash(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	s, err := evalStrArg(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	var sum []byte
	switch e.Op {
	case OpMD5:
		h := md5.Sum([]byte(s))
		sum = h[:]
	case OpSHA1:
		h := sha1.Sum([]byte(s))
		sum = h[:]
	case OpSHA256:
		h := sha256.Sum256([]byte(s))
		sum = h[:]
	}
	return rdfterm.PlainString(hex.EncodeToString(sum), ""), nil
}

// castLiteral implements the xsd:* constructor-function casts: best-effort
// coercion that surfaces an invalid cast as a normal evaluation error,
// never a panic.
func castLiteral(v rdfterm.Literal, targetURI string) (rdfterm.Literal, error) {
	switch targetURI {
	case rdfterm.XSDString:
		return rdfterm.TypedString(v.Str(), rdfterm.XSDString), nil
	case rdfterm.XSDInteger:
		switch v.Kind {
		case rdfterm.KindInteger:
			return v, nil
		case rdfterm.KindDecimal:
			return rdfterm.Integer(v.Dec.IntPart()), nil
		case rdfterm.KindDouble:
			return rdfterm.Integer(int64(v.Dbl)), nil
		case rdfterm.KindBoolean:
			if v.Bool {
				return rdfterm.Integer(1), nil
			}
			return rdfterm.Integer(0), nil
		case rdfterm.KindPlainString, rdfterm.KindTypedString:
			lit, err := rdfterm.DecimalFromString(v.Lexical)
			if err != nil {
				return rdfterm.Literal{}, fmt.Errorf("expr: cannot cast %q to xsd:integer", v.Lexical)
			}
			return rdfterm.Integer(lit.Dec.IntPart()), nil
		}
	case rdfterm.XSDDecimal:
		switch v.Kind {
		case rdfterm.KindDecimal:
			return v, nil
		case rdfterm.KindInteger:
			return rdfterm.Decimal(decimal.NewFromInt(v.Int)), nil
		case rdfterm.KindDouble:
			return rdfterm.Decimal(decimal.NewFromFloat(v.Dbl)), nil
		case rdfterm.KindPlainString, rdfterm.KindTypedString:
			return rdfterm.DecimalFromString(v.Lexical)
		}
	case rdfterm.XSDDouble:
		if rankOf(v) != rankNotNumeric {
			return rdfterm.Double(asFloat(v)), nil
		}
	case rdfterm.XSDBoolean:
		b, err := EffectiveBooleanValue(v)
		if err != nil {
			return rdfterm.Literal{}, fmt.Errorf("expr: cannot cast %s to xsd:boolean", v.Kind)
		}
		return rdfterm.Boolean(b), nil
	}
	return rdfterm.Literal{}, fmt.Errorf("expr: unsupported cast of %s to <%s>", v.Kind, targetURI)
}
