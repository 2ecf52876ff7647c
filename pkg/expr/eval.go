// Expression evaluation. Every operator returns a literal on success, or
// an error on failure; no operator ever panics or aborts the surrounding
// rowsource, which is left to treat an evaluation error as "drop this row"
// (Filter) or "propagate as unbound" (Project/BIND), per operator.
package expr

import (
	"fmt"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Eval evaluates e against env. env supplies the current value of every
// variable visible at this point in the pipeline; Eval never mutates it.
//
// On entering evaluation of any operator's arguments, a bare variable
// reference is resolved against env immediately, except BOUND's own
// argument, which Eval inspects syntactically before any resolution
// happens.
func Eval(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	if e == nil {
		return rdfterm.Literal{}, fmt.Errorf("expr: nil expression")
	}

	if e.Op == OpBound {
		return evalBound(ctx, e, env)
	}

	if e.Op == OpLiteral {
		if e.Lit.IsVariable() {
			v, ok := env[e.Lit.VarName]
			if !ok {
				return rdfterm.Literal{}, fmt.Errorf("expr: unbound variable ?%s", e.Lit.VarName)
			}
			return v, nil
		}
		return e.Lit, nil
	}

	switch e.Op {
	case OpAnd:
		return evalAnd(ctx, e, env)
	case OpOr:
		return evalOr(ctx, e, env)
	case OpNot:
		b, err := evalBool(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(!b), nil

	case OpEq, OpNe:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		b, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		eq, err := ValueEqual(a, b)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		if e.Op == OpNe {
			eq = !eq
		}
		return rdfterm.Boolean(eq), nil

	case OpLt, OpGt, OpLe, OpGe:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		b, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		c, err := ValueCompare(a, b)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		switch e.Op {
		case OpLt:
			return rdfterm.Boolean(c < 0), nil
		case OpGt:
			return rdfterm.Boolean(c > 0), nil
		case OpLe:
			return rdfterm.Boolean(c <= 0), nil
		default:
			return rdfterm.Boolean(c >= 0), nil
		}

	case OpSameTerm:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		b, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(a.SameTerm(b)), nil

	case OpStr:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(a.Str(), ""), nil

	case OpLang:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		if a.Kind != rdfterm.KindPlainString {
			return rdfterm.Literal{}, fmt.Errorf("expr: LANG() requires a plain literal")
		}
		return rdfterm.PlainString(a.LanguageTag(), ""), nil

	case OpDatatype:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		dt := a.Datatype()
		if dt == "" {
			return rdfterm.Literal{}, fmt.Errorf("expr: DATATYPE() undefined for %s", a.Kind)
		}
		return rdfterm.URI(dt), nil

	case OpLangMatches:
		return evalLangMatches(ctx, e, env)

	case OpRegex, OpStrMatch, OpStrNMatch:
		return evalRegex(ctx, e, env)

	case OpIf:
		b, err := evalBool(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		if b {
			return Eval(ctx, e.Args[1], env)
		}
		return Eval(ctx, e.Args[2], env)

	case OpCoalesce:
		var lastErr error = fmt.Errorf("expr: COALESCE() with no arguments")
		for _, a := range e.Args {
			v, err := Eval(ctx, a, env)
			if err == nil {
				return v, nil
			}
			lastErr = err
		}
		return rdfterm.Literal{}, lastErr

	case OpIn, OpNotIn:
		return evalIn(ctx, e, env)

	case OpStrDt:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		dt, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.TypedString(a.Str(), dt.Lexical), nil

	case OpStrLang:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		lang, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(a.Str(), lang.Str()), nil

	case OpBnode:
		if ctx.NewBlankID == nil {
			return rdfterm.Literal{}, fmt.Errorf("expr: no blank node id source configured")
		}
		return rdfterm.Blank(ctx.NewBlankID()), nil

	case OpUri, OpIri:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.URI(resolveURI(ctx.BaseURI, a.Str())), nil

	case OpPlus, OpMinus, OpMul, OpDiv:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		b, err := Eval(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return numericArith(e.Op, a, b)

	case OpUMinus:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return numericArith(OpMinus, rdfterm.Integer(0), a)

	case OpConcat, OpSubstr, OpStrlen, OpUcase, OpLcase, OpContains, OpStrStarts, OpStrEnds, OpReplace, OpEncodeForURI:
		return evalStringFunc(ctx, e, env)

	case OpAbs, OpCeil, OpFloor, OpRound:
		return evalNumericFunc(ctx, e, env)

	case OpYear, OpMonth, OpDay, OpHours, OpMinutes, OpSeconds, OpTimezone, OpTz:
		return evalDateTimePart(ctx, e, env)

	case OpNow:
		return rdfterm.DateTimeLit(ctx.Now), nil

	case OpIsURI:
		return evalTypeTest(ctx, e, env, func(l rdfterm.Literal) bool { return l.Kind == rdfterm.KindURI })
	case OpIsBlank:
		return evalTypeTest(ctx, e, env, func(l rdfterm.Literal) bool { return l.Kind == rdfterm.KindBlank })
	case OpIsLiteral:
		return evalTypeTest(ctx, e, env, func(l rdfterm.Literal) bool {
			return l.Kind == rdfterm.KindPlainString || l.Kind == rdfterm.KindTypedString ||
				rankOf(l) != rankNotNumeric || l.Kind == rdfterm.KindBoolean || l.Kind == rdfterm.KindDateTime
		})
	case OpIsNumeric:
		return evalTypeTest(ctx, e, env, func(l rdfterm.Literal) bool { return rankOf(l) != rankNotNumeric })

	case OpRand:
		return rdfterm.Double(ctx.Rand.Float64()), nil

	case OpMD5, OpSHA1, OpSHA256:
		return evalHash(ctx, e, env)

	case OpUUID:
		if ctx.NewBlankID == nil {
			return rdfterm.Literal{}, fmt.Errorf("expr: no id source configured")
		}
		return rdfterm.URI("urn:uuid:" + ctx.NewBlankID()), nil
	case OpStrUUID:
		if ctx.NewBlankID == nil {
			return rdfterm.Literal{}, fmt.Errorf("expr: no id source configured")
		}
		return rdfterm.PlainString(ctx.NewBlankID(), ""), nil

	case OpCast:
		a, err := Eval(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return castLiteral(a, e.CastType)

	case OpCount, OpSum, OpAvg, OpMin, OpMax, OpSample, OpGroupConcat:
		return rdfterm.Literal{}, fmt.Errorf("Aggregate expressions cannot be evaluated in a general scalar expression.")

	case OpExists, OpNotExists:
		if ctx.Exists == nil {
			return rdfterm.Literal{}, fmt.Errorf("expr: no EXISTS evaluator configured")
		}
		ok, err := ctx.Exists.Eval(e.ExistsPattern, e.Op == OpNotExists, env, ctx.Origin)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(ok), nil

	default:
		return rdfterm.Literal{}, fmt.Errorf("expr: unimplemented operator %v", e.Op)
	}
}

// evalBound implements BOUND(), the single exception to the early variable
// flattening. A bare variable-reference argument is checked for presence
// in env WITHOUT ever calling Eval on it (so an unbound variable never
// raises the error Eval would otherwise raise). Any other argument shape
// is evaluated normally and BOUND reports whether that succeeded.
func evalBound(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	arg := e.Args[0]
	if arg.Op == OpLiteral && arg.Lit.IsVariable() {
		_, ok := env[arg.Lit.VarName]
		return rdfterm.Boolean(ok), nil
	}
	_, err := Eval(ctx, arg, env)
	return rdfterm.Boolean(err == nil), nil
}

// evalBool computes the effective boolean value (EBV) of e, per the XPath
// coercion rules SPARQL inherits: booleans by value, numerics by
// non-zero-ness, strings by non-emptiness; anything else is a type error.
func evalBool(ctx *Context, e *Expr, env rdfterm.Bindings) (bool, error) {
	v, err := Eval(ctx, e, env)
	if err != nil {
		return false, err
	}
	return EffectiveBooleanValue(v)
}

// EffectiveBooleanValue is exported so rowsource's Filter and Having
// implementations can share the exact same coercion Eval uses internally.
func EffectiveBooleanValue(v rdfterm.Literal) (bool, error) {
	switch v.Kind {
	case rdfterm.KindBoolean:
		return v.Bool, nil
	case rdfterm.KindInteger:
		return v.Int != 0, nil
	case rdfterm.KindDecimal:
		return !v.Dec.IsZero(), nil
	case rdfterm.KindDouble:
		return v.Dbl != 0, nil
	case rdfterm.KindPlainString:
		return v.Lexical != "", nil
	case rdfterm.KindTypedString:
		if v.DatatypeURI == rdfterm.XSDString {
			return v.Lexical != "", nil
		}
		return false, fmt.Errorf("expr: cannot coerce typed literal <%s> to a boolean", v.DatatypeURI)
	default:
		return false, fmt.Errorf("expr: cannot coerce %s to a boolean", v.Kind)
	}
}

func evalAnd(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	lv, lerr := evalBool(ctx, e.Args[0], env)
	rv, rerr := evalBool(ctx, e.Args[1], env)
	switch {
	case lerr == nil && rerr == nil:
		return rdfterm.Boolean(lv && rv), nil
	case lerr == nil && !lv:
		return rdfterm.Boolean(false), nil
	case rerr == nil && !rv:
		return rdfterm.Boolean(false), nil
	case lerr != nil:
		return rdfterm.Literal{}, lerr
	default:
		return rdfterm.Literal{}, rerr
	}
}

func evalOr(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	lv, lerr := evalBool(ctx, e.Args[0], env)
	rv, rerr := evalBool(ctx, e.Args[1], env)
	switch {
	case lerr == nil && rerr == nil:
		return rdfterm.Boolean(lv || rv), nil
	case lerr == nil && lv:
		return rdfterm.Boolean(true), nil
	case rerr == nil && rv:
		return rdfterm.Boolean(true), nil
	case lerr != nil:
		return rdfterm.Literal{}, lerr
	default:
		return rdfterm.Literal{}, rerr
	}
}

func evalIn(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	needle, err := Eval(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	sawErr := false
	for _, cand := range e.Args[1:] {
		v, err := Eval(ctx, cand, env)
		if err != nil {
			sawErr = true
			continue
		}
		eq, err := ValueEqual(needle, v)
		if err != nil {
			sawErr = true
			continue
		}
		if eq {
			return rdfterm.Boolean(e.Op == OpIn), nil
		}
	}
	if sawErr {
		return rdfterm.Literal{}, fmt.Errorf("expr: IN()/NOT IN() comparison error against at least one candidate")
	}
	return rdfterm.Boolean(e.Op == OpNotIn), nil
}

func evalTypeTest(ctx *Context, e *Expr, env rdfterm.Bindings, pred func(rdfterm.Literal) bool) (rdfterm.Literal, error) {
	v, err := Eval(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	return rdfterm.Boolean(pred(v)), nil
}

func resolveURI(base, ref string) string {
	if base == "" || hasScheme(ref) {
		return ref
	}
	if len(ref) > 0 && ref[0] == '/' {
		return base + ref
	}
	return base + "/" + ref
}

func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == ':':
			return i > 0
		case s[i] == '/':
			return false
		}
	}
	return false
}
