package expr

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// evalStringFunc implements the SPARQL string-function family, built on
// the lexical-form handling established by Literal.Str.
func evalStringFunc(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	switch e.Op {
	case OpConcat:
		var sb strings.Builder
		for _, a := range e.Args {
			v, err := Eval(ctx, a, env)
			if err != nil {
				return rdfterm.Literal{}, err
			}
			sb.WriteString(v.Str())
		}
		return rdfterm.PlainString(sb.String(), ""), nil

	case OpSubstr:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		start, err := evalIntArg(ctx, e.Args[1], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		runes := []rune(s)
		from := clampIndex(int(start)-1, len(runes))
		length := len(runes) - from
		if len(e.Args) > 2 {
			l, err := evalIntArg(ctx, e.Args[2], env)
			if err != nil {
				return rdfterm.Literal{}, err
			}
			length = clampIndex(int(l), len(runes)-from)
		}
		return rdfterm.PlainString(string(runes[from:from+length]), ""), nil

	case OpStrlen:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Integer(int64(len([]rune(s)))), nil

	case OpUcase:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(strings.ToUpper(s), ""), nil

	case OpLcase:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(strings.ToLower(s), ""), nil

	case OpContains:
		a, b, err := evalStrPair(ctx, e, env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(strings.Contains(a, b)), nil

	case OpStrStarts:
		a, b, err := evalStrPair(ctx, e, env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(strings.HasPrefix(a, b)), nil

	case OpStrEnds:
		a, b, err := evalStrPair(ctx, e, env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.Boolean(strings.HasSuffix(a, b)), nil

	case OpReplace:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		pat, err := compileRegex(ctx, e.Args[1], env, e.RegexFlags)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		repl, err := evalStrArg(ctx, e.Args[2], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(pat.ReplaceAllString(s, repl), ""), nil

	case OpEncodeForURI:
		s, err := evalStrArg(ctx, e.Args[0], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		return rdfterm.PlainString(url.QueryEscape(s), ""), nil
	}
	return rdfterm.Literal{}, fmt.Errorf("expr: unreachable string operator %v", e.Op)
}

func evalStrArg(ctx *Context, e *Expr, env rdfterm.Bindings) (string, error) {
	v, err := Eval(ctx, e, env)
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func evalIntArg(ctx *Context, e *Expr, env rdfterm.Bindings) (int64, error) {
	v, err := Eval(ctx, e, env)
	if err != nil {
		return 0, err
	}
	if rankOf(v) == rankNotNumeric {
		return 0, fmt.Errorf("expr: expected a numeric argument, got %s", v.Kind)
	}
	return int64(asFloat(v)), nil
}

func evalStrPair(ctx *Context, e *Expr, env rdfterm.Bindings) (string, string, error) {
	a, err := evalStrArg(ctx, e.Args[0], env)
	if err != nil {
		return "", "", err
	}
	b, err := evalStrArg(ctx, e.Args[1], env)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// evalLangMatches implements LANGMATCHES(), RFC 4647 basic filtering: "*"
// matches any non-empty tag, and any other range matches, case-insensitively,
// a tag equal to it or a tag that continues it with "-". A range ending in
// "-*" gets no special treatment.
func evalLangMatches(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	tag, err := evalStrArg(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	rng, err := evalStrArg(ctx, e.Args[1], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	return rdfterm.Boolean(langMatches(tag, rng)), nil
}

func langMatches(tag, rng string) bool {
	if rng == "*" {
		return tag != ""
	}
	tag, rng = strings.ToLower(tag), strings.ToLower(rng)
	if tag == rng {
		return true
	}
	return strings.HasPrefix(tag, rng+"-")
}
