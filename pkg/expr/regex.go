package expr

import (
	"fmt"
	"regexp"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Regex/string-matching uses the standard library's RE2 engine, which
// covers the XPath-subset REGEX() needs: literal matching plus the "i",
// "s" and "m" flags via the corresponding inline modifiers.
func compileRegex(ctx *Context, patExpr *Expr, env rdfterm.Bindings, flags string) (*regexp.Regexp, error) {
	pat, err := evalStrArg(ctx, patExpr, env)
	if err != nil {
		return nil, err
	}
	if flags != "" {
		if containsRune(flags, 'i') {
			pat = "(?i)" + pat
		}
		if containsRune(flags, 's') {
			pat = "(?s)" + pat
		}
		if containsRune(flags, 'm') {
			pat = "(?m)" + pat
		}
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("expr: invalid REGEX pattern %q: %w", pat, err)
	}
	return re, nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func evalRegex(ctx *Context, e *Expr, env rdfterm.Bindings) (rdfterm.Literal, error) {
	s, err := evalStrArg(ctx, e.Args[0], env)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	flags := e.RegexFlags
	if len(e.Args) > 2 {
		f, err := evalStrArg(ctx, e.Args[2], env)
		if err != nil {
			return rdfterm.Literal{}, err
		}
		flags = f
	}
	re, err := compileRegex(ctx, e.Args[1], env, flags)
	if err != nil {
		return rdfterm.Literal{}, err
	}
	matched := re.MatchString(s)
	if e.Op == OpStrNMatch {
		matched = !matched
	}
	return rdfterm.Boolean(matched), nil
}
