package expr

import "strings"

// opText names operators the way the algebra's bit-stable textual form
// spells them: lowercased operator words, so a comparison renders as
// "op lt(a, b)" and an addition as "op plus(a, b)".
var opText = map[Op]string{
	OpAnd: "and", OpOr: "or", OpNot: "bang",
	OpEq: "eq", OpNe: "neq", OpLt: "lt", OpGt: "gt", OpLe: "le", OpGe: "ge",
	OpSameTerm: "sameterm", OpBound: "bound",
	OpStr: "str", OpLang: "lang", OpDatatype: "datatype", OpLangMatches: "langmatches",
	OpRegex: "regex", OpStrMatch: "str_match", OpStrNMatch: "str_nmatch",
	OpIf: "if", OpCoalesce: "coalesce", OpIn: "in", OpNotIn: "notin",
	OpStrDt: "strdt", OpStrLang: "strlang", OpBnode: "bnode", OpUri: "uri", OpIri: "iri",
	OpPlus: "plus", OpMinus: "minus", OpMul: "star", OpDiv: "slash", OpUMinus: "uminus",
	OpConcat: "concat", OpSubstr: "substr", OpStrlen: "strlen", OpUcase: "ucase", OpLcase: "lcase",
	OpContains: "contains", OpStrStarts: "strstarts", OpStrEnds: "strends", OpReplace: "replace",
	OpEncodeForURI: "encode_for_uri",
	OpAbs:          "abs", OpCeil: "ceil", OpFloor: "floor", OpRound: "round",
	OpYear: "year", OpMonth: "month", OpDay: "day", OpHours: "hours", OpMinutes: "minutes",
	OpSeconds: "seconds", OpTimezone: "timezone", OpTz: "tz", OpNow: "now",
	OpIsURI: "isuri", OpIsBlank: "isblank", OpIsLiteral: "isliteral", OpIsNumeric: "isnumeric",
	OpRand: "rand", OpMD5: "md5", OpSHA1: "sha1", OpSHA256: "sha256",
	OpUUID: "uuid", OpStrUUID: "struuid",
	OpCount: "count", OpSum: "sum", OpAvg: "avg", OpMin: "min", OpMax: "max",
	OpSample: "sample", OpGroupConcat: "group_concat",
	OpExists: "exists", OpNotExists: "notexists", OpCast: "cast",
}

// Text renders the expression in the flat "op <name>(arg, arg)" form the
// algebra textual contract embeds inside Filter/Conditions blocks. A bare
// literal renders as the literal itself.
func (e *Expr) Text() string {
	if e == nil {
		return ""
	}
	if e.Op == OpLiteral {
		return e.Lit.String()
	}
	name := opText[e.Op]
	if name == "" {
		name = "unknown"
	}
	var sb strings.Builder
	sb.WriteString("op ")
	sb.WriteString(name)
	sb.WriteString("(")
	if e.Op.IsAggregate() && e.Distinct {
		sb.WriteString("distinct")
		if len(e.Args) > 0 {
			sb.WriteString(" ")
		}
	}
	for i, a := range e.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Text())
	}
	sb.WriteString(")")
	return sb.String()
}
