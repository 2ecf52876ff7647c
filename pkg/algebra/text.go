package algebra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rasqal-go/sparql/pkg/expr"
)

// Text renders the algebra tree in the bit-stable textual form the
// golden-file tests compare against: the operator label, an open paren and
// newline, each sub-item (child node or inline payload) indented two spaces
// deeper and separated by " ,\n", then a closing paren on the operator's own
// indent level. The empty BGP renders as the single letter "Z"; a non-empty
// BGP renders its triples inline; Project appends "Variables([ ?v ])",
// OrderBy appends "Conditions([ e1, e2 ])", Slice appends
// "slice limit N offset M", Graph appends "origin <literal>".
func (n *Node) Text() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

// item is one sub-line of an operator's rendering: either a child node
// (recursively written) or a payload annotation line.
type item struct {
	node    *Node
	payload string
}

func (n *Node) write(sb *strings.Builder, depth int) {
	if n == nil || n.IsEmptyBgp() {
		indent(sb, depth)
		sb.WriteString("Z")
		return
	}

	indent(sb, depth)
	sb.WriteString(labels[n.Op])

	switch n.Op {
	case OpBgp:
		sb.WriteString("(")
		for i, t := range n.Triples {
			if i > 0 {
				sb.WriteString(" . ")
			}
			sb.WriteString(t.String())
		}
		sb.WriteString(")")
		return

	case OpValues:
		sb.WriteString("(Variables([ " + strings.Join(prefixVars(n.ValuesVars), " ") + " ]) rows=" + strconv.Itoa(len(n.ValuesRows)) + ")")
		return
	}

	var items []item
	switch n.Op {
	case OpFilter, OpHaving:
		items = append(items, item{node: n.Child})
		for _, c := range n.Conditions {
			items = append(items, item{payload: c.Text()})
		}

	case OpJoin, OpLeftJoin:
		items = append(items, item{node: n.Left}, item{node: n.Right})
		if n.Condition != nil {
			items = append(items, item{payload: "Conditions([ " + n.Condition.Text() + " ])"})
		}

	case OpUnion, OpDiff:
		items = append(items, item{node: n.Left}, item{node: n.Right})

	case OpOrderBy:
		parts := make([]string, len(n.OrderConditions))
		for i, c := range n.OrderConditions {
			if c.Descending {
				parts[i] = "DESC(" + c.Expr.Text() + ")"
			} else {
				parts[i] = c.Expr.Text()
			}
		}
		items = append(items,
			item{node: n.Child},
			item{payload: "Conditions([ " + strings.Join(parts, ", ") + " ])"})

	case OpProject:
		items = append(items,
			item{node: n.Child},
			item{payload: "Variables([ " + strings.Join(prefixVars(n.Variables), " ") + " ])"})

	case OpSlice:
		items = append(items,
			item{node: n.Child},
			item{payload: fmt.Sprintf("slice limit %s offset %d", sliceLimitText(n.Limit), n.Offset)})

	case OpGraph:
		items = append(items,
			item{node: n.Child},
			item{payload: "origin " + n.Origin.String()})

	case OpAssign:
		items = append(items,
			item{node: n.Child},
			item{payload: "?" + n.AssignVar + " := " + n.AssignExp.Text()})

	case OpGroup:
		items = append(items,
			item{node: n.Child},
			item{payload: "Keys([ " + joinExprs(n.GroupKeys) + " ])"})

	case OpAggregation:
		parts := make([]string, len(n.Aggregates))
		for i, a := range n.Aggregates {
			parts[i] = "?" + a.Var + " := " + a.Expr.Text()
		}
		items = append(items,
			item{node: n.Child},
			item{payload: "Aggregates([ " + strings.Join(parts, ", ") + " ])"})

	case OpService:
		items = append(items,
			item{node: n.Child},
			item{payload: fmt.Sprintf("origin %s silent=%t", n.Origin.String(), n.Silent)})

	default: // OpToList, OpDistinct, OpReduced
		items = append(items, item{node: n.Child})
	}

	sb.WriteString("(\n")
	for i, it := range items {
		if i > 0 {
			sb.WriteString(" ,\n")
		}
		if it.payload != "" {
			indent(sb, depth+1)
			sb.WriteString(it.payload)
		} else {
			it.node.write(sb, depth+1)
		}
	}
	sb.WriteString("\n")
	indent(sb, depth)
	sb.WriteString(")")
}

func sliceLimitText(limit int64) string {
	if limit < 0 {
		return "none"
	}
	return strconv.FormatInt(limit, 10)
}

func prefixVars(vars []string) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = "?" + v
	}
	return out
}

func joinExprs(es []*expr.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Text()
	}
	return strings.Join(parts, ", ")
}
