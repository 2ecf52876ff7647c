// Package rowsource implements the pull-based row-source tree the compiled
// algebra executes against: one implementation per algebra operator, plus
// the EXISTS/NOT EXISTS sub-evaluator.
//
// Execution is single-threaded and cooperative: ReadRow is a plain
// blocking method call that pulls from the operator's children, not a
// channel receive, so a caller who wants concurrency runs independent
// queries on separate goroutines.
package rowsource

import (
	"strconv"
	"strings"

	"github.com/rasqal-go/sparql/pkg/rdfterm"
)

// Schema names the fixed-width variable columns a Rowsource's rows are
// indexed by.
type Schema struct {
	Vars []string
	idx  map[string]int
}

// NewSchema builds a Schema from an ordered, deduplicated variable list.
func NewSchema(vars []string) *Schema {
	s := &Schema{Vars: vars, idx: make(map[string]int, len(vars))}
	for i, v := range vars {
		s.idx[v] = i
	}
	return s
}

// Index returns the column index for a variable name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.idx[name]
	return i, ok
}

// Merge returns a new Schema whose columns are s's columns followed by any
// of other's columns not already present, used to build the output schema
// of a binary operator (Join/LeftJoin/Union).
func (s *Schema) Merge(other *Schema) *Schema {
	vars := append([]string(nil), s.Vars...)
	for _, v := range other.Vars {
		if _, ok := s.idx[v]; !ok {
			vars = append(vars, v)
		}
	}
	return NewSchema(vars)
}

// Row is one solution: a value per schema column, with an explicit bound
// flag so a column can be "present but unbound" (e.g. the outer side of a
// LeftJoin with no match, or an asymmetric Union branch).
type Row struct {
	Schema *Schema
	Values []rdfterm.Literal
	Bound  []bool

	// OrderVals is the parallel order-key array an OrderBy rowsource fills
	// in while sorting; nil for rows that never passed through an OrderBy.
	// OrderErrs marks keys whose evaluation errored.
	OrderVals []rdfterm.Literal
	OrderErrs []bool

	// GroupID is the dense group id a Group rowsource stamps, or -1.
	GroupID int64

	// Offset is the row's position within its producing rowsource, kept for
	// debugging and the textual form.
	Offset int
}

// NewRow allocates an all-unbound row over schema.
func NewRow(schema *Schema) *Row {
	return &Row{
		Schema:  schema,
		Values:  make([]rdfterm.Literal, len(schema.Vars)),
		Bound:   make([]bool, len(schema.Vars)),
		GroupID: -1,
	}
}

// Get returns the value bound to a variable name, if any.
func (r *Row) Get(name string) (rdfterm.Literal, bool) {
	i, ok := r.Schema.Index(name)
	if !ok || !r.Bound[i] {
		return rdfterm.Literal{}, false
	}
	return r.Values[i], true
}

// Set binds a variable's value by name; it is a caller bug to set a name
// not in the schema.
func (r *Row) Set(name string, v rdfterm.Literal) {
	i, ok := r.Schema.Index(name)
	if !ok {
		panic("rowsource: row schema has no column " + name)
	}
	r.Values[i] = v
	r.Bound[i] = true
}

// Clone returns an independent copy of r.
func (r *Row) Clone() *Row {
	cp := &Row{
		Schema:  r.Schema,
		Values:  append([]rdfterm.Literal(nil), r.Values...),
		Bound:   append([]bool(nil), r.Bound...),
		GroupID: r.GroupID,
		Offset:  r.Offset,
	}
	if r.OrderVals != nil {
		cp.OrderVals = append([]rdfterm.Literal(nil), r.OrderVals...)
		cp.OrderErrs = append([]bool(nil), r.OrderErrs...)
	}
	return cp
}

// String renders the row in the textual form the test contract pins down:
// "row[v1=lit, v2=lit]" cells, an optional " with ordering values [l1, l2]"
// block, an optional " group N" marker, and a terminal " offset N]".
func (r *Row) String() string {
	var sb strings.Builder
	sb.WriteString("row[")
	for i, v := range r.Schema.Vars {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v)
		sb.WriteString("=")
		if r.Bound[i] {
			sb.WriteString(r.Values[i].String())
		} else {
			sb.WriteString("NULL")
		}
	}
	if r.OrderVals != nil {
		sb.WriteString(" with ordering values [")
		for i, v := range r.OrderVals {
			if i > 0 {
				sb.WriteString(", ")
			}
			if r.OrderErrs != nil && r.OrderErrs[i] {
				sb.WriteString("NULL")
			} else {
				sb.WriteString(v.String())
			}
		}
		sb.WriteString("]")
	}
	if r.GroupID >= 0 {
		sb.WriteString(" group ")
		sb.WriteString(strconv.FormatInt(r.GroupID, 10))
	}
	sb.WriteString(" offset ")
	sb.WriteString(strconv.Itoa(r.Offset))
	sb.WriteString("]")
	return sb.String()
}

// ToBindings converts r into the immutable environment map package expr
// evaluates expressions against.
func (r *Row) ToBindings() rdfterm.Bindings {
	b := make(rdfterm.Bindings, len(r.Schema.Vars))
	for i, v := range r.Schema.Vars {
		if r.Bound[i] {
			b[v] = r.Values[i]
		}
	}
	return b
}

// Extend returns a new row over a merged schema, with r's columns copied in
// and other's columns copied in (other's values win only for columns r
// doesn't have, since callers are expected to have already checked
// join-compatibility before calling Extend).
func (r *Row) Extend(schema *Schema, other *Row) *Row {
	out := NewRow(schema)
	for i, v := range r.Schema.Vars {
		if r.Bound[i] {
			out.Set(v, r.Values[i])
		}
	}
	for i, v := range other.Schema.Vars {
		if other.Bound[i] {
			if _, already := out.Get(v); !already {
				out.Set(v, other.Values[i])
			}
		}
	}
	return out
}

// Compatible reports whether r and other agree (by strict RDF-term
// identity, per the SPARQL join-compatibility definition) on every
// variable they both bind.
func (r *Row) Compatible(other *Row) bool {
	for i, v := range r.Schema.Vars {
		if !r.Bound[i] {
			continue
		}
		if ov, ok := other.Get(v); ok {
			if !ov.SameTerm(r.Values[i]) {
				return false
			}
		}
	}
	return true
}
