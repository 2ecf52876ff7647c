package rdfterm

// Triple is an ordered (subject, predicate, object) pattern, plus an
// optional Origin (graph name term) for named-graph scoping. Any position
// may be a Literal with Kind == KindVariable.
type Triple struct {
	Subject   Literal
	Predicate Literal
	Object    Literal
	Origin    *Literal // nil == default graph
}

// IsGround reports whether every position of the triple (including Origin,
// if present) is variable-free.
func (t Triple) IsGround() bool {
	if t.Subject.IsVariable() || t.Predicate.IsVariable() || t.Object.IsVariable() {
		return false
	}
	if t.Origin != nil && t.Origin.IsVariable() {
		return false
	}
	return true
}

// Variables returns the distinct variable names referenced by this triple,
// including Origin if it is a variable, in subject/predicate/object/origin
// order with duplicates removed.
func (t Triple) Variables() []string {
	var out []string
	seen := map[string]bool{}
	add := func(l Literal) {
		if l.IsVariable() && !seen[l.VarName] {
			seen[l.VarName] = true
			out = append(out, l.VarName)
		}
	}
	add(t.Subject)
	add(t.Predicate)
	add(t.Object)
	if t.Origin != nil {
		add(*t.Origin)
	}
	return out
}

// Instantiate produces a copy of the triple where each variable position
// that is bound in bindings is replaced by its value; an unbound Variable
// literal is left in place for the pattern matcher to bind.
func (t Triple) Instantiate(bindings map[string]Literal) Triple {
	sub := func(l Literal) Literal {
		if l.IsVariable() {
			if v, ok := bindings[l.VarName]; ok {
				return v
			}
		}
		return l
	}
	out := Triple{Subject: sub(t.Subject), Predicate: sub(t.Predicate), Object: sub(t.Object)}
	if t.Origin != nil {
		o := sub(*t.Origin)
		out.Origin = &o
	}
	return out
}

func (t Triple) String() string {
	s := t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String()
	if t.Origin != nil {
		s += " [origin " + t.Origin.String() + "]"
	}
	return s
}
