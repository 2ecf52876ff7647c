package rdfterm

import "testing"

func TestVarTableDeclareIsIdempotentByName(t *testing.T) {
	vt := NewVarTable()
	a := vt.Declare("s", VarNormal)
	b := vt.Declare("s", VarNormal)
	if a != b {
		t.Errorf("declaring the same name twice must return the same offset, got %d and %d", a, b)
	}
	if vt.Len() != 1 {
		t.Errorf("Len() = %d, want 1", vt.Len())
	}
}

func TestVarTableDeclareAnonymousNeverAliases(t *testing.T) {
	vt := NewVarTable()
	named := vt.Declare("agg", VarNormal)
	anon := vt.DeclareAnonymous("agg")
	if named == anon {
		t.Errorf("DeclareAnonymous must mint a fresh slot even when the name collides")
	}
}

func TestVarTableSnapshotRestoreRoundTrips(t *testing.T) {
	vt := NewVarTable()
	off := vt.Declare("s", VarNormal)
	v := URI("http://example.org/a")
	vt.Set(off, &v)

	snap := vt.Snapshot()
	other := URI("http://example.org/b")
	vt.Set(off, &other)
	if got := vt.Get(off); got == nil || !got.SameTerm(other) {
		t.Fatalf("expected mutated value before restore")
	}

	vt.Restore(snap)
	if got := vt.Get(off); got == nil || !got.SameTerm(v) {
		t.Errorf("Restore did not bring back the snapshotted value, got %v", got)
	}
}
