package models

import "testing"

func TestResolveProgramTypePredefined(t *testing.T) {
	for _, name := range []string{ProgramHealth, ProgramSports, ProgramEducation, ProgramWomensEmpowerment} {
		p, err := ResolveProgramType(name, "")
		if err != nil {
			t.Fatalf("ResolveProgramType(%q): %v", name, err)
		}
		if p.String() != name || p.IsCustom() {
			t.Errorf("got %q custom=%v, want predefined %q", p.String(), p.IsCustom(), name)
		}
	}
}

func TestResolveProgramTypeOther(t *testing.T) {
	p, err := ResolveProgramType("Other", "Street Theatre")
	if err != nil {
		t.Fatalf("ResolveProgramType: %v", err)
	}
	if p.String() != "Street Theatre" || !p.IsCustom() {
		t.Errorf("got %q custom=%v, want the custom text, never the sentinel", p.String(), p.IsCustom())
	}
}

func TestResolveProgramTypeOtherRequiresText(t *testing.T) {
	for _, custom := range []string{"", "   "} {
		if _, err := ResolveProgramType("Other", custom); err == nil {
			t.Errorf("ResolveProgramType(Other, %q): expected error", custom)
		}
	}
}

func TestResolveProgramTypeUnknown(t *testing.T) {
	if _, err := ResolveProgramType("Gardening", ""); err == nil {
		t.Error("expected error for a value outside the predefined set")
	}
}

func TestProgramTypeFromStored(t *testing.T) {
	if p := ProgramTypeFromStored("Health"); p.IsCustom() {
		t.Error("Health should map to the predefined variant")
	}
	if p := ProgramTypeFromStored("Street Theatre"); !p.IsCustom() {
		t.Error("unrecognized stored value should map to the custom variant")
	}
}
