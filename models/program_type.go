package models

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined program types offered by the console.
const (
	ProgramHealth            = "Health"
	ProgramSports            = "Sports"
	ProgramEducation         = "Education"
	ProgramWomensEmpowerment = "Womens Empowerment"
)

// programOther is the form sentinel for a free-text program type. It is
// resolved away before persistence and never stored.
const programOther = "Other"

// ProgramType is either one of the predefined program names or a custom
// free-text name. The zero value is invalid.
type ProgramType struct {
	name   string
	custom bool
}

// ResolveProgramType converts the two form fields (the selected option and
// the free-text value shown when "Other" is selected) into a ProgramType.
func ResolveProgramType(selected, custom string) (ProgramType, error) {
	switch selected {
	case ProgramHealth, ProgramSports, ProgramEducation, ProgramWomensEmpowerment:
		return ProgramType{name: selected}, nil
	case programOther:
		custom = strings.TrimSpace(custom)
		if custom == "" {
			return ProgramType{}, errors.New(`program type "Other" requires a custom program name`)
		}
		return ProgramType{name: custom, custom: true}, nil
	default:
		return ProgramType{}, fmt.Errorf("unknown program type %q", selected)
	}
}

// ProgramTypeFromStored rebuilds the variant from a persisted value: anything
// outside the predefined set is a custom type.
func ProgramTypeFromStored(value string) ProgramType {
	switch value {
	case ProgramHealth, ProgramSports, ProgramEducation, ProgramWomensEmpowerment:
		return ProgramType{name: value}
	default:
		return ProgramType{name: value, custom: true}
	}
}

// String returns the value to persist.
func (p ProgramType) String() string { return p.name }

func (p ProgramType) IsCustom() bool { return p.custom }

func (p ProgramType) IsZero() bool { return p.name == "" }
