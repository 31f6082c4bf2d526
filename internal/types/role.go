// Package types provides type definitions shared by the career-admin packages.
package types

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// RoleType is a job target used to filter which career records are relevant
type RoleType string

// Known role types
const (
	RoleTechnicalWriter         RoleType = "technical_writer"
	RoleTechnicalWritingManager RoleType = "technical_writing_manager"
	RoleSoftwareEngineer        RoleType = "software_engineer"
	RoleEngineeringManager      RoleType = "engineering_manager"
)

// AllRoleTypes lists the known role types in display order
var AllRoleTypes = []RoleType{
	RoleTechnicalWriter,
	RoleTechnicalWritingManager,
	RoleSoftwareEngineer,
	RoleEngineeringManager,
}

// IsKnown reports whether r is one of the four defined role types.
// Unknown values are still accepted everywhere; they simply render as-is.
func (r RoleType) IsKnown() bool {
	for _, known := range AllRoleTypes {
		if r == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable form: underscores become spaces and each word is title-cased.
// "software_engineer" -> "Software Engineer"
func (r RoleType) Label() string {
	words := strings.Fields(strings.ReplaceAll(string(r), "_", " "))
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(first)) + w[size:]
	}
	return strings.Join(words, " ")
}

func (r RoleType) String() string {
	return string(r)
}
