package domain

import "strings"

// StaffAccessCode maps a shared access code to the staff member it admits.
type StaffAccessCode struct {
	Code string `json:"code" bson:"code"`
	Name string `json:"name" bson:"name"`
	Role Role   `json:"role" bson:"role"`
}

// NormalizeAccessCode trims and upper-cases a code as entered on the login form.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultAccessCodes is used when the access code store is empty or unreachable.
var DefaultAccessCodes = map[string]StaffAccessCode{
	"ADMIN001": {Code: "ADMIN001", Name: "System Administrator", Role: RoleAdmin},
	"PO001":    {Code: "PO001", Name: "Project Officer", Role: RoleProjectOfficer},
	"PO002":    {Code: "PO002", Name: "Project Officer", Role: RoleProjectOfficer},
	"HOP001":   {Code: "HOP001", Name: "Head of Programs", Role: RoleHeadOfPrograms},
	"DIR001":   {Code: "DIR001", Name: "Director", Role: RoleDirector},
	"CEO001":   {Code: "CEO001", Name: "Chief Executive Officer", Role: RoleCEO},
}
