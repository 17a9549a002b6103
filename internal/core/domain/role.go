package domain

// Role is one of the fixed dashboard roles.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleBeneficiary    Role = "beneficiary"
	RoleProjectOfficer Role = "project_officer"
	RoleHeadOfPrograms Role = "head_of_programs"
	RoleDirector       Role = "director"
	RoleCEO            Role = "ceo"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleAdmin,
	RoleBeneficiary,
	RoleProjectOfficer,
	RoleHeadOfPrograms,
	RoleDirector,
	RoleCEO,
}

// StaffRoles are the roles that review requests.
var StaffRoles = []Role{
	RoleAdmin,
	RoleProjectOfficer,
	RoleHeadOfPrograms,
	RoleDirector,
	RoleCEO,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether r is a reviewing role.
func (r Role) IsStaff() bool {
	for _, known := range StaffRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
