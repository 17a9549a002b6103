package domain

import "time"

// Identity is the authenticated actor behind a request. It is either a
// RegularUser (persisted account) or a StaffUser (rebuilt from a staff token).
// Callers that need variant-specific data switch on the concrete type.
type Identity interface {
	IdentityID() string
	IdentityRole() Role
	DisplayName() string
	identity()
}

// RegularUser is an account holder who signed in with email and password.
type RegularUser struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
}

func (u RegularUser) IdentityID() string  { return u.ID }
func (u RegularUser) IdentityRole() Role  { return u.Role }
func (u RegularUser) DisplayName() string { return u.FullName }
func (RegularUser) identity()             {}

// StaffUser is a staff member who signed in with an access code. It only
// lives as long as the token it was decoded from.
type StaffUser struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	StaffNumber string    `json:"staff_number"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s StaffUser) IdentityID() string  { return s.ID }
func (s StaffUser) IdentityRole() Role  { return s.Role }
func (s StaffUser) DisplayName() string { return s.Name }
func (StaffUser) identity()             {}

// StaffIDPrefix is prepended to the access code to form a staff identity id.
const StaffIDPrefix = "staff_"

// StaffIDFor returns the synthetic identity id for an access code.
func StaffIDFor(code string) string {
	return StaffIDPrefix + code
}
