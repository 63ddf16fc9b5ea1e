package models

// Role is the single classification a user holds. The set is closed.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReporter Role = "reporter"
	RoleAdopter  Role = "adopter"
	RoleSeller   Role = "seller"
	RoleShelter  Role = "shelter"
	RoleStore    Role = "store"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleReporter, RoleAdopter, RoleSeller, RoleShelter, RoleStore}

// ParseRole returns the Role named by s and whether it is valid.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// DefaultRedirectURL is where users with an unrecognised role land.
const DefaultRedirectURL = "/index.html"

// RedirectURL is the dashboard page a user of this role is sent to after login.
func (r Role) RedirectURL() string {
	if !r.Valid() {
		return DefaultRedirectURL
	}
	return "/pages/" + string(r) + "/" + string(r) + "-dashboard.html"
}
