package domain

// Role is the account role chosen at registration.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists every selectable role, default first.
var Roles = []Role{RoleStudent, RoleAdmin}

// ValidRole returns true if r is one of Roles.
func ValidRole(r Role) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// NextRole cycles through Roles. Unknown roles restart at the default.
func NextRole(r Role, step int) Role {
	idx := 0
	for i, v := range Roles {
		if v == r {
			idx = i
			break
		}
	}
	n := len(Roles)
	return Roles[((idx+step)%n+n)%n]
}
