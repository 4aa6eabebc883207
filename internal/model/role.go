package model

// Role is the closed set of account categories.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleTeacher   Role = "TEACHER"
	RoleAdmin     Role = "ADMIN"
	RoleDirection Role = "DIRECTION"
)

// Roles returns every known role.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleDirection}
}

// RolesWhere returns the roles for which allowed holds, in Roles order.
func RolesWhere(allowed func(Role) bool) []Role {
	var out []Role
	for _, r := range Roles() {
		if allowed(r) {
			out = append(out, r)
		}
	}
	return out
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleDirection:
		return true
	default:
		return false
	}
}

// CanManageAcademics reports whether r may write the catalogue, users and inscriptions.
func (r Role) CanManageAcademics() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent, RoleTeacher, RoleDirection:
		return false
	default:
		return false
	}
}

// CanViewStatistics reports whether r may read dashboards and user listings.
func (r Role) CanViewStatistics() bool {
	switch r {
	case RoleAdmin, RoleDirection:
		return true
	case RoleStudent, RoleTeacher:
		return false
	default:
		return false
	}
}

// CanGrade reports whether r may enter grades.
func (r Role) CanGrade() bool {
	switch r {
	case RoleTeacher, RoleAdmin:
		return true
	case RoleStudent, RoleDirection:
		return false
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
