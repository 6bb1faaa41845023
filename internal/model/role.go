package model

// Role is the permission level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Permission is a named capability checked by the authorization gate.
type Permission string

const (
	PermReadEmployees   Permission = "employees:read"
	PermManageEmployees Permission = "employees:manage"
	PermReadLogs        Permission = "logs:read"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin:    {PermReadEmployees, PermManageEmployees, PermReadLogs},
	RoleEmployee: {PermReadEmployees},
}

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Can reports whether the role holds permission p.
func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
