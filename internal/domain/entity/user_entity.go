package entity

// User is the login account read by the authentication adapter. It overlaps
// with Member in shape but is a separate table.
// Password is a bcrypt hash.
type User struct {
	ID       int64
	Username string
	Password string
	Roles    []string
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role string) bool {
	return HasRole(u.Roles, role)
}
