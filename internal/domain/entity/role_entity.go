package entity

import "strings"

// Role names used by the access rules.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// HasRole is a case-insensitive membership test.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}
