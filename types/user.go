package types

import (
	"fmt"
	"strings"
)

// Role is a total order over the three access levels, compared numerically.
type Role int

const (
	RoleReadOnly Role = iota + 1
	RoleUploader
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleReadOnly:
		return "readonly"
	case RoleUploader:
		return "uploader"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ParseRole maps a credentials-file role string onto the closed enum.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "readonly", "read-only", "read":
		return RoleReadOnly, nil
	case "uploader", "upload":
		return RoleUploader, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// User is an authenticated caller: the username plus its resolved role.
type User struct {
	Name string
	Role Role
}
