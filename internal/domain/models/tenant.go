package models

import (
	"fmt"
	"time"
)

// Tenant is an isolated workspace. Every user gets one at signup.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// MembershipRole is the role a user holds within a tenant.
type MembershipRole string

const (
	RoleAdmin  MembershipRole = "admin"
	RoleMember MembershipRole = "member"
)

// ParseMembershipRole validates a role read from storage or input.
func ParseMembershipRole(s string) (MembershipRole, error) {
	switch MembershipRole(s) {
	case RoleAdmin, RoleMember:
		return MembershipRole(s), nil
	}
	return "", fmt.Errorf("unknown membership role: %q", s)
}

// TenantMembership links a user to a tenant. It has no lifecycle of its
// own: deleting either side cascades to the membership row.
type TenantMembership struct {
	ID        string
	UserID    string
	TenantID  string
	Role      MembershipRole
	CreatedAt time.Time
}
