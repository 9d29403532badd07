// Package models defines the client-side member records exchanged between the
// session store and the membership API.
package models

import (
	"strings"
	"time"
)

// UserStatus is the account state reported by the membership API.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// Role is the member's role.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is a member profile. It is created by registration or login, mutated
// by profile updates and dropped from memory on logout.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Name           string     `json:"name,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Status         UserStatus `json:"status"`
	Role           Role       `json:"role"`
	MembershipTier string     `json:"membershipTier,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
}

// IsActive reports whether the account may hold a session.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}

// DisplayName prefers Name, then "First Last", then Email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Email
}

// Merge returns u with every non-zero field of patch applied. ID is never
// changed by a merge.
func (u User) Merge(patch User) User {
	out := u
	if patch.Email != "" {
		out.Email = patch.Email
	}
	if patch.FirstName != "" {
		out.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		out.LastName = patch.LastName
	}
	if patch.Name != "" {
		out.Name = patch.Name
	}
	if patch.Phone != "" {
		out.Phone = patch.Phone
	}
	if patch.Status != "" {
		out.Status = patch.Status
	}
	if patch.Role != "" {
		out.Role = patch.Role
	}
	if patch.MembershipTier != "" {
		out.MembershipTier = patch.MembershipTier
	}
	if !patch.CreatedAt.IsZero() {
		out.CreatedAt = patch.CreatedAt
	}
	return out
}
