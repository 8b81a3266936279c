package models

import (
	"encoding/json"
	"sort"
)

// Permission is a capability flag granted to a user through their role.
// Values are opaque to the client and only ever checked for membership.
type Permission string

// Platform permissions.
const (
	PermissionManageCompanies  Permission = "manage:companies"
	PermissionViewAllCompanies Permission = "view:all_companies"
)

// Company administration permissions.
const (
	PermissionManageUsers           Permission = "manage:users"
	PermissionViewUsers             Permission = "view:users"
	PermissionManageRoles           Permission = "manage:roles"
	PermissionViewRoles             Permission = "view:roles"
	PermissionManageCompanySettings Permission = "manage:company_settings"
	PermissionViewActivityLogs      Permission = "view:activity_logs"
	PermissionViewAnalytics         Permission = "view:analytics"
)

// Team permissions.
const (
	PermissionViewTeamUsers    Permission = "view:team_users"
	PermissionViewTeamActivity Permission = "view:team_activity"
	PermissionManageTeamChats  Permission = "manage:team_chats"
)

// Chat permissions.
const (
	PermissionCreateChat      Permission = "create:chat"
	PermissionViewOwnChats    Permission = "view:own_chats"
	PermissionManageOwnChats  Permission = "manage:own_chats"
	PermissionSendMessages    Permission = "send:messages"
	PermissionUploadDocuments Permission = "upload:documents"
	PermissionViewOwnProfile  Permission = "view:own_profile"
	PermissionEditOwnProfile  Permission = "edit:own_profile"
)

// PermissionSet is the set of permissions held by the current session.
// The zero value is an empty set and denies everything.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from raw permission strings as returned by the API.
func NewPermissionSet(perms ...string) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		set[Permission(p)] = struct{}{}
	}
	return set
}

// Has reports whether p is in the set. A nil set has nothing.
func (s PermissionSet) Has(p Permission) bool {
	if s == nil || p == "" {
		return false
	}
	_, ok := s[p]
	return ok
}

// Slice returns the permissions in sorted order.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a sorted string array.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a string array into the set.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewPermissionSet(raw...)
	return nil
}
