// Package authz defines the role hierarchy, the role/permission matrix and
// the per-route policy model used by the guard pipeline. Everything here is
// pure and safe for concurrent reads.
package authz

import "sort"

// Role identifies an account-scoped role.
// Keep these stable; they are part of auth contracts and persisted memberships.
type Role string

// Hierarchical roles, ordered by privilege (admin highest).
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleEditor  Role = "editor"
	RoleAuthor  Role = "author"
	RoleViewer  Role = "viewer"
)

// Special roles sit outside the hierarchy. They never satisfy a minimum-role
// requirement unless explicitly allow-listed on the route.
const (
	RoleBilling   Role = "billing"
	RoleAnalytics Role = "analytics"
)

// roleRanks assigns each hierarchical role a strictly increasing rank.
// Lower rank means more privilege. Special roles carry no rank.
var roleRanks = map[Role]int{
	RoleAdmin:   1,
	RoleManager: 2,
	RoleEditor:  3,
	RoleAuthor:  4,
	RoleViewer:  5,
}

var specialRoles = map[Role]struct{}{
	RoleBilling:   {},
	RoleAnalytics: {},
}

// Rank returns the hierarchy rank of a role. The second return value is
// false for special and unknown roles.
func Rank(role Role) (int, bool) {
	rank, ok := roleRanks[role]
	return rank, ok
}

// IsHierarchical reports whether the role participates in the privilege order.
func IsHierarchical(role Role) bool {
	_, ok := roleRanks[role]
	return ok
}

// KnownRole reports whether the role is part of the enumerated set.
func KnownRole(role Role) bool {
	if _, ok := roleRanks[role]; ok {
		return true
	}
	_, ok := specialRoles[role]
	return ok
}

// HasMinimumRole reports whether actual satisfies the minimum role
// requirement. Additional roles are an explicit allow-list for the route and
// match verbatim, which is the only way a special role gains access.
//
// Super-admin bypass is deliberately not handled here; callers check the
// principal flag before consulting the hierarchy.
func HasMinimumRole(actual, minimum Role, additional ...Role) bool {
	for _, role := range additional {
		if actual == role {
			return true
		}
	}
	actualRank, ok := roleRanks[actual]
	if !ok {
		// Special (or unknown) roles only enter through the allow-list.
		return false
	}
	minimumRank, ok := roleRanks[minimum]
	if !ok {
		// A special role as a minimum requirement is unsatisfiable by rank.
		return false
	}
	return actualRank <= minimumRank
}

// RolesWithMinimumAccess returns every hierarchical role that satisfies the
// minimum requirement, ordered by privilege, followed by the additional roles
// verbatim. Diagnostics helper; not on the authorization hot path.
func RolesWithMinimumAccess(minimum Role, additional ...Role) []Role {
	var roles []Role
	if minimumRank, ok := roleRanks[minimum]; ok {
		for role, rank := range roleRanks {
			if rank <= minimumRank {
				roles = append(roles, role)
			}
		}
		sort.Slice(roles, func(i, j int) bool {
			return roleRanks[roles[i]] < roleRanks[roles[j]]
		})
	}
	return append(roles, additional...)
}
