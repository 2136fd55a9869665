package authz

// Permission identifies an atomic capability, orthogonal to role ranking.
type Permission string

// Content permissions.
const (
	PermContentView    Permission = "content.view"
	PermContentEdit    Permission = "content.edit"
	PermContentPublish Permission = "content.publish"
	PermContentDelete  Permission = "content.delete"
)

// Account and user management permissions.
const (
	PermUsersView     Permission = "users.view"
	PermUsersManage   Permission = "users.manage"
	PermAccountManage Permission = "account.manage"
)

// Billing and analytics permissions.
const (
	PermBillingView   Permission = "billing.view"
	PermBillingManage Permission = "billing.manage"
	PermAnalyticsView Permission = "analytics.view"
)

// rolePermissions is the static role/permission matrix. Every enumerated role
// has an entry; the mapping never changes after process start.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermContentView, PermContentEdit, PermContentPublish, PermContentDelete,
		PermUsersView, PermUsersManage, PermAccountManage,
		PermBillingView, PermBillingManage, PermAnalyticsView,
	},
	RoleManager: {
		PermContentView, PermContentEdit, PermContentPublish, PermContentDelete,
		PermUsersView, PermUsersManage,
		PermBillingView, PermAnalyticsView,
	},
	RoleEditor: {
		PermContentView, PermContentEdit, PermContentPublish,
		PermAnalyticsView,
	},
	RoleAuthor: {
		PermContentView, PermContentEdit,
	},
	RoleViewer: {
		PermContentView,
	},
	RoleBilling: {
		PermBillingView, PermBillingManage,
	},
	RoleAnalytics: {
		PermAnalyticsView,
	},
}

// RolePermissions returns a copy of the permission set granted to a role.
// Unknown roles yield an empty set.
func RolePermissions(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasAnyPermission reports whether the role holds at least one of the
// required permissions (OR semantics). An empty requirement always passes.
func HasAnyPermission(role Role, required []Permission) bool {
	if len(required) == 0 {
		return true
	}
	granted := grantedSet(role)
	for _, p := range required {
		if _, ok := granted[p]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every required permission
// (AND semantics). An empty requirement always passes.
func HasAllPermissions(role Role, required []Permission) bool {
	granted := grantedSet(role)
	for _, p := range required {
		if _, ok := granted[p]; !ok {
			return false
		}
	}
	return true
}

func grantedSet(role Role) map[Permission]struct{} {
	perms := rolePermissions[role]
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
