package authz

// Access controls whether a route requires authentication at all.
// The zero value inherits from the enclosing group.
type Access int

const (
	// AccessInherit defers to the group-level declaration.
	AccessInherit Access = iota
	// AccessProtected requires an authenticated principal.
	AccessProtected
	// AccessPublic skips every guard stage, authentication included.
	AccessPublic
)

// Logic selects how a required-permission list is evaluated.
type Logic int

const (
	// LogicAny passes when at least one required permission is granted.
	LogicAny Logic = iota
	// LogicAll requires every listed permission.
	LogicAll
)

// Policy is the declarative authorization metadata attached to a route or a
// route group at registration time. A zero Policy declares nothing: the route
// inherits the group declaration for each concern, and an undeclared concern
// falls back to its neutral default (protected, any authenticated principal,
// no permission requirement).
type Policy struct {
	Access              Access
	MinimumRole         Role
	AdditionalRoles     []Role
	RequiredPermissions []Permission
	PermissionLogic     Logic
}

// Public reports whether the policy marks the route public.
func (p Policy) Public() bool {
	return p.Access == AccessPublic
}

// RequiresRole reports whether a minimum-role concern is declared.
func (p Policy) RequiresRole() bool {
	return p.MinimumRole != "" || len(p.AdditionalRoles) > 0
}

// RequiresPermissions reports whether a permission concern is declared.
func (p Policy) RequiresPermissions() bool {
	return len(p.RequiredPermissions) > 0
}

// Merge combines a group-level policy with a route-level override. Each
// concern is merged independently: declaring a role requirement on the route
// does not clear an inherited permission requirement, and vice versa. The
// allow-list travels with the role concern and the logic with the permission
// concern.
func Merge(group, route Policy) Policy {
	merged := group
	if route.Access != AccessInherit {
		merged.Access = route.Access
	}
	if route.RequiresRole() {
		merged.MinimumRole = route.MinimumRole
		merged.AdditionalRoles = route.AdditionalRoles
	}
	if route.RequiresPermissions() {
		merged.RequiredPermissions = route.RequiredPermissions
		merged.PermissionLogic = route.PermissionLogic
	}
	return merged
}
