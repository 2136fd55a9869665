package authz

import "testing"

func TestMergeNeutralDefaults(t *testing.T) {
	merged := Merge(Policy{}, Policy{})
	if merged.Public() {
		t.Fatalf("zero policy must not be public")
	}
	if merged.RequiresRole() || merged.RequiresPermissions() {
		t.Fatalf("zero policy must declare nothing")
	}
}

func TestMergeRouteOverridesGroup(t *testing.T) {
	group := Policy{
		MinimumRole:         RoleManager,
		RequiredPermissions: []Permission{PermUsersView},
	}
	route := Policy{MinimumRole: RoleAdmin}
	merged := Merge(group, route)
	if merged.MinimumRole != RoleAdmin {
		t.Fatalf("route role should override group, got %s", merged.MinimumRole)
	}
	// A role override must not clear the inherited permission requirement.
	if len(merged.RequiredPermissions) != 1 || merged.RequiredPermissions[0] != PermUsersView {
		t.Fatalf("inherited permissions lost: %v", merged.RequiredPermissions)
	}
}

func TestMergePermissionConcernCarriesLogic(t *testing.T) {
	group := Policy{RequiredPermissions: []Permission{PermContentView}, PermissionLogic: LogicAll}
	route := Policy{RequiredPermissions: []Permission{PermContentEdit, PermContentPublish}}
	merged := Merge(group, route)
	if merged.PermissionLogic != LogicAny {
		t.Fatalf("route permission declaration should reset logic to its own value")
	}
	if len(merged.RequiredPermissions) != 2 {
		t.Fatalf("expected route permissions, got %v", merged.RequiredPermissions)
	}
}

func TestMergeAdditionalRolesTravelWithRoleConcern(t *testing.T) {
	group := Policy{MinimumRole: RoleAdmin, AdditionalRoles: []Role{RoleBilling}}
	route := Policy{MinimumRole: RoleManager}
	merged := Merge(group, route)
	if len(merged.AdditionalRoles) != 0 {
		t.Fatalf("route role declaration must replace the allow-list, got %v", merged.AdditionalRoles)
	}
}

func TestMergeAccess(t *testing.T) {
	group := Policy{Access: AccessPublic}
	if !Merge(group, Policy{}).Public() {
		t.Fatalf("route should inherit public from group")
	}
	if Merge(group, Policy{Access: AccessProtected}).Public() {
		t.Fatalf("route should be able to re-protect a public group")
	}
	if !Merge(Policy{}, Policy{Access: AccessPublic}).Public() {
		t.Fatalf("route should be able to declare public")
	}
}
