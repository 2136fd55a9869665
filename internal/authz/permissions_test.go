package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryRoleHasMatrixEntry(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager, RoleEditor, RoleAuthor, RoleViewer, RoleBilling, RoleAnalytics} {
		if _, ok := rolePermissions[role]; !ok {
			t.Fatalf("role %s missing from matrix", role)
		}
	}
}

func TestRolePermissionsStableCopy(t *testing.T) {
	first := RolePermissions(RoleAuthor)
	first[0] = Permission("tampered")
	second := RolePermissions(RoleAuthor)
	require.Equal(t, []Permission{PermContentView, PermContentEdit}, second)
}

func TestRolePermissionsUnknownRole(t *testing.T) {
	require.Empty(t, RolePermissions(Role("intern")))
}

func TestHasAnyPermission(t *testing.T) {
	require.True(t, HasAnyPermission(RoleViewer, []Permission{PermContentView, PermContentDelete}))
	require.False(t, HasAnyPermission(RoleViewer, []Permission{PermContentDelete, PermBillingView}))
	require.True(t, HasAnyPermission(RoleViewer, nil))
	require.False(t, HasAnyPermission(Role("intern"), []Permission{PermContentView}))
}

func TestHasAllPermissions(t *testing.T) {
	require.True(t, HasAllPermissions(RoleManager, []Permission{PermContentEdit, PermUsersManage}))
	require.False(t, HasAllPermissions(RoleEditor, []Permission{PermContentEdit, PermUsersManage}))
	require.True(t, HasAllPermissions(RoleViewer, nil))
}

func TestAllImpliesAny(t *testing.T) {
	sets := [][]Permission{
		{PermContentView},
		{PermContentEdit, PermContentPublish},
		{PermBillingView, PermBillingManage},
		{PermUsersView, PermUsersManage, PermAccountManage},
	}
	for _, role := range []Role{RoleAdmin, RoleManager, RoleEditor, RoleAuthor, RoleViewer, RoleBilling, RoleAnalytics} {
		for _, required := range sets {
			if HasAllPermissions(role, required) && !HasAnyPermission(role, required) {
				t.Fatalf("role %s: hasAll without hasAny for %v", role, required)
			}
		}
	}
}
