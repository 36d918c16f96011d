package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_Matrix(t *testing.T) {
	cases := []struct {
		roles      []string
		permission string
		want       bool
	}{
		{[]string{RoleAdmin}, PermissionUpdateMilestone, true},
		{[]string{RoleProjectManager}, PermissionReadAllProjects, true},
		{[]string{RoleEngineer}, PermissionReadAllProjects, false},
		{[]string{RoleEngineer}, PermissionUpdateActionPlan, true},
		{[]string{RoleEngineer}, PermissionUpdateMilestone, false},
		{[]string{RoleViewer}, PermissionReadAlerts, true},
		{[]string{RoleViewer}, PermissionRefreshProject, false},
		{[]string{RoleViewer, RoleEngineer}, PermissionRefreshProject, true},
		{[]string{"unknown"}, PermissionReadProject, false},
		{nil, PermissionReadProject, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.roles, c.permission), "%v %s", c.roles, c.permission)
	}
}

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission([]string{RoleAdmin}, PermissionReadAlerts))

	err := CheckPermission([]string{RoleViewer}, PermissionUpdateMilestone)
	var denied *PermissionDeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, PermissionUpdateMilestone, denied.Permission)
	assert.Contains(t, err.Error(), "milestone:update")
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole(RoleViewer))
	assert.False(t, KnownRole("superuser"))
}
