package rbac

import (
	"fmt"
	"slices"
)

// 权限常量
const (
	PermissionReadProject      = "project:read"
	PermissionReadAllProjects  = "project:read_all" // 不受项目成员关系限制
	PermissionReadTimeline     = "timeline:read"
	PermissionReadAlerts       = "alerts:read"
	PermissionRefreshProject   = "project:refresh"
	PermissionUpdateMilestone  = "milestone:update"
	PermissionUpdateActionPlan = "actionplan:update"
)

// 角色常量
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleEngineer       = "engineer"
	RoleViewer         = "viewer"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionReadProject,
		PermissionReadAllProjects,
		PermissionReadTimeline,
		PermissionReadAlerts,
		PermissionRefreshProject,
		PermissionUpdateMilestone,
		PermissionUpdateActionPlan,
	},
	RoleProjectManager: {
		PermissionReadProject,
		PermissionReadAllProjects,
		PermissionReadTimeline,
		PermissionReadAlerts,
		PermissionRefreshProject,
		PermissionUpdateMilestone,
		PermissionUpdateActionPlan,
	},
	RoleEngineer: {
		PermissionReadProject,
		PermissionReadTimeline,
		PermissionReadAlerts,
		PermissionRefreshProject,
		PermissionUpdateActionPlan,
	},
	RoleViewer: {
		PermissionReadProject,
		PermissionReadTimeline,
		PermissionReadAlerts,
	},
}

// KnownRole reports whether role is defined.
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色列表中是否有任一角色具备指定权限
func HasPermission(roles []string, permission string) bool {
	for _, role := range roles {
		if slices.Contains(rolePermissions[role], permission) {
			return true
		}
	}
	return false
}

// CheckPermission 检查权限（返回错误而不是布尔值，便于处理）
func CheckPermission(roles []string, permission string) error {
	if !HasPermission(roles, permission) {
		return &PermissionDeniedError{
			Roles:      roles,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Roles      []string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("insufficient permissions: %s required", e.Permission)
}
