package fakeapi

import "github.com/raphaelgruber/tenantchat/internal/models"

// Default role names.
const (
	RoleSuperAdmin   = "super_admin"
	RoleCompanyAdmin = "company_admin"
	RoleManager      = "manager"
	RoleEmployee     = "employee"
)

var roleOrder = []string{RoleSuperAdmin, RoleCompanyAdmin, RoleManager, RoleEmployee}

var roleDescriptions = map[string]string{
	RoleSuperAdmin:   "Platform administrator",
	RoleCompanyAdmin: "Manages users, roles and settings of the company",
	RoleManager:      "Oversees a team",
	RoleEmployee:     "Chats with the assistant",
}

var employeePermissions = []models.Permission{
	models.PermissionCreateChat,
	models.PermissionViewOwnChats,
	models.PermissionManageOwnChats,
	models.PermissionSendMessages,
	models.PermissionUploadDocuments,
	models.PermissionViewOwnProfile,
	models.PermissionEditOwnProfile,
}

var companyAdminPermissions = []models.Permission{
	models.PermissionManageUsers,
	models.PermissionViewUsers,
	models.PermissionManageRoles,
	models.PermissionViewRoles,
	models.PermissionManageCompanySettings,
	models.PermissionViewActivityLogs,
	models.PermissionViewAnalytics,
}

// defaultPermissions returns the permissions a role starts with.
func defaultPermissions(role string) []string {
	var perms []models.Permission
	switch role {
	case RoleSuperAdmin:
		perms = append(perms, models.PermissionManageCompanies, models.PermissionViewAllCompanies)
		perms = append(perms, companyAdminPermissions...)
		perms = append(perms, employeePermissions...)
	case RoleCompanyAdmin:
		perms = append(perms, companyAdminPermissions...)
		perms = append(perms, employeePermissions...)
	case RoleManager:
		perms = append(perms,
			models.PermissionViewTeamUsers,
			models.PermissionViewTeamActivity,
			models.PermissionManageTeamChats,
		)
		perms = append(perms, employeePermissions...)
	case RoleEmployee:
		perms = append(perms, employeePermissions...)
	}

	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
