package models

// FamilyRole represents a member's role within a family
type FamilyRole string

const (
	FamilyRoleAdmin  FamilyRole = "admin"
	FamilyRoleMember FamilyRole = "member"
	FamilyRoleViewer FamilyRole = "viewer"
)

// Family permission vocabulary. Admins hold every permission implicitly;
// for other roles the explicit set on the membership row is authoritative.
const (
	PermissionView                = "VIEW"
	PermissionAddTransactions     = "ADD_TRANSACTIONS"
	PermissionEditTransactions    = "EDIT_TRANSACTIONS"
	PermissionDeleteTransactions  = "DELETE_TRANSACTIONS"
	PermissionManageBudgets       = "MANAGE_BUDGETS"
	PermissionManageShoppingLists = "MANAGE_SHOPPING_LISTS"
	PermissionManageMembers       = "MANAGE_MEMBERS"
	PermissionViewReports         = "VIEW_REPORTS"
)

// AllPermissions lists every known family permission string.
var AllPermissions = []string{
	PermissionView,
	PermissionAddTransactions,
	PermissionEditTransactions,
	PermissionDeleteTransactions,
	PermissionManageBudgets,
	PermissionManageShoppingLists,
	PermissionManageMembers,
	PermissionViewReports,
}

// IsValidPermission reports whether s is part of the permission vocabulary.
func IsValidPermission(s string) bool {
	for _, p := range AllPermissions {
		if p == s {
			return true
		}
	}
	return false
}

// Family represents a group of users sharing transactions, budgets,
// and shopping lists.
type Family struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatedBy   string `gorm:"type:uuid;not null" json:"created_by"`

	// Relationships
	Members []FamilyMember `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}

// FamilyMember represents the unique (family, user) membership row.
// The unique index is partial on deleted_at so a soft-deleted
// membership does not block re-invitation.
type FamilyMember struct {
	Base
	FamilyID    string     `gorm:"type:uuid;not null;index:idx_family_user,unique,where:deleted_at IS NULL" json:"family_id"`
	UserID      string     `gorm:"type:uuid;not null;index:idx_family_user,unique" json:"user_id"`
	Role        FamilyRole `gorm:"not null;default:member" json:"role"`
	Permissions StringList `gorm:"type:text" json:"permissions"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// HasPermission reports whether the member may perform the action guarded
// by the given permission string. Admins always may.
func (m *FamilyMember) HasPermission(permission string) bool {
	if m.Role == FamilyRoleAdmin {
		return true
	}
	return m.Permissions.Contains(permission)
}
