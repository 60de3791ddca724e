package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// familyService handles family and membership business logic, including
// the permission checks used by every family-scoped operation.
type familyService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewFamilyService creates a new FamilyServicer.
func NewFamilyService(db *gorm.DB, userService UserServicer) FamilyServicer {
	return &familyService{db: db, userService: userService}
}

// getMembership returns the unique (family, user) membership row. A missing
// row reports ErrFamilyNotFound so that family existence is never leaked
// to non-members.
func (s *familyService) getMembership(db *gorm.DB, familyID, userID string) (*models.FamilyMember, error) {
	var member models.FamilyMember
	if err := db.Where("family_id = ? AND user_id = ?", familyID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFamilyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}

// RequirePermission checks that the user is a member of the family holding
// the given permission. Admins hold every permission implicitly.
func (s *familyService) RequirePermission(familyID, userID, permission string) (*models.FamilyMember, error) {
	member, err := s.getMembership(s.db, familyID, userID)
	if err != nil {
		return nil, err
	}
	if !member.HasPermission(permission) {
		return nil, apperrors.ErrForbidden
	}
	return member, nil
}

// RequireAdmin checks that the user is an admin member of the family.
func (s *familyService) RequireAdmin(familyID, userID string) (*models.FamilyMember, error) {
	member, err := s.getMembership(s.db, familyID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.FamilyRoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return member, nil
}

// CreateFamily creates a family with the creator as its first admin.
func (s *familyService) CreateFamily(userID, name, description string) (*models.Family, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "family name is required")
	}

	family := &models.Family{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(family).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		member := &models.FamilyMember{
			FamilyID:    family.ID,
			UserID:      userID,
			Role:        models.FamilyRoleAdmin,
			Permissions: models.StringList(models.AllPermissions),
		}
		if err := tx.Create(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetFamilyByID(userID, family.ID)
}

// GetUserFamilies returns a paginated list of families the user belongs to.
func (s *familyService) GetUserFamilies(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Family], error) {
	page.Defaults()

	base := s.db.Model(&models.Family{}).
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ? AND family_members.deleted_at IS NULL", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var families []models.Family
	if err := base.Preload("Members").Scopes(pagination.Paginate(page)).Find(&families).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(families, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFamilyByID returns a family with members if the user is a member.
func (s *familyService) GetFamilyByID(userID, familyID string) (*models.Family, error) {
	if _, err := s.getMembership(s.db, familyID, userID); err != nil {
		return nil, err
	}

	var family models.Family
	if err := s.db.Preload("Members").Preload("Members.User").Where("id = ?", familyID).First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFamilyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &family, nil
}

// UpdateFamily updates the family name and description. Admin only.
func (s *familyService) UpdateFamily(userID, familyID, name, description string) (*models.Family, error) {
	if _, err := s.RequireAdmin(familyID, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Family{}).Where("id = ?", familyID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetFamilyByID(userID, familyID)
}

// DeleteFamily soft-deletes a family and its memberships. Admin only.
func (s *familyService) DeleteFamily(userID, familyID string) error {
	if _, err := s.RequireAdmin(familyID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("family_id = ?", familyID).Delete(&models.FamilyMember{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id = ?", familyID).Delete(&models.Family{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// InviteMember adds an existing user to the family by email. Requires
// MANAGE_MEMBERS. Unknown permission strings are rejected by input
// validation before this point; duplicates conflict.
func (s *familyService) InviteMember(
	familyID, actorID, email string,
	role models.FamilyRole,
	permissions []string,
) (*models.FamilyMember, error) {
	if _, err := s.RequirePermission(familyID, actorID, models.PermissionManageMembers); err != nil {
		return nil, err
	}

	invitee, err := s.userService.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, invitee.ID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateMember
	}

	member := &models.FamilyMember{
		FamilyID:    familyID,
		UserID:      invitee.ID,
		Role:        role,
		Permissions: models.StringList(permissions),
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	member.User = *invitee
	return member, nil
}

// UpdateMember changes a member's role and/or permission set. Requires
// MANAGE_MEMBERS. Demoting the sole remaining admin is rejected.
func (s *familyService) UpdateMember(
	familyID, actorID, memberUserID string,
	role *models.FamilyRole,
	permissions []string,
) (*models.FamilyMember, error) {
	if _, err := s.RequirePermission(familyID, actorID, models.PermissionManageMembers); err != nil {
		return nil, err
	}

	var member *models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		member, txErr = s.getMembershipOfTarget(tx, familyID, memberUserID)
		if txErr != nil {
			return txErr
		}

		if role != nil && member.Role == models.FamilyRoleAdmin && *role != models.FamilyRoleAdmin {
			admins, countErr := s.countAdmins(tx, familyID)
			if countErr != nil {
				return countErr
			}
			if admins <= 1 {
				return apperrors.ErrLastAdmin
			}
		}

		updates := make(map[string]interface{})
		if role != nil {
			updates["role"] = *role
		}
		if permissions != nil {
			updates["permissions"] = models.StringList(permissions)
		}
		if len(updates) > 0 {
			if err := tx.Model(member).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a member from the family. Allowed for MANAGE_MEMBERS
// holders and for a member removing themselves; the sole remaining admin
// can never be removed.
func (s *familyService) RemoveMember(familyID, actorID, memberUserID string) error {
	if actorID != memberUserID {
		if _, err := s.RequirePermission(familyID, actorID, models.PermissionManageMembers); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var member *models.FamilyMember
		var err error
		if actorID == memberUserID {
			// Self-removal by a non-member must not reveal the family.
			member, err = s.getMembership(tx, familyID, memberUserID)
		} else {
			member, err = s.getMembershipOfTarget(tx, familyID, memberUserID)
		}
		if err != nil {
			return err
		}

		if member.Role == models.FamilyRoleAdmin {
			admins, countErr := s.countAdmins(tx, familyID)
			if countErr != nil {
				return countErr
			}
			if admins <= 1 {
				return apperrors.ErrLastAdmin
			}
		}

		if err := tx.Delete(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// LeaveFamily removes the caller's own membership.
func (s *familyService) LeaveFamily(familyID, userID string) error {
	return s.RemoveMember(familyID, userID, userID)
}

// getMembershipOfTarget looks up the target member's row. Unlike
// getMembership this is only reached after the actor passed an access
// check, so a missing row means the member does not exist.
func (s *familyService) getMembershipOfTarget(db *gorm.DB, familyID, memberUserID string) (*models.FamilyMember, error) {
	var member models.FamilyMember
	if err := db.Where("family_id = ? AND user_id = ?", familyID, memberUserID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}

func (s *familyService) countAdmins(db *gorm.DB, familyID string) (int64, error) {
	var count int64
	if err := db.Model(&models.FamilyMember{}).
		Where("family_id = ? AND role = ?", familyID, models.FamilyRoleAdmin).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}
