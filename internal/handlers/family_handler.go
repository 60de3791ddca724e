package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
	"tally/internal/services"
)

// FamilyHandler handles family and membership requests.
type FamilyHandler struct {
	familyService services.FamilyServicer
	auditService  services.AuditServicer
}

// NewFamilyHandler creates a new FamilyHandler.
func NewFamilyHandler(familyService services.FamilyServicer, auditService services.AuditServicer) *FamilyHandler {
	return &FamilyHandler{familyService: familyService, auditService: auditService}
}

// CreateFamilyRequest represents the request payload for creating a family.
type CreateFamilyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateFamilyRequest represents the request payload for updating a family.
type UpdateFamilyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// InviteMemberRequest represents the request payload for adding a member.
type InviteMemberRequest struct {
	Email       string            `json:"email" binding:"required,email"`
	Role        models.FamilyRole `json:"role" binding:"required,family_role"`
	Permissions []string          `json:"permissions" binding:"omitempty,dive,family_permission"`
}

// UpdateMemberRequest represents the request payload for changing a member's
// role or permissions.
type UpdateMemberRequest struct {
	Role        *models.FamilyRole `json:"role" binding:"omitempty,family_role"`
	Permissions []string           `json:"permissions" binding:"omitempty,dive,family_permission"`
}

// CreateFamily handles the creation of a new family.
// @Summary     Create a family
// @Description Create a family; the creator becomes an admin member
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFamilyRequest true "Family details"
// @Success     201 {object} models.Family "Family created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families [post]
func (h *FamilyHandler) CreateFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	family, err := h.familyService.CreateFamily(userID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_FAMILY", "family", family.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"family": family})
}

// GetFamilies handles listing the families the user belongs to.
// @Summary     Get families
// @Description Get a paginated list of families the user is a member of
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Family] "Paginated families"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families [get]
func (h *FamilyHandler) GetFamilies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.familyService.GetUserFamilies(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFamily handles retrieving a family with its members.
// @Summary     Get family by ID
// @Description Get a family and its members; requires membership
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} models.Family "Family details"
// @Failure     400 {object} ErrorResponse "Invalid family ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id} [get]
func (h *FamilyHandler) GetFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	family, err := h.familyService.GetFamilyByID(userID, familyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family})
}

// UpdateFamily handles updating a family's name and description.
// @Summary     Update family
// @Description Update a family's name and description; requires the admin role
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Family ID"
// @Param       request body UpdateFamilyRequest true "Updated fields"
// @Success     200 {object} models.Family "Updated family"
// @Failure     400 {object} ErrorResponse "Invalid input or family ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id} [put]
func (h *FamilyHandler) UpdateFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	family, err := h.familyService.UpdateFamily(userID, familyID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_FAMILY", "family", familyID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"family": family})
}

// DeleteFamily handles deleting a family.
// @Summary     Delete family
// @Description Delete a family and its memberships; requires the admin role
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} MessageResponse "Family deleted"
// @Failure     400 {object} ErrorResponse "Invalid family ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id} [delete]
func (h *FamilyHandler) DeleteFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.familyService.DeleteFamily(userID, familyID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_FAMILY", "family", familyID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Family deleted successfully"})
}

// InviteMember handles adding a user to a family by email.
// @Summary     Invite member
// @Description Add a registered user to the family by email; requires MANAGE_MEMBERS
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Family ID"
// @Param       request body InviteMemberRequest true "Member details"
// @Success     201 {object} models.FamilyMember "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input or family ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing MANAGE_MEMBERS permission"
// @Failure     404 {object} ErrorResponse "Family or user not found"
// @Failure     409 {object} ErrorResponse "User is already a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/members [post]
func (h *FamilyHandler) InviteMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.InviteMember(familyID, userID, req.Email, req.Role, req.Permissions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVITE_MEMBER", "family_member", member.ID, c.ClientIP(),
		map[string]interface{}{"family_id": familyID, "role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// UpdateMember handles changing a member's role or permissions.
// @Summary     Update member
// @Description Change a member's role or permissions; requires MANAGE_MEMBERS
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Family ID"
// @Param       userId  path string              true "Member's user ID"
// @Param       request body UpdateMemberRequest true "Updated role or permissions"
// @Success     200 {object} models.FamilyMember "Updated member"
// @Failure     400 {object} ErrorResponse "Invalid input or IDs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing MANAGE_MEMBERS permission"
// @Failure     404 {object} ErrorResponse "Family or member not found"
// @Failure     409 {object} ErrorResponse "Would demote the last admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/members/{userId} [put]
func (h *FamilyHandler) UpdateMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberUserID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.UpdateMember(familyID, userID, memberUserID, req.Role, req.Permissions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_MEMBER", "family_member", member.ID, c.ClientIP(),
		map[string]interface{}{"family_id": familyID})

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RemoveMember handles removing a member from a family.
// @Summary     Remove member
// @Description Remove a member from the family; requires MANAGE_MEMBERS unless removing yourself
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Family ID"
// @Param       userId path string true "Member's user ID"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     400 {object} ErrorResponse "Invalid IDs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing MANAGE_MEMBERS permission"
// @Failure     404 {object} ErrorResponse "Family or member not found"
// @Failure     409 {object} ErrorResponse "Would remove the last admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/members/{userId} [delete]
func (h *FamilyHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberUserID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.familyService.RemoveMember(familyID, userID, memberUserID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_MEMBER", "family_member", memberUserID, c.ClientIP(),
		map[string]interface{}{"family_id": familyID})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// LeaveFamily handles the authenticated user leaving a family.
// @Summary     Leave family
// @Description Leave a family you are a member of; the last admin cannot leave
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} MessageResponse "Left family"
// @Failure     400 {object} ErrorResponse "Invalid family ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     409 {object} ErrorResponse "Would remove the last admin"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/leave [post]
func (h *FamilyHandler) LeaveFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.familyService.LeaveFamily(familyID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LEAVE_FAMILY", "family", familyID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Left family successfully"})
}
