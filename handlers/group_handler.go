package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/middleware"
	"github.com/splitz-app/splitz-backend/services"
	"github.com/splitz-app/splitz-backend/types"
)

// GroupHandler handles HTTP requests for expense groups and their members.
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// AddMemberRequest is the add-member request body.
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateGroupHandler creates a new expense group.
// POST /v1/groups
func (h *GroupHandler) CreateGroupHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req types.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid create group request", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetGroupHandler returns a group with its membership rows.
// GET /v1/groups/:id
func (h *GroupHandler) GetGroupHandler(c *gin.Context) {
	group, err := h.groupService.GetGroup(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListUserGroupsHandler returns all groups the caller belongs to.
// GET /v1/groups
func (h *GroupHandler) ListUserGroupsHandler(c *gin.Context) {
	groups, err := h.groupService.ListUserGroups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// UpdateGroupHandler updates a group's name.
// PUT /v1/groups/:id
func (h *GroupHandler) UpdateGroupHandler(c *gin.Context) {
	log := logger.GetLogger()
	groupID := c.Param("id")

	var req types.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid update group request", "error", err, "groupID", groupID)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), groupID, middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// DeleteGroupHandler removes a group.
// DELETE /v1/groups/:id
func (h *GroupHandler) DeleteGroupHandler(c *gin.Context) {
	err := h.groupService.DeleteGroup(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMemberHandler adds a user to the group.
// POST /v1/groups/:id/members
func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	log := logger.GetLogger()
	groupID := c.Param("id")

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid add member request", "error", err, "groupID", groupID)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	err := h.groupService.AddMember(c.Request.Context(), groupID, middleware.GetUserID(c), req.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveMemberHandler removes a member from the group.
// DELETE /v1/groups/:id/members/:userId
func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	err := h.groupService.RemoveMember(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), c.Param("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMemberProfilesHandler returns public profiles for all group members.
// GET /v1/groups/:id/members
func (h *GroupHandler) GetMemberProfilesHandler(c *gin.Context) {
	profiles, err := h.groupService.MemberProfiles(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}
