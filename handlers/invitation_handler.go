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

// InvitationHandler handles HTTP requests for creating, inspecting and
// redeeming invitations across all invitable resource types.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// CreateInvitationHandler generates a shareable invite code for a resource.
// POST /v1/invitations
func (h *InvitationHandler) CreateInvitationHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req types.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid create invitation request", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	inv, err := h.invitationService.CreateInvitation(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// GetInvitationDetailsHandler looks up an invitation by code. Works for
// expired and exhausted codes so clients can explain the refusal.
// GET /v1/invitations/:code
func (h *InvitationHandler) GetInvitationDetailsHandler(c *gin.Context) {
	details, err := h.invitationService.GetInvitationDetails(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListResourceInvitationsHandler lists a resource's invitations for members.
// GET /v1/invitations?type=...&resourceId=...
func (h *InvitationHandler) ListResourceInvitationsHandler(c *gin.Context) {
	inviteType := types.InviteType(c.Query("type"))
	resourceID := c.Query("resourceId")
	if resourceID == "" {
		_ = c.Error(apperrors.ValidationFailed("resourceId is required", ""))
		return
	}

	invitations, err := h.invitationService.ListResourceInvitations(c.Request.Context(), middleware.GetUserID(c), inviteType, resourceID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// RedeemInvitationHandler joins the caller to the invited resource.
// POST /v1/invitations/redeem
func (h *InvitationHandler) RedeemInvitationHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req types.RedeemInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid redeem invitation request", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	inv, err := h.invitationService.RedeemInvitation(c.Request.Context(), middleware.GetUserID(c), req.InviteCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inviteType": inv.InviteType,
		"resourceId": inv.ResourceID,
	})
}
