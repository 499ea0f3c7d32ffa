package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/middleware"
	"github.com/splitz-app/splitz-backend/types"
)

// UserHandler handles profile lookups and notification preferences.
type UserHandler struct {
	userStore store.UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userStore store.UserStore) *UserHandler {
	return &UserHandler{userStore: userStore}
}

// GetProfilesHandler returns public profiles for a comma-separated set of
// user IDs.
// GET /v1/users/profiles?ids=a,b,c
func (h *UserHandler) GetProfilesHandler(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		_ = c.Error(apperrors.ValidationFailed("ids query parameter is required", ""))
		return
	}

	ids := strings.Split(idsParam, ",")
	profiles, err := h.userStore.GetProfilesByIDs(c.Request.Context(), ids)
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetPreferencesHandler returns the caller's notification preferences.
// GET /v1/users/me/preferences
func (h *UserHandler) GetPreferencesHandler(c *gin.Context) {
	prefs, err := h.userStore.GetPreferences(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferencesHandler updates the caller's notification preferences.
// PUT /v1/users/me/preferences
func (h *UserHandler) UpdatePreferencesHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req types.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid update preferences request", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	prefs, err := h.userStore.UpdatePreferences(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, prefs)
}
