package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splitz-app/splitz-backend/config"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/services"
	"github.com/splitz-app/splitz-backend/types"
)

// DigestHandler exposes the digest runs as HTTP-triggered admin endpoints,
// authenticated with a shared secret header set by the scheduler.
type DigestHandler struct {
	digestService *services.DigestService
	cfg           *config.DigestConfig
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(digestService *services.DigestService, cfg *config.DigestConfig) *DigestHandler {
	return &DigestHandler{digestService: digestService, cfg: cfg}
}

// RunDigestHandler triggers one digest run for the window in the path.
// POST /v1/admin/digests/:window
func (h *DigestHandler) RunDigestHandler(c *gin.Context) {
	secret := c.GetHeader("X-Digest-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.Secret)) != 1 {
		_ = c.Error(apperrors.AuthenticationFailed("Invalid digest secret"))
		return
	}

	window := types.DigestWindow(c.Param("window"))
	summary, err := h.digestService.Run(c.Request.Context(), window)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
