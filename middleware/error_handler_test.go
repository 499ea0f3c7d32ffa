package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp ErrorResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestErrorHandlerAppError(t *testing.T) {
	w, resp := performRequest(t, func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Expense", "exp-1"))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.NotFoundError), resp.Type)
	assert.Equal(t, "Expense not found", resp.Message)
}

func TestErrorHandlerExposesClientDetails(t *testing.T) {
	w, resp := performRequest(t, func(c *gin.Context) {
		_ = c.Error(apperrors.SplitMismatch("split amounts sum to 95.00 but expense total is 90.00"))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.SplitMismatchError), resp.Type)
	assert.Contains(t, resp.Details, "95.00")
}

func TestErrorHandlerHidesServerDetails(t *testing.T) {
	w, resp := performRequest(t, func(c *gin.Context) {
		_ = c.Error(apperrors.NewDatabaseError(errors.New("connection refused to 10.0.0.5:5432")))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, resp.Details, "10.0.0.5")
}

func TestErrorHandlerUnknownError(t *testing.T) {
	w, resp := performRequest(t, func(c *gin.Context) {
		_ = c.Error(errors.New("something broke"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(apperrors.ServerError), resp.Type)
	assert.Equal(t, "Internal Server Error", resp.Message)
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *apperrors.AppError
		want int
	}{
		{"expired invitation", apperrors.InvitationExpired("AbCd2345"), http.StatusGone},
		{"exhausted invitation", apperrors.InvitationExhausted("AbCd2345"), http.StatusGone},
		{"already a member", apperrors.AlreadyMember("group"), http.StatusConflict},
		{"locked expense", apperrors.ExpenseLocked("exp-1"), http.StatusConflict},
		{"rate limited", apperrors.RateLimitExceeded("slow down", 30), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := performRequest(t, func(c *gin.Context) {
				_ = c.Error(tt.err)
			})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestErrorHandlerNoError(t *testing.T) {
	w, _ := performRequest(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
