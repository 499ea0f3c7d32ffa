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

// ExpenseHandler handles HTTP requests for expenses and settlements.
type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseHandler creates an expense with its splits in one call.
// POST /v1/groups/:id/expenses
func (h *ExpenseHandler) CreateExpenseHandler(c *gin.Context) {
	log := logger.GetLogger()
	groupID := c.Param("id")
	userID := middleware.GetUserID(c)

	var req types.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid create expense request", "error", err, "groupID", groupID)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), groupID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// GetExpenseHandler returns one expense with its members.
// GET /v1/expenses/:expenseId
func (h *ExpenseHandler) GetExpenseHandler(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("expenseId"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

// ListGroupExpensesHandler returns all expenses of a group.
// GET /v1/groups/:id/expenses
func (h *ExpenseHandler) ListGroupExpensesHandler(c *gin.Context) {
	expenses, err := h.expenseService.ListGroupExpenses(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// UpdateExpenseHandler updates an expense's name or category.
// PUT /v1/expenses/:expenseId
func (h *ExpenseHandler) UpdateExpenseHandler(c *gin.Context) {
	log := logger.GetLogger()
	expenseID := c.Param("expenseId")

	var req types.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid update expense request", "error", err, "expenseID", expenseID)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), expenseID, middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpenseHandler removes an expense.
// DELETE /v1/expenses/:expenseId
func (h *ExpenseHandler) DeleteExpenseHandler(c *gin.Context) {
	err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("expenseId"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SettleMemberHandler toggles one member's settlement flag.
// PATCH /v1/expenses/:expenseId/members/:userId/settle
func (h *ExpenseHandler) SettleMemberHandler(c *gin.Context) {
	log := logger.GetLogger()
	expenseID := c.Param("expenseId")
	memberUserID := c.Param("userId")

	var req types.SettleMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid settle member request", "error", err, "expenseID", expenseID)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	err := h.expenseService.SetMemberSettled(c.Request.Context(), expenseID, memberUserID, middleware.GetUserID(c), req.IsSettled)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GroupBalancesHandler returns per-member balances and simplified debts.
// GET /v1/groups/:id/balances
func (h *ExpenseHandler) GroupBalancesHandler(c *gin.Context) {
	report, err := h.expenseService.GroupBalances(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}
