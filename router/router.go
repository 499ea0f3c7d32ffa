package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/splitz-app/splitz-backend/config"
	"github.com/splitz-app/splitz-backend/handlers"
	"github.com/splitz-app/splitz-backend/middleware"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	RedisClient       *redis.Client
	ExpenseHandler    *handlers.ExpenseHandler
	GroupHandler      *handlers.GroupHandler
	InvitationHandler *handlers.InvitationHandler
	UserHandler       *handlers.UserHandler
	DigestHandler     *handlers.DigestHandler
	HealthHandler     *handlers.HealthHandler
	Logger            *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and Metrics Routes (typically don't require auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Versioned API Group (v1)
	v1 := r.Group("/v1")
	{
		// Digest runs are authenticated with a shared secret header instead
		// of a user token so schedulers can call them directly.
		v1.POST("/admin/digests/:window", deps.DigestHandler.RunDigestHandler)

		// --- Authenticated Routes ---
		authMiddleware := middleware.AuthMiddleware(&deps.Config.Server)
		authRoutes := v1.Group("")
		authRoutes.Use(authMiddleware)
		{
			// Invitation Routes
			invitationRoutes := authRoutes.Group("/invitations")
			{
				invitationRoutes.POST("", deps.InvitationHandler.CreateInvitationHandler)
				invitationRoutes.GET("", deps.InvitationHandler.ListResourceInvitationsHandler)
				invitationRoutes.POST("/redeem",
					middleware.RedeemRateLimiter(
						deps.RedisClient,
						deps.Config.RateLimit.RequestsPerMinute,
						time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
					),
					deps.InvitationHandler.RedeemInvitationHandler,
				)
				invitationRoutes.GET("/:code", deps.InvitationHandler.GetInvitationDetailsHandler)
			}

			// Group Routes
			groupRoutes := authRoutes.Group("/groups")
			{
				groupRoutes.POST("", deps.GroupHandler.CreateGroupHandler)
				groupRoutes.GET("", deps.GroupHandler.ListUserGroupsHandler)
				groupRoutes.GET("/:id", deps.GroupHandler.GetGroupHandler)
				groupRoutes.PUT("/:id", deps.GroupHandler.UpdateGroupHandler)
				groupRoutes.DELETE("/:id", deps.GroupHandler.DeleteGroupHandler)
				groupRoutes.GET("/:id/balances", deps.ExpenseHandler.GroupBalancesHandler)

				// Group Member Routes
				memberRoutes := groupRoutes.Group("/:id/members")
				{
					memberRoutes.GET("", deps.GroupHandler.GetMemberProfilesHandler)
					memberRoutes.POST("", deps.GroupHandler.AddMemberHandler)
					memberRoutes.DELETE("/:userId", deps.GroupHandler.RemoveMemberHandler)
				}

				// Group Expense Routes
				expenseRoutes := groupRoutes.Group("/:id/expenses")
				{
					expenseRoutes.POST("", deps.ExpenseHandler.CreateExpenseHandler)
					expenseRoutes.GET("", deps.ExpenseHandler.ListGroupExpensesHandler)
				}
			}

			// Expense Routes (addressed by expense ID)
			expenseRoutes := authRoutes.Group("/expenses")
			{
				expenseRoutes.GET("/:expenseId", deps.ExpenseHandler.GetExpenseHandler)
				expenseRoutes.PUT("/:expenseId", deps.ExpenseHandler.UpdateExpenseHandler)
				expenseRoutes.DELETE("/:expenseId", deps.ExpenseHandler.DeleteExpenseHandler)
				expenseRoutes.PATCH("/:expenseId/members/:userId/settle", deps.ExpenseHandler.SettleMemberHandler)
			}

			// User Routes
			userRoutes := authRoutes.Group("/users")
			{
				userRoutes.GET("/profiles", deps.UserHandler.GetProfilesHandler)
				userRoutes.GET("/me/preferences", deps.UserHandler.GetPreferencesHandler)
				userRoutes.PUT("/me/preferences", deps.UserHandler.UpdatePreferencesHandler)
			}
		}
	}

	return r
}
