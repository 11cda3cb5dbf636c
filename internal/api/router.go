package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/auth"
	"outreach-tracker/internal/config"
	"outreach-tracker/internal/trajectory"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, roles trajectory.RoleConfig, transport alert.Transport) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/tracker" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())

		// Admin: users
		group.GET("/users", auth.AuthMiddleware(cfg, rdb, true), ListUsersHandler())
		group.POST("/users", auth.AuthMiddleware(cfg, rdb, true), CreateUserHandler())

		// User self-service
		group.GET("/users/me", auth.AuthMiddleware(cfg, rdb, false), GetMeHandler())
		group.PUT("/users/me", auth.AuthMiddleware(cfg, rdb, false), UpdateMeHandler())
		group.DELETE("/users/me", auth.AuthMiddleware(cfg, rdb, false), DeleteMeHandler())

		// Admin: user by id
		group.GET("/users/:id", auth.AuthMiddleware(cfg, rdb, true), GetUserByIdHandler())
		group.PUT("/users/:id", auth.AuthMiddleware(cfg, rdb, true), UpdateUserByIdHandler())
		group.DELETE("/users/:id", auth.AuthMiddleware(cfg, rdb, true), DeleteUserByIdHandler())

		// Online users count
		group.GET("/users/online", OnlineUserCountHandler(rdb))

		// People
		group.POST("/people", auth.AuthMiddleware(cfg, rdb, false), CreatePersonHandler())
		group.GET("/people", auth.AuthMiddleware(cfg, rdb, false), ListPeopleHandler())
		group.GET("/people/:id", auth.AuthMiddleware(cfg, rdb, false), GetPersonHandler())
		group.PATCH("/people/:id", auth.AuthMiddleware(cfg, rdb, false), UpdatePersonHandler())
		group.DELETE("/people/:id", auth.AuthMiddleware(cfg, rdb, false), DeletePersonHandler())

		// Roles and milestone templates
		group.GET("/roles", auth.AuthMiddleware(cfg, rdb, false), ListRolesHandler())
		group.POST("/roles", auth.AuthMiddleware(cfg, rdb, true), CreateRoleHandler())
		group.POST("/templates/version", auth.AuthMiddleware(cfg, rdb, true), CreateTemplateVersionHandler())
		group.GET("/templates/version/list", auth.AuthMiddleware(cfg, rdb, false), ListTemplateVersionsHandler())

		// Goal plans
		group.POST("/goals", auth.AuthMiddleware(cfg, rdb, false), CreateGoalHandler(roles))
		group.GET("/goals/:id", auth.AuthMiddleware(cfg, rdb, false), GetGoalHandler())
		group.PATCH("/goals/:id", auth.AuthMiddleware(cfg, rdb, false), UpdateGoalHandler())

		// Milestones
		group.PATCH("/milestones/:id", auth.AuthMiddleware(cfg, rdb, false), SetMilestoneHandler())
		group.POST("/milestones/complete-next", auth.AuthMiddleware(cfg, rdb, false), CompleteNextHandler(roles))
		group.POST("/milestones/batch", auth.AuthMiddleware(cfg, rdb, false), BatchProgressHandler(roles))

		// Activity
		group.POST("/activities/batch", auth.AuthMiddleware(cfg, rdb, false), ActivityBatchHandler())
		group.GET("/activities", auth.AuthMiddleware(cfg, rdb, false), ListActivityHandler())

		// Analytics
		group.GET("/analytics", auth.AuthMiddleware(cfg, rdb, false), AnalyticsHandler())

		// Coach workload
		group.GET("/coach/redistribute", auth.AuthMiddleware(cfg, rdb, false), SuggestRedistributionHandler())
		group.POST("/coach/redistribute/apply", auth.AuthMiddleware(cfg, rdb, true), ApplyRedistributionHandler())
		group.GET("/coach/summary", auth.AuthMiddleware(cfg, rdb, false), CoachSummaryHandler())
		group.PUT("/coach/limits", auth.AuthMiddleware(cfg, rdb, true), SetCoachLimitHandler())

		// Alerts
		group.POST("/alerts/run", auth.AuthMiddleware(cfg, rdb, true), RunAlertsHandler(transport))
		group.GET("/alerts/log", auth.AuthMiddleware(cfg, rdb, false), ListAlertLogHandler())
	}
	return r
}
