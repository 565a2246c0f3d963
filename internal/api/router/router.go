package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/internal/api/handler"
	"github.com/byliew07/CheckMeIN/internal/api/middleware"
	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/jwt"
)

const (
	maxBodyBytes = 1 << 20
	loginLimit   = 10
	loginWindow  = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时登录接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.Limiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleLecturer)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(limiter, loginLimit, loginWindow, logger), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", adminOnly, h.User.ListUsers)
				users.POST("", adminOnly, h.User.CreateUser)
				users.DELETE("/:username", adminOnly, h.User.DeleteUser)
				users.PUT("/:username/display-name", h.User.SetDisplayName) // admin 或本人（Handler 层鉴权）
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.POST("", adminOnly, h.Class.CreateClass)
				classes.DELETE("/:name", adminOnly, h.Class.DeleteClass)
				classes.GET("/:name/stats", staff, h.Class.GetStats)
				classes.GET("/:name/history", staff, h.Class.GetHistory)
				classes.GET("/:name/roster", staff, h.Class.GetRoster)
			}

			// 签到模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/check-in", h.Attendance.CheckIn) // 学生只能为自己签到（Handler 层鉴权）
				attendance.PUT("", staff, h.Attendance.UpdateAttendance)
				attendance.GET("", staff, h.Attendance.GetDailyMap)
				attendance.GET("/students/:username", h.Attendance.GetStudentHistory)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/classes/:name", staff, h.Export.ExportClassStats)
				export.GET("/classes/:name/trend", staff, h.Export.Trend)
				export.GET("/students/:username", h.Export.ExportStudentHistory)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
