package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "task_backend/internal/feature/auth/transport/handler"
	taskhandler "task_backend/internal/feature/tasks/transport/handler"
	"task_backend/internal/platform/http/handler"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/shared/ratelimiter"
)

// Config holds the router-level settings.
type Config struct {
	// CORSOrigins lists the browser origins allowed to send the session
	// cookie cross-site. Empty disables CORS handling entirely.
	CORSOrigins []string
}

func NewRouter(auth *authhandler.AuthHandler, tasks *taskhandler.TaskHandler,
	validator jwtmw.UserValidator, authLimiter *ratelimiter.Limiter, cfg Config) *gin.Engine {
	r := gin.Default()

	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		// クッキーでセッショントークンを運ぶため必須
		corsCfg.AllowCredentials = true
		corsCfg.AddAllowMethods("PATCH")
		r.Use(cors.New(corsCfg))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 認証エンドポイントはブルートフォース対策のレートリミット付き
	public := r.Group("/auth")
	public.Use(ratelimiter.Middleware(authLimiter))
	{
		public.POST("/register", auth.Register)
		public.POST("/login", auth.Login)
	}

	// 認証必須のルート
	// jwtmw.AuthRequired() がセッションクッキー（またはBearerヘッダー）を検証し、
	// 呼び出し元ユーザーをコンテキストに実体化する
	private := r.Group("/")
	private.Use(jwtmw.AuthRequired(validator))
	{
		private.POST("/auth/logout", auth.Logout)
		private.GET("/auth/me", auth.Me)

		private.POST("/task", tasks.Create)
		private.GET("/task", tasks.List)
		private.GET("/task/statistics", tasks.Statistics)
		private.GET("/task/upcoming", tasks.Upcoming)
		private.GET("/task/overdue", tasks.Overdue)
		private.GET("/task/:id", tasks.GetOne)
		private.PATCH("/task/:id", tasks.Update)
		private.PATCH("/task/:id/toggle", tasks.Toggle)
		private.DELETE("/task/:id", tasks.Delete)
	}

	return r
}
