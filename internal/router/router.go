package router

import (
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/handler"
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB                 *gorm.DB
	JWTSecret          string
	AuthLimiter        middleware.WindowCounter
	AuthMaxAttempts    int
	AuthWindow         time.Duration
	UserHandler        *handler.UserHandler
	AssistantHandler   *handler.AssistantHandler
	InstructionHandler *handler.InstructionHandler
	FunctionHandler    *handler.FunctionHandler
	GpuHandler         *handler.GpuHandler
	ChatHandler        *handler.ChatHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	// Public routes, throttled per client IP.
	user := r.Group("/user")
	{
		limited := user.Group("")
		limited.Use(middleware.RateLimit(deps.AuthLimiter, "auth", deps.AuthMaxAttempts, deps.AuthWindow))
		{
			limited.POST("/register", deps.UserHandler.Register)
			limited.POST("/login", deps.UserHandler.Login)
		}
		user.GET("/profile", middleware.AuthMiddleware(deps.JWTSecret, deps.DB), deps.UserHandler.Profile)
	}

	// Session-authed routes.
	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		assistant := authed.Group("/assistant")
		{
			assistant.POST("/create", deps.AssistantHandler.Create)
			assistant.GET("/list", deps.AssistantHandler.List)
			assistant.GET("/get", deps.AssistantHandler.Get)
			assistant.POST("/prompt", deps.AssistantHandler.UpdatePrompt)
			assistant.POST("/update", deps.AssistantHandler.Update)
			assistant.POST("/delete", deps.AssistantHandler.Delete)
			assistant.POST("/regenerate-key", deps.AssistantHandler.RegenerateKey)
			assistant.GET("/usage", deps.AssistantHandler.Usage)
			assistant.GET("/conversations", deps.AssistantHandler.Conversations)
		}

		instruction := authed.Group("/instruction")
		{
			instruction.POST("/create", deps.InstructionHandler.Create)
			instruction.GET("/list", deps.InstructionHandler.List)
			instruction.POST("/update", deps.InstructionHandler.Update)
			instruction.POST("/delete", deps.InstructionHandler.Delete)
		}

		function := authed.Group("/function")
		{
			function.POST("/create", deps.FunctionHandler.Create)
			function.GET("/list", deps.FunctionHandler.List)
			function.GET("/get", deps.FunctionHandler.Get)
			function.POST("/update", deps.FunctionHandler.Update)
			function.POST("/delete", deps.FunctionHandler.Delete)
		}

		gpu := authed.Group("/gpu")
		{
			gpu.POST("/register", deps.GpuHandler.Register)
			gpu.GET("/list", deps.GpuHandler.List)
			gpu.POST("/status", deps.GpuHandler.UpdateStatus)
			gpu.POST("/metrics", deps.GpuHandler.ReportMetrics)
			gpu.POST("/delete", deps.GpuHandler.Delete)
		}

		authed.POST("/chat/session-completion", deps.ChatHandler.SessionCompletion)
	}

	// Service-authed chat: a static assistant API key instead of a session.
	chat := r.Group("/chat")
	chat.Use(middleware.APIKeyMiddleware(deps.DB))
	{
		chat.POST("/completion", deps.ChatHandler.Completion)
	}
}
