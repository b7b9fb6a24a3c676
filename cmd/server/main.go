package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/config"
	"github.com/biswacs/lmscale-backend-sub000/internal/handler"
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/internal/relay"
	"github.com/biswacs/lmscale-backend-sub000/internal/router"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/biswacs/lmscale-backend-sub000/internal/webhook"
	"github.com/biswacs/lmscale-backend-sub000/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Assistant{},
		&model.Instruction{},
		&model.Function{},
		&model.Usage{},
		&model.Gpu{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Redis (rate-limit counters)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Core components
	pool := worker.NewPool(4, 256)
	defer pool.Shutdown()
	timeout := time.Duration(cfg.Chat.TimeoutSeconds) * time.Second
	webhookClient := webhook.NewClient(timeout, cfg.Encrypt.AESKey)

	// Services
	userService := service.NewUserService(db, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	assistantService := service.NewAssistantService(db, cfg.Assistant)
	instructionService := service.NewInstructionService(db)
	functionService := service.NewFunctionService(db, webhookClient, cfg.Encrypt.AESKey)
	gpuService := service.NewGpuService(db)
	usageService := service.NewUsageService(db, cfg.Chat.CostPer1KTokens)
	convService := service.NewConversationService(db)

	chatRelay := relay.New(db, cfg.Chat, webhookClient, usageService, pool)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	assistantHandler := handler.NewAssistantHandler(assistantService, usageService, convService)
	instructionHandler := handler.NewInstructionHandler(instructionService)
	functionHandler := handler.NewFunctionHandler(functionService)
	gpuHandler := handler.NewGpuHandler(gpuService)
	chatHandler := handler.NewChatHandler(chatRelay, assistantService)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	router.Setup(r, router.Deps{
		DB:                 db,
		JWTSecret:          cfg.JWT.Secret,
		AuthLimiter:        middleware.NewRedisCounter(rdb),
		AuthMaxAttempts:    cfg.RateLimit.AuthMaxAttempts,
		AuthWindow:         time.Duration(cfg.RateLimit.AuthWindowMins) * time.Minute,
		UserHandler:        userHandler,
		AssistantHandler:   assistantHandler,
		InstructionHandler: instructionHandler,
		FunctionHandler:    functionHandler,
		GpuHandler:         gpuHandler,
		ChatHandler:        chatHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
