package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stayhub/internal/config"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/handler"
	"github.com/stayhub/internal/middleware"
	"github.com/stayhub/internal/router"
)

func main() {
	// .env 不存在时静默跳过，直接读环境变量
	_ = godotenv.Load()

	cfg := config.Load()
	middleware.InitJWT(cfg.JWTSecret)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	// 设置并运行 Gin 服务器
	api := handler.NewAPI(db.DB, cfg)
	r := router.SetupRouter(api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
