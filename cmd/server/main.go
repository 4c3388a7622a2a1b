package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"task_backend/internal/app/di"
	"task_backend/internal/app/router"
	authadapters "task_backend/internal/feature/auth/adapters"
	authhandler "task_backend/internal/feature/auth/transport/handler"
	authusecase "task_backend/internal/feature/auth/usecase"
	taskhandler "task_backend/internal/feature/tasks/transport/handler"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/db"
	jwtmw "task_backend/internal/platform/jwt"
	infraredis "task_backend/internal/platform/redis"
	"task_backend/internal/shared/ratelimiter"
)

func main() {
	// .envがあれば読み込む（本番では環境変数を直接設定する）
	_ = godotenv.Load()

	// db
	gdb := db.OpenDB()

	// Redis（統計キャッシュ用、なくても動作する）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	// セッションの有効期限（デフォルト24時間）。クッキーとトークンで共有する。
	expiration := 24 * time.Hour
	if s := os.Getenv("JWT_EXPIRATION_HOURS"); s != "" {
		if hours, err := strconv.Atoi(s); err == nil && hours > 0 {
			expiration = time.Duration(hours) * time.Hour
		}
	}

	// Repository
	userRepo := authadapters.NewUserRepository(gdb)
	taskRepo := di.NewTaskRepository(rdb, gdb)

	// Usecase
	tokenGen := jwtmw.NewGenerator(secret, expiration)
	authUC := authusecase.NewAuthUsecase(userRepo, tokenGen)
	taskUC := taskusecase.NewTaskUsecase(taskRepo)

	// Handler
	secureCookie := os.Getenv("COOKIE_SECURE") == "true"
	authH := authhandler.NewAuthHandler(authUC, int(expiration.Seconds()), secureCookie)
	taskH := taskhandler.NewTaskHandler(taskUC)

	// 認証エンドポイントのレートリミット: 1分あたり10回/IP
	authLimiter := ratelimiter.New(10, time.Minute)

	var corsOrigins []string
	if s := os.Getenv("CORS_ORIGINS"); s != "" {
		corsOrigins = strings.Split(s, ",")
	}

	// ルータ生成
	r := router.NewRouter(authH, taskH, authUC, authLimiter, router.Config{CORSOrigins: corsOrigins})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
