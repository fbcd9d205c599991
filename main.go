package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fumotion/internal/auth"
	intconfig "fumotion/internal/config"
	router "fumotion/internal/http"
	"fumotion/internal/http/handlers"
	"fumotion/internal/http/middleware"
	"fumotion/internal/services"
	"fumotion/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	} else if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := utils.NewLogger(env.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := env.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	db, dialect, err := intconfig.OpenDB(ctx, env, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var limiter *middleware.RateLimiter
	if env.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr, Password: env.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, auth rate limiting runs fail-open", zap.Error(err))
		}
		cancel()
		limiter = middleware.NewRateLimiter(rdb, "auth", env.AuthRateLimit, log)
	} else {
		log.Info("REDIS_ADDR empty, auth rate limiting disabled")
	}

	tokens := auth.NewIssuer(env.JWTSecret, env.JWTTTL)
	base := services.Base{DB: db, Dialect: dialect, Log: log}
	h := handlers.New(base, tokens, env.BookingCancelCutoff, env.IsProduction())

	r := router.NewRouter(router.Deps{
		Env:     env,
		Handler: h,
		Tokens:  tokens,
		Limiter: limiter,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr), zap.String("env", env.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
