package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"memberhub/internal/config"
	"memberhub/internal/database"
	"memberhub/internal/middleware"
	"memberhub/internal/modules/auth"
	jwtsvc "memberhub/internal/pkg/jwt"
	"memberhub/internal/pkg/password"
	"memberhub/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAuthRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	memberRepo := repository.NewMemberRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	exchange := auth.NewCodeExchange(auth.DefaultCodeTTL)

	authService := auth.NewService(memberRepo, refreshRepo, tokens, password.NewBcryptComparer(), exchange)
	authHandler := auth.NewHandler(authService, auth.NewExtractorRegistry(), auth.NewUserInfoVerifier(), cfg.OAuth2RedirectURL)

	// background sweeps stop with the process
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	auth.NewSweeper(exchange, refreshRepo).Start(ctx)

	r := gin.Default()

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.AuthRequired(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
