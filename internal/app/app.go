package app

import (
	"context"
	"strconv"
	"time"

	"forumtalks/internal/config"
	"forumtalks/internal/db"
	"forumtalks/internal/handlers"
	"forumtalks/internal/repository"
	"forumtalks/internal/routes"
	"forumtalks/internal/services"
	"forumtalks/internal/storage"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	credRepo := repository.NewCredentialRepository(conn)
	profileRepo := repository.NewProfileRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)

	// Внешние клиенты — создаются один раз, а не на каждый запрос
	mediaStore, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	emailService := services.NewEmailService(cfg)

	// Сервисы
	sessionTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	resetMin, err := strconv.Atoi(cfg.PasswordResetTTLMin)
	if err != nil {
		return nil, err
	}
	tokenService, err := services.NewTokenService(cfg.JWTSecret, sessionTTL, time.Duration(resetMin)*time.Minute)
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(credRepo, profileRepo, tokenService, mediaStore, emailService)
	commentService := services.NewCommentService(commentRepo)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService)
	passwordHandler := handlers.NewPasswordHandler(authService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// Воркеры отправки писем
	for i := 0; i < 3; i++ {
		services.StartEmailWorker(emailService)
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, tokenService, authHandler, passwordHandler, commentHandler)

	return router, nil
}
