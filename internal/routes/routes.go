package routes

import (
	"net/http"

	"forumtalks/internal/handlers"
	"forumtalks/internal/middleware"
	"forumtalks/internal/services"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	tokens *services.TokenService,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	commentHandler *handlers.CommentHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	api := router.PathPrefix("/api/v1").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/verify-email/{token}", authHandler.VerifyEmail).Methods(http.MethodGet)
	api.HandleFunc("/password/forgot", passwordHandler.Forgot).Methods(http.MethodPost)
	api.HandleFunc("/password/reset/{token}", passwordHandler.Reset).Methods(http.MethodPost)

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(tokens))

	protected.HandleFunc("/password/update", passwordHandler.Change).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId:[0-9]+}", authHandler.UpdateUser).Methods(http.MethodPut)

	comments := protected.PathPrefix("/comments").Subrouter()
	// литеральные префиксы раньше маршрутов с переменной
	comments.HandleFunc("/find/{commentId:[0-9]+}", commentHandler.GetOne).Methods(http.MethodGet)
	comments.HandleFunc("/toggle-like/{commentId:[0-9]+}", commentHandler.ToggleLike).Methods(http.MethodPut)
	comments.HandleFunc("/{postId:[0-9]+}", commentHandler.ListByPost).Methods(http.MethodGet)
	comments.HandleFunc("/{postId:[0-9]+}", commentHandler.Create).Methods(http.MethodPost)
	comments.HandleFunc("/{commentId:[0-9]+}", commentHandler.Update).Methods(http.MethodPut)
	comments.HandleFunc("/{commentId:[0-9]+}", commentHandler.Delete).Methods(http.MethodDelete)
}
