package middleware

import (
	"context"
	"net/http"
	"strings"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/reqctx"
	"forumtalks/internal/services"
	helpers "forumtalks/internal/utils/helpers"

	"go.uber.org/zap"
)

// JWTAuth принимает токен из заголовка Authorization или из http-only
// cookie. Сервис токенов инжектируется один раз при сборке роутера.
func JWTAuth(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			tokenString := bearerToken(r)
			if tokenString == "" {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, apperr.New(apperr.Unauthorized, "отсутствует access token"))
				return
			}

			userID, role, err := tokens.VerifySessionToken(tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				helpers.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, userID)
			ctx = context.WithValue(ctx, ContextRole, role)
			ctx = reqctx.WithUserID(ctx, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}
