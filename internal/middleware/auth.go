package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/types"
)

type AuthenticatedUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type UserLookup interface {
	User(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware resolves the session cookie (or a Bearer token) to a user.
// Requests without a valid session are sent to the login page.
func AuthMiddleware(tokens *auth.Tokens, users UserLookup, logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := sessionToken(ctx)

		if tokenString == "" {
			redirectToLogin(ctx)
			return
		}

		userID, err := tokens.Verify(tokenString)

		if err != nil {
			ClearSession(ctx)
			redirectToLogin(ctx)
			return
		}

		user, err := users.User(ctx.Request.Context(), userID)

		if errors.Is(err, auth.ErrUnknownUser) {
			ClearSession(ctx)
			redirectToLogin(ctx)
			return
		}

		if err != nil {
			logger.Error("failed to load session user", "user_id", userID, "err", err)
			ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Message": "Something went wrong. Please try again later.",
			})
			ctx.Abort()
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:      user.ID,
			Name:    user.DisplayName(),
			Email:   user.Email,
			Picture: user.Picture,
		})
		ctx.Next()
	}
}

func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)

	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func redirectToLogin(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/login")
	ctx.Abort()
}
