package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/middleware"
	"github.com/monocle-dev/todolist/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

// GetCurrentUserID returns "" when the request carries no user, which the
// todo service rejects as not authenticated.
func GetCurrentUserID(ctx *gin.Context) string {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return ""
	}

	return user.ID
}
