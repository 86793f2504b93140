package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/types"
)

type CookieConfig struct {
	Domain string
	Secure bool
}

var cookies CookieConfig

// ConfigureCookies sets the attributes used for every cookie the app writes.
func ConfigureCookies(cfg CookieConfig) {
	cookies = cfg
}

func SetCookie(ctx *gin.Context, name, value string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   maxAge,
		Secure:   cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func SetSession(ctx *gin.Context, token string, maxAge int) {
	SetCookie(ctx, types.SessionCookie, token, maxAge)
}

func ClearSession(ctx *gin.Context) {
	SetCookie(ctx, types.SessionCookie, "", -1)
}
