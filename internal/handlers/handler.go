package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/scheduler"
	"github.com/monocle-dev/todolist/internal/todo"
	"github.com/monocle-dev/todolist/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck is the scheduler job that pings the store in the background.
const StoreCheck = "store"

type CheckStatus interface {
	Status(name string) (scheduler.Result, bool)
}

type Handler struct {
	Todos  *todo.Service
	Auth   *auth.Service
	Tokens *auth.Tokens
	// Google is nil when Google sign-in is not configured.
	Google auth.OAuthProvider
	Store  Pinger
	// Checks is optional; when set, /healthz reports the last background check.
	Checks CheckStatus
	Logger *log.Logger
	Now    func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}

	return h.Now()
}

// render fills in the values every view expects.
func (h *Handler) render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}

	if user, err := utils.GetCurrentUser(ctx); err == nil {
		data["User"] = user
	} else {
		data["User"] = nil
	}

	data["GoogleEnabled"] = h.Google != nil

	ctx.HTML(status, name, data)
}

// redirect uses 303 after a form post so the browser follows with a GET.
func redirect(ctx *gin.Context, location string) {
	status := http.StatusFound

	if ctx.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}

	ctx.Redirect(status, location)
}

// fail maps a todo error onto a response. Expected outcomes become redirects;
// anything else is logged and rendered as an error page.
func (h *Handler) fail(ctx *gin.Context, err error, back string) {
	switch {
	case errors.Is(err, todo.ErrNotAuthenticated):
		redirect(ctx, "/login")
	case errors.Is(err, todo.ErrListNotFound), errors.Is(err, todo.ErrMainListProtected):
		redirect(ctx, "/main")
	case errors.Is(err, todo.ErrTaskNotFound),
		errors.Is(err, todo.ErrEmptyTask),
		errors.Is(err, todo.ErrInvalidListName):
		redirect(ctx, back)
	default:
		h.serverError(ctx, err)
	}
}

func (h *Handler) serverError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	h.Logger.Error("request failed", "path", ctx.Request.URL.Path, "user_id", utils.GetCurrentUserID(ctx), "err", err)
	h.render(ctx, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again later.",
	})
}
