package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/middleware"
	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/types"
	"github.com/monocle-dev/todolist/internal/utils"
)

type CreateUserRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required,min=6"`
}

type LoginUserRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

const stateMaxAge = 10 * 60

func (h *Handler) Home(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "home.html", nil)
}

func (h *Handler) RegisterPage(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *Handler) LoginPage(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if err := ctx.ShouldBind(&req); err != nil {
		h.render(ctx, http.StatusBadRequest, "register.html", gin.H{
			"Title":    "Register",
			"Username": req.Username,
			"Error":    "Choose a username and a password of at least 6 characters.",
		})
		return
	}

	user, err := h.Auth.Register(ctx.Request.Context(), req.Username, req.Password)

	if err != nil {
		status := http.StatusInternalServerError
		message := "Something went wrong. Please try again later."

		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			status, message = http.StatusConflict, "That username is already taken."
		case errors.Is(err, auth.ErrMissingUsername), errors.Is(err, auth.ErrWeakPassword):
			status, message = http.StatusBadRequest, err.Error()
		default:
			h.Logger.Error("failed to register user", "username", req.Username, "err", err)
		}

		h.render(ctx, status, "register.html", gin.H{
			"Title":    "Register",
			"Username": req.Username,
			"Error":    message,
		})
		return
	}

	h.startSession(ctx, user)
}

func (h *Handler) LoginUser(ctx *gin.Context) {
	var req LoginUserRequest

	if err := ctx.ShouldBind(&req); err != nil {
		h.render(ctx, http.StatusBadRequest, "login.html", gin.H{
			"Title":    "Login",
			"Username": req.Username,
			"Error":    "Enter your username and password.",
		})
		return
	}

	user, err := h.Auth.Login(ctx.Request.Context(), req.Username, req.Password)

	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid username or password."

		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Error("failed to log in user", "username", req.Username, "err", err)
			status, message = http.StatusInternalServerError, "Something went wrong. Please try again later."
		}

		h.render(ctx, status, "login.html", gin.H{
			"Title":    "Login",
			"Username": req.Username,
			"Error":    message,
		})
		return
	}

	h.startSession(ctx, user)
}

func (h *Handler) LogoutUser(ctx *gin.Context) {
	middleware.ClearSession(ctx)
	redirect(ctx, "/")
}

// Me returns the signed-in user as JSON.
func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:      currentUser.ID,
			Name:    currentUser.Name,
			Email:   currentUser.Email,
			Picture: currentUser.Picture,
		},
	})
}

func (h *Handler) GoogleLogin(ctx *gin.Context) {
	if h.Google == nil {
		redirect(ctx, "/login")
		return
	}

	state := uuid.NewString()
	middleware.SetCookie(ctx, types.StateCookie, state, stateMaxAge)

	ctx.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

func (h *Handler) GoogleCallback(ctx *gin.Context) {
	if h.Google == nil {
		redirect(ctx, "/login")
		return
	}

	expected, err := ctx.Cookie(types.StateCookie)
	middleware.SetCookie(ctx, types.StateCookie, "", -1)

	if err != nil || expected == "" || ctx.Query("state") != expected {
		h.Logger.Warn("google callback with mismatched state")
		redirect(ctx, "/login")
		return
	}

	code := ctx.Query("code")

	if code == "" {
		redirect(ctx, "/login")
		return
	}

	profile, err := h.Google.Exchange(ctx.Request.Context(), code)

	if err != nil {
		h.Logger.Warn("google sign-in failed", "err", err)
		redirect(ctx, "/login")
		return
	}

	user, err := h.Auth.GoogleLogin(ctx.Request.Context(), profile)

	if err != nil {
		h.Logger.Error("failed to store google user", "google_id", profile.ID, "err", err)
		redirect(ctx, "/login")
		return
	}

	h.startSession(ctx, user)
}

// startSession signs the user in and provisions their Main list before
// sending them to it. A provisioning failure is not fatal: /main creates the
// list on first view.
func (h *Handler) startSession(ctx *gin.Context, user *models.User) {
	token, err := h.Tokens.Generate(user.ID)

	if err != nil {
		h.serverError(ctx, err)
		return
	}

	middleware.SetSession(ctx, token, int(h.Tokens.TTL().Seconds()))

	if _, err := h.Todos.EnsureMainList(ctx.Request.Context(), user.ID); err != nil {
		h.Logger.Warn("failed to provision main list", "user_id", user.ID, "err", err)
	}

	redirect(ctx, models.ListPath(models.MainListName))
}
