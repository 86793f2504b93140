package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/handlers"
	"github.com/monocle-dev/todolist/internal/logger"
	"github.com/monocle-dev/todolist/internal/middleware"
	"github.com/monocle-dev/todolist/web"
)

type Options struct {
	AllowedOrigins []string
	Logger         *log.Logger
}

func NewRouter(h *handlers.Handler, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Requests(opts.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	templates, err := web.Templates()

	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r.SetHTMLTemplate(templates)
	r.StaticFS("/static", http.FS(web.Static()))

	requireUser := middleware.AuthMiddleware(h.Tokens, h.Auth, opts.Logger)

	r.GET("/", h.Home)
	r.GET("/healthz", h.HealthCheck)

	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.CreateUser)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginUser)
	r.POST("/logout", h.LogoutUser)

	oauth := r.Group("/auth/google")
	{
		oauth.GET("", h.GoogleLogin)
		oauth.GET("/todolist", h.GoogleCallback)
	}

	api := r.Group("/api", requireUser)
	{
		api.GET("/me", h.Me)
	}

	lists := r.Group("", requireUser)
	{
		lists.GET("/main", h.MainList)
		lists.GET("/createNewList", h.NewListPage)
		lists.POST("/createNewList", h.CreateList)
		lists.POST("/newList", h.CreateList)
		lists.POST("/deleteNewList", h.DeleteList)

		lists.POST("/addTask", h.AddTask)
		lists.POST("/editTask", h.EditTask)
		lists.POST("/deleteTask", h.DeleteTask)

		lists.GET("/:listName", h.ShowList)
	}

	return r, nil
}
