package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/todo"
	"github.com/monocle-dev/todolist/internal/utils"
)

type CreateListRequest struct {
	Name string `form:"newListName"`
}

type DeleteListRequest struct {
	ListID   string `form:"listId"`
	ListName string `form:"listName"`
}

func (h *Handler) MainList(ctx *gin.Context) {
	h.showList(ctx, models.MainListName)
}

// ShowList serves /:listName, creating the list on first visit.
func (h *Handler) ShowList(ctx *gin.Context) {
	raw := ctx.Param("listName")

	// Browsers probe paths like /favicon.ico; those are never lists.
	if strings.Contains(raw, ".") {
		ctx.Status(http.StatusNotFound)
		return
	}

	name := todo.NormalizeListName(raw)

	if name == "" {
		redirect(ctx, "/main")
		return
	}

	if name != raw || name == models.MainListName {
		redirect(ctx, models.ListPath(name))
		return
	}

	h.showList(ctx, name)
}

func (h *Handler) showList(ctx *gin.Context, name string) {
	userID := utils.GetCurrentUserID(ctx)
	reqCtx := ctx.Request.Context()

	list, err := h.Todos.ResolveOrCreateList(reqCtx, userID, name)

	if err != nil {
		h.fail(ctx, err, "/main")
		return
	}

	lists, err := h.Todos.ListAllForUser(reqCtx, userID)

	if err != nil {
		h.fail(ctx, err, "/main")
		return
	}

	h.render(ctx, http.StatusOK, "main.html", gin.H{
		"Title": list.Name,
		"List":  list,
		"Tasks": list.Tasks,
		"Lists": lists,
		"Today": utils.FormatDay(h.now()),
	})
}

func (h *Handler) NewListPage(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "newList.html", gin.H{"Title": "New list"})
}

func (h *Handler) CreateList(ctx *gin.Context) {
	var req CreateListRequest

	if err := ctx.ShouldBind(&req); err != nil {
		redirect(ctx, "/createNewList")
		return
	}

	if strings.ContainsAny(req.Name, "./") {
		h.render(ctx, http.StatusBadRequest, "newList.html", gin.H{
			"Title": "New list",
			"Error": "List names can't contain dots or slashes.",
		})
		return
	}

	list, err := h.Todos.CreateList(ctx.Request.Context(), utils.GetCurrentUserID(ctx), req.Name)

	switch {
	case err == nil, errors.Is(err, todo.ErrDuplicateList):
		redirect(ctx, list.Path())
	case errors.Is(err, todo.ErrInvalidListName):
		h.render(ctx, http.StatusBadRequest, "newList.html", gin.H{
			"Title": "New list",
			"Error": "Give the list a name.",
		})
	default:
		h.fail(ctx, err, "/createNewList")
	}
}

func (h *Handler) DeleteList(ctx *gin.Context) {
	var req DeleteListRequest

	if err := ctx.ShouldBind(&req); err != nil {
		redirect(ctx, "/main")
		return
	}

	err := h.Todos.DeleteList(ctx.Request.Context(), utils.GetCurrentUserID(ctx), req.ListID, req.ListName)

	if err != nil {
		h.fail(ctx, err, "/main")
		return
	}

	redirect(ctx, "/main")
}
