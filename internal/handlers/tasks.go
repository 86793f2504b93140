package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/todo"
	"github.com/monocle-dev/todolist/internal/utils"
)

type AddTaskRequest struct {
	Task     string `form:"task"`
	ListName string `form:"listName"`
}

type EditTaskRequest struct {
	TaskID     string `form:"taskId"`
	EditedTask string `form:"editedTask"`
	ListName   string `form:"listName"`
}

type DeleteTaskRequest struct {
	TaskID   string `form:"task"`
	ListName string `form:"listName"`
}

// listLocation is where a task form returns to.
func listLocation(listName string) string {
	name := todo.NormalizeListName(listName)

	if name == "" {
		name = models.MainListName
	}

	return models.ListPath(name)
}

func (h *Handler) AddTask(ctx *gin.Context) {
	var req AddTaskRequest

	if err := ctx.ShouldBind(&req); err != nil {
		redirect(ctx, "/main")
		return
	}

	back := listLocation(req.ListName)

	if _, err := h.Todos.AddTask(ctx.Request.Context(), utils.GetCurrentUserID(ctx), req.ListName, req.Task); err != nil {
		h.fail(ctx, err, back)
		return
	}

	redirect(ctx, back)
}

func (h *Handler) EditTask(ctx *gin.Context) {
	var req EditTaskRequest

	if err := ctx.ShouldBind(&req); err != nil {
		redirect(ctx, "/main")
		return
	}

	back := listLocation(req.ListName)

	if _, err := h.Todos.EditTask(ctx.Request.Context(), utils.GetCurrentUserID(ctx), req.ListName, req.TaskID, req.EditedTask); err != nil {
		h.fail(ctx, err, back)
		return
	}

	redirect(ctx, back)
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	var req DeleteTaskRequest

	if err := ctx.ShouldBind(&req); err != nil {
		redirect(ctx, "/main")
		return
	}

	back := listLocation(req.ListName)

	if err := h.Todos.DeleteTask(ctx.Request.Context(), utils.GetCurrentUserID(ctx), req.ListName, req.TaskID); err != nil {
		h.fail(ctx, err, back)
		return
	}

	redirect(ctx, back)
}
