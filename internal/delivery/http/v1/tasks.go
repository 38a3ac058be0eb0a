package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/storage"
	"taskflow/internal/task"
)

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	filter, err := task.ParseFilter(c.Query("filter"))
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}
	key, err := task.ParseSortKey(c.Query("sort"))
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}

	view := task.View(h.tasks.Tasks(), filter, key)
	if view == nil {
		view = []task.Task{}
	}
	h.logger.Debug().
		Str("filter", string(filter)).
		Str("sort", string(key)).
		Int("count", len(view)).
		Msg("selected tasks")
	c.JSON(http.StatusOK, view)
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	draft := task.Draft{Title: req.Title, Description: req.Description}
	if req.Priority != "" {
		p, err := task.ParsePriority(req.Priority)
		if err != nil {
			abort(c, newBadRequestError(err.Error()))
			return
		}
		draft.Priority = p
	}

	created, err := h.tasks.Create(c, draft)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, localError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	id := c.Param("id")
	toggled, err := h.tasks.ToggleStatus(c, id)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to toggle task")
		abort(c, localError(err))
		return
	}
	c.JSON(http.StatusOK, toggled)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.tasks.Delete(c, id)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		abort(c, localError(err))
		return
	}
	if !removed {
		h.logger.Debug().
			Str("task_id", id).
			Msg("delete of unknown task ignored")
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.tasks.Counts())
}

type preferences struct {
	DarkMode *bool `json:"darkMode"`
}

func (h *handlerImpl) HandleGetPreferences(c *gin.Context) {
	dark, err := storage.DarkMode(c, h.kv)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read preferences")
		abort(c, localError(err))
		return
	}
	c.JSON(http.StatusOK, preferences{DarkMode: &dark})
}

func (h *handlerImpl) HandleUpdatePreferences(c *gin.Context) {
	var req preferences
	if err := c.ShouldBindJSON(&req); err != nil || req.DarkMode == nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	if err := storage.SetDarkMode(c, h.kv, *req.DarkMode); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to store preferences")
		abort(c, localError(err))
		return
	}
	c.JSON(http.StatusOK, req)
}
