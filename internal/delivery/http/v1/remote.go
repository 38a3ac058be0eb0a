package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskflow/internal/service"
	"taskflow/internal/slice"
)

type remoteStateResponse struct {
	Tasks    *slice.State[service.Task]   `json:"tasks,omitempty"`
	Projects *slice.ProjectState          `json:"projects,omitempty"`
	Members  *slice.State[service.Member] `json:"members,omitempty"`
	User     slice.UserState              `json:"user"`
}

// pageQuery reads ?page=&limit= into a slice window. Page is 1-based. It
// aborts the request and reports false on malformed values.
func pageQuery(c *gin.Context, defaultLimit int) (limit, offset int, ok bool) {
	page, limit := 1, defaultLimit
	var err error
	if s := c.Query("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page < 1 {
			abort(c, newBadRequestError("invalid page: "+s))
			return 0, 0, false
		}
	}
	if s := c.Query("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 1 {
			abort(c, newBadRequestError("invalid limit: "+s))
			return 0, 0, false
		}
	}
	return limit, (page - 1) * limit, true
}

// statusFilter turns ?status= into a fetch condition.
func statusFilter(c *gin.Context) []service.Condition {
	if s := c.Query("status"); s != "" {
		return []service.Condition{{Field: "status", Value: s}}
	}
	return nil
}

func (h *handlerImpl) HandleGetRemoteTasks(c *gin.Context) {
	limit, offset, ok := pageQuery(c, service.DefaultLimit)
	if !ok {
		return
	}
	h.remoteTasks.SetPagination(limit, offset)
	if err := h.remoteTasks.Fetch(c, service.FetchParams{Filters: statusFilter(c)}); err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusOK, h.remoteTasks.State())
}

func (h *handlerImpl) HandleCreateRemoteTask(c *gin.Context) {
	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	created, err := h.remoteTasks.Create(c, req)
	if err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlerImpl) HandleUpdateRemoteTask(c *gin.Context) {
	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	updated, err := h.remoteTasks.Update(c, service.ID(c.Param("id")), req)
	if err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handlerImpl) HandleDeleteRemoteTask(c *gin.Context) {
	if err := h.remoteTasks.Delete(c, service.ID(c.Param("id"))); err != nil {
		abort(c, remoteError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetProjects(c *gin.Context) {
	limit, offset, ok := pageQuery(c, service.DefaultLimit)
	if !ok {
		return
	}
	h.projects.SetPagination(limit, offset)
	if err := h.projects.Fetch(c, service.FetchParams{Filters: statusFilter(c)}); err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusOK, h.projects.ProjectState())
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	var req service.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	created, err := h.projects.Create(c, req)
	if err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlerImpl) HandleUpdateProject(c *gin.Context) {
	var req service.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	updated, err := h.projects.Update(c, service.ID(c.Param("id")), req)
	if err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c, service.ID(c.Param("id"))); err != nil {
		abort(c, remoteError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleSelectProject(c *gin.Context) {
	id := c.Param("id")
	if id == "-" {
		id = ""
	}
	if !h.projects.Select(service.ID(id)) {
		abort(c, newNotFoundError("project not loaded: "+id))
		return
	}
	c.JSON(http.StatusOK, h.projects.ProjectState())
}

func (h *handlerImpl) HandleGetMembers(c *gin.Context) {
	limit, offset, ok := pageQuery(c, service.MemberLimit)
	if !ok {
		return
	}
	h.members.SetPagination(limit, offset)
	if err := h.members.Fetch(c, service.FetchParams{}); err != nil {
		abort(c, remoteError(err))
		return
	}
	c.JSON(http.StatusOK, h.members.State())
}

func (h *handlerImpl) HandleClearTasksError(c *gin.Context) {
	h.remoteTasks.ClearError()
	c.JSON(http.StatusOK, h.remoteTasks.State())
}

func (h *handlerImpl) HandleClearProjectsError(c *gin.Context) {
	h.projects.ClearError()
	c.JSON(http.StatusOK, h.projects.ProjectState())
}

func (h *handlerImpl) HandleClearMembersError(c *gin.Context) {
	h.members.ClearError()
	c.JSON(http.StatusOK, h.members.State())
}

// HandleGetRemoteState reports the slices as they are. The session is the one
// loaded when the handler was built.
func (h *handlerImpl) HandleGetRemoteState(c *gin.Context) {
	resp := remoteStateResponse{User: h.users.State()}
	if h.remoteTasks != nil {
		tasks := h.remoteTasks.State()
		projects := h.projects.ProjectState()
		members := h.members.State()
		resp.Tasks, resp.Projects, resp.Members = &tasks, &projects, &members
	}
	c.JSON(http.StatusOK, resp)
}
