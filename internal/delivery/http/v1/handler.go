// Package v1 is the JSON HTTP API over the local task list and the remote
// slices.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow/internal/service"
	"taskflow/internal/slice"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

type Handler interface {
	HandleRequestLogger(c *gin.Context)
	HandleRemoteRequired(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleGetStats(c *gin.Context)
	HandleGetPreferences(c *gin.Context)
	HandleUpdatePreferences(c *gin.Context)

	HandleGetRemoteTasks(c *gin.Context)
	HandleCreateRemoteTask(c *gin.Context)
	HandleUpdateRemoteTask(c *gin.Context)
	HandleDeleteRemoteTask(c *gin.Context)
	HandleGetProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleUpdateProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)
	HandleSelectProject(c *gin.Context)
	HandleGetMembers(c *gin.Context)
	HandleClearTasksError(c *gin.Context)
	HandleClearProjectsError(c *gin.Context)
	HandleClearMembersError(c *gin.Context)
	HandleGetRemoteState(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	kv     storage.KV
	tasks  *task.Store

	// Nil when no remote backend is connected.
	remoteTasks *slice.Tasks
	projects    *slice.Projects
	members     *slice.Members
	users       *slice.Users
}

// New creates the API handler and loads the cached session once. remote may
// be nil, in which case the remote endpoints answer 503.
func New(
	ctx context.Context,
	logger zerolog.Logger,
	kv storage.KV,
	tasks *task.Store,
	remote service.Service,
) Handler {
	h := &handlerImpl{
		logger: logger,
		kv:     kv,
		tasks:  tasks,
		users:  slice.NewUsers(kv, remote, logger),
	}
	if err := h.users.CheckAuth(ctx); err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to read cached session")
	}
	if remote != nil {
		h.remoteTasks = slice.NewTasks(remote, logger)
		h.projects = slice.NewProjects(remote, logger)
		h.members = slice.NewMembers(remote, logger)
	}
	return h
}

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router = router.Group("/api/v1")

	router.GET("/tasks", h.HandleGetTasks)
	router.POST("/tasks", h.HandleCreateTask)
	router.POST("/tasks/:id/toggle", h.HandleToggleTask)
	router.DELETE("/tasks/:id", h.HandleDeleteTask)
	router.GET("/stats", h.HandleGetStats)
	router.GET("/preferences", h.HandleGetPreferences)
	router.PUT("/preferences", h.HandleUpdatePreferences)

	remoteRouter := router.Group("/remote")
	remoteRouter.GET("/state", h.HandleGetRemoteState)

	remoteRouter.Use(h.HandleRemoteRequired)
	remoteRouter.GET("/tasks", h.HandleGetRemoteTasks)
	remoteRouter.POST("/tasks", h.HandleCreateRemoteTask)
	remoteRouter.PUT("/tasks/:id", h.HandleUpdateRemoteTask)
	remoteRouter.DELETE("/tasks/:id", h.HandleDeleteRemoteTask)
	remoteRouter.GET("/projects", h.HandleGetProjects)
	remoteRouter.POST("/projects", h.HandleCreateProject)
	remoteRouter.PUT("/projects/:id", h.HandleUpdateProject)
	remoteRouter.DELETE("/projects/:id", h.HandleDeleteProject)
	remoteRouter.POST("/projects/:id/select", h.HandleSelectProject)
	remoteRouter.GET("/members", h.HandleGetMembers)
	remoteRouter.POST("/tasks/clear-error", h.HandleClearTasksError)
	remoteRouter.POST("/projects/clear-error", h.HandleClearProjectsError)
	remoteRouter.POST("/members/clear-error", h.HandleClearMembersError)
}
