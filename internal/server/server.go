package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sprintboard/internal/models"
	"sprintboard/internal/planner"
	"sprintboard/internal/workspace"
)

// Server provides HTTP handlers for the sprint planning backend.
type Server struct {
	engine    *gin.Engine
	planner   *planner.Service
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *planner.Service, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))

	srv := &Server{
		engine:    router,
		planner:   svc,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		workspaces := api.Group("/workspaces")
		{
			workspaces.GET("", s.handleListWorkspaces)
			workspaces.POST("", s.handleCreateWorkspace)
			workspaces.GET("/active", s.handleActiveWorkspace)
			workspaces.PUT("/active", s.handleSelectWorkspace)
			workspaces.DELETE("/:id", s.handleDeleteWorkspace)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.list(models.CollectionTasks))
			tasks.POST("", create(s, "task", s.planner.CreateTask))
			tasks.GET("/:id", fetch(s, "task", s.planner.GetTask))
			tasks.PATCH("/:id", update(s, "task", s.planner.UpdateTask))
			tasks.PUT("/:id", update(s, "task", s.planner.UpdateTask))
			tasks.DELETE("/:id", remove(s, s.planner.DeleteTask))
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", s.list(models.CollectionAssignments))
			assignments.POST("", create(s, "assignment", s.planner.Assign))
			assignments.DELETE("/:id", remove(s, s.planner.Unassign))
		}

		squads := api.Group("/squads")
		{
			squads.GET("", s.list(models.CollectionSquads))
			squads.POST("", create(s, "squad", s.planner.CreateSquad))
			squads.PATCH("/:id", update(s, "squad", s.planner.UpdateSquad))
			squads.DELETE("/:id", remove(s, s.planner.DeleteSquad))
			squads.GET("/:id/capacity", s.handleSquadCapacity)
		}

		members := api.Group("/members")
		{
			members.GET("", s.list(models.CollectionMembers))
			members.POST("", create(s, "member", s.planner.CreateMember))
			members.PATCH("/:id", update(s, "member", s.planner.UpdateMember))
			members.DELETE("/:id", remove(s, s.planner.DeleteMember))
		}

		sprints := api.Group("/sprints")
		{
			sprints.GET("", s.list(models.CollectionSprints))
			sprints.POST("", create(s, "sprint", s.planner.CreateSprint))
			sprints.PATCH("/:id", update(s, "sprint", s.planner.UpdateSprint))
			sprints.DELETE("/:id", remove(s, s.planner.DeleteSprint))
			sprints.POST("/:id/tasks", s.handleAddSprintTask)
			sprints.GET("/:id/board", s.handleSprintBoard)
			sprints.POST("/:id/board/move", s.handleMoveSprintTask)
			sprints.GET("/:id/progress", s.handleSprintProgress)
		}
		api.GET("/sprint-tasks", s.list(models.CollectionSprintTasks))
		api.DELETE("/sprint-tasks/:id", remove(s, s.planner.RemoveFromSprint))

		releases := api.Group("/releases")
		{
			releases.GET("", s.list(models.CollectionReleases))
			releases.POST("", create(s, "release", s.planner.CreateRelease))
			releases.PATCH("/:id", update(s, "release", s.planner.UpdateRelease))
			releases.DELETE("/:id", remove(s, s.planner.DeleteRelease))
		}

		docs := api.Group("/docs")
		{
			docs.GET("", s.list(models.CollectionDocuments))
			docs.POST("", create(s, "document", s.planner.CreateDocument))
			docs.GET("/:id", fetch(s, "document", s.planner.GetDocument))
			docs.GET("/:id/html", s.handleRenderDocument)
			docs.PATCH("/:id", update(s, "document", s.planner.UpdateDocument))
			docs.DELETE("/:id", remove(s, s.planner.DeleteDocument))
		}

		boards := api.Group("/boards")
		{
			boards.GET("/product", s.handleProductBoard)
			boards.GET("/engineering", s.handleEngineeringBoard)
			boards.POST("/tasks/move", s.handleMoveTask)
		}

		api.GET("/stream/:collection", s.handleStream)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	body := gin.H{"error": err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}

// fail maps a service error onto its HTTP status.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusOf(err), err)
}

// statusClientClosedRequest is the nginx status for a request the client
// gave up on.
const statusClientClosedRequest = 499

func statusOf(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusUnprocessableEntity
	case planner.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrNoWorkspace):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	}
	return http.StatusInternalServerError
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
