package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintboard/internal/models"
)

type selectRequest struct {
	ID string `json:"id"`
}

// handleListWorkspaces returns all workspaces, oldest first.
func (s *Server) handleListWorkspaces(c *gin.Context) {
	workspaces, err := s.planner.ListWorkspaces(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"workspaces": workspaces})
}

// handleCreateWorkspace creates a workspace without switching to it.
func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req models.Workspace
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	ws, err := s.planner.CreateWorkspace(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"workspace": ws})
}

// handleActiveWorkspace reports which workspace requests are scoped to.
func (s *Server) handleActiveWorkspace(c *gin.Context) {
	ws, err := s.planner.ActiveWorkspace(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"workspace": ws})
}

// handleSelectWorkspace switches the active workspace.
func (s *Server) handleSelectWorkspace(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	ws, err := s.planner.SelectWorkspace(c.Request.Context(), req.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"workspace": ws})
}

// handleDeleteWorkspace removes a workspace and everything scoped to it.
func (s *Server) handleDeleteWorkspace(c *gin.Context) {
	if err := s.planner.DeleteWorkspace(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
