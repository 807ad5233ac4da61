package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sprintboard/internal/board"
)

// moveRequest is a drag gesture, or an explicit placement when
// destination is set.
type moveRequest struct {
	CardID      int64  `json:"card_id"`
	OverColumn  string `json:"over_column"`
	OverCardID  int64  `json:"over_card_id"`
	Destination string `json:"destination"`
	Index       *int   `json:"index"`
}

func (r moveRequest) drop() board.Drop {
	return board.Drop{CardID: r.CardID, OverColumn: r.OverColumn, OverCardID: r.OverCardID}
}

func (r moveRequest) move() board.Move {
	idx := -1
	if r.Index != nil {
		idx = *r.Index
	}
	return board.Move{CardID: r.CardID, Destination: r.Destination, Index: idx}
}

func bindMove(c *gin.Context) (moveRequest, error) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	if req.CardID == 0 {
		return req, fmt.Errorf("card_id is required")
	}
	return req, nil
}

// handleProductBoard renders the discovery columns.
func (s *Server) handleProductBoard(c *gin.Context) {
	columns, err := s.planner.ProductBoard(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"columns": columns})
}

// handleEngineeringBoard renders the delivery columns with the Done
// share of all points.
func (s *Server) handleEngineeringBoard(c *gin.Context) {
	columns, err := s.planner.EngineeringBoard(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	completion, err := s.planner.Completion(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"columns": columns, "completion": completion})
}

// handleMoveTask applies a drop on either task board. A gesture that
// resolves to nothing answers 200 with moved=false.
func (s *Server) handleMoveTask(c *gin.Context) {
	req, err := bindMove(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	var moved bool
	if req.Destination != "" {
		moved, err = s.planner.PlaceTask(c.Request.Context(), req.move())
	} else {
		moved, err = s.planner.MoveTask(c.Request.Context(), req.drop())
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"moved": moved})
}

// handleSprintBoard renders a sprint's execution columns and progress.
func (s *Server) handleSprintBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sb, err := s.planner.SprintBoard(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, sb)
}

// handleMoveSprintTask applies a drop on a sprint board.
func (s *Server) handleMoveSprintTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := bindMove(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	moved, err := s.planner.MoveSprintTask(c.Request.Context(), id, req.drop())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"moved": moved})
}

type addSprintTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// handleAddSprintTask links a task into a sprint.
func (s *Server) handleAddSprintTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req addSprintTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	link, err := s.planner.AddToSprint(c.Request.Context(), id, req.TaskID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sprint_task": link})
}

// handleSprintProgress returns the dashboard figures of a sprint.
func (s *Server) handleSprintProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	progress, err := s.planner.SprintProgress(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"progress": progress})
}

// handleSquadCapacity rolls up a squad's capacity, optionally against
// the sprint given in ?sprint=.
func (s *Server) handleSquadCapacity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var sprintID int64
	if raw := c.Query("sprint"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid sprint: %w", err))
			return
		}
		sprintID = v
	}
	capacity, err := s.planner.SquadCapacity(c.Request.Context(), id, sprintID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"capacity": capacity})
}

// handleRenderDocument serves a document page as HTML.
func (s *Server) handleRenderDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	html, err := s.planner.RenderDocument(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
