package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
)

// handleStream pushes a collection to the client as server-sent events.
// The first event is the current snapshot; every change notification
// sends the whole collection again. Switching the active workspace
// moves the subscription to the new scope.
func (s *Server) handleStream(c *gin.Context) {
	name := c.Param("collection")
	if name != models.CollectionWorkspaces && !slices.Contains(models.ScopedCollections, name) {
		s.respondError(c, http.StatusNotFound, fmt.Errorf("collection %q: %w", name, sqlite.ErrNotFound))
		return
	}

	ctx := c.Request.Context()
	data, ws, err := s.planner.Collection(ctx, name)
	if err != nil {
		s.fail(c, err)
		return
	}

	hub := s.planner.Hub()
	scope := hub.Subscribe(ctx, models.CollectionWorkspaces, "")
	subCtx, cancel := context.WithCancel(ctx)
	changes := hub.Subscribe(subCtx, name, ws)
	defer func() { cancel() }()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	first := true
	c.Stream(func(w io.Writer) bool {
		if first {
			first = false
			c.SSEvent(name, data)
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case _, ok := <-changes:
			if !ok {
				return false
			}
		case _, ok := <-scope:
			if !ok {
				return false
			}
		}

		data, current, err := s.planner.Collection(ctx, name)
		if err != nil {
			s.logger.Warn("stream reload failed", slog.String("collection", name), slog.String("error", err.Error()))
			return false
		}
		if current != ws {
			cancel()
			subCtx, cancel = context.WithCancel(ctx)
			changes = hub.Subscribe(subCtx, name, current)
			ws = current
		}
		c.SSEvent(name, data)
		return true
	})
}
