package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// list returns one collection of the active workspace under its name.
func (s *Server) list(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, _, err := s.planner.Collection(c.Request.Context(), collection)
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{collection: data})
	}
}

func create[T any](s *Server, key string, fn func(context.Context, T) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		out, err := fn(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusCreated, gin.H{key: out})
	}
}

func fetch[T any](s *Server, key string, fn func(context.Context, int64) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		out, err := fn(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{key: out})
	}
}

// update binds a patch body. Keys missing from the body leave the
// field untouched; explicit nulls clear nullable fields.
func update[P, T any](s *Server, key string, fn func(context.Context, int64, P) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var patch P
		if err := c.ShouldBindJSON(&patch); err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		out, err := fn(c.Request.Context(), id, patch)
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{key: out})
	}
}

func remove(s *Server, fn func(context.Context, int64) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := fn(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
	}
}
