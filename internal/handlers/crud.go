package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-portal/internal/api"
)

// Generic handlers for plain backend collections. The query string of list
// requests is forwarded as is.

func listHandler[T any](h *BaseHandler, r *api.Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.LogRequest(c, "Listing resource", "resource", r.Path())
		items, err := r.List(h.backendContext(c), c.Request.URL.Query())
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func getHandler[T any](h *BaseHandler, r *api.Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseIDParam(c, "id")
		if id == 0 {
			return
		}
		item, err := r.Get(h.backendContext(c), id)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func createHandler[T, R any](h *BaseHandler, r *api.Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req R
		if !h.bind(c, &req) {
			return
		}
		h.LogRequest(c, "Creating resource", "resource", r.Path())
		item, err := r.Create(h.backendContext(c), req)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// updateHandler replaces the resource with PUT and then runs after, if set.
func updateHandler[T, R any](h *BaseHandler, r *api.Resource[T], after func(c *gin.Context, id int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseIDParam(c, "id")
		if id == 0 {
			return
		}
		var req R
		if !h.bind(c, &req) {
			return
		}
		h.LogRequest(c, "Updating resource", "resource", r.Path(), "id", id)
		item, err := r.Update(h.backendContext(c), id, req)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		if after != nil {
			after(c, id)
		}
		c.JSON(http.StatusOK, item)
	}
}

func deleteHandler[T any](h *BaseHandler, r *api.Resource[T], after func(c *gin.Context, id int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseIDParam(c, "id")
		if id == 0 {
			return
		}
		h.LogRequest(c, "Deleting resource", "resource", r.Path(), "id", id)
		if err := r.Delete(h.backendContext(c), id); err != nil {
			h.handleServiceError(c, err)
			return
		}
		if after != nil {
			after(c, id)
		}
		c.Status(http.StatusNoContent)
	}
}
