package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAuthors(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	authors, err := h.lib.GetAuthors(ctx)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	resp := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		resp = append(resp, AuthorFromModel(a))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	author, err := h.lib.GetAuthorByID(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, AuthorFromModel(*author))
}

func (h *Handler) CreateAuthor(c *gin.Context) {
	var in CreateAuthorRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	author, err := h.lib.AddAuthor(ctx, in.toModel(in.ID))
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, AuthorFromModel(*author))
}

func (h *Handler) UpdateAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in AuthorRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	author, err := h.lib.SetAuthorByID(ctx, in.toModel(id), id)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, AuthorFromModel(*author))
}

// DeleteAuthor also drops every book link of the author.
func (h *Handler) DeleteAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	author, err := h.lib.RemoveAuthor(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, AuthorFromModel(*author))
}
