package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListGenres(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	genres, err := h.lib.GetGenres(ctx)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	resp := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, GenreFromModel(g))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	genre, err := h.lib.GetGenreByID(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, GenreFromModel(*genre))
}

func (h *Handler) CreateGenre(c *gin.Context) {
	var in CreateGenreRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	genre, err := h.lib.AddGenre(ctx, in.toModel(in.ID))
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, GenreFromModel(*genre))
}

func (h *Handler) UpdateGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in GenreRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	genre, err := h.lib.SetGenreByID(ctx, in.toModel(id), id)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, GenreFromModel(*genre))
}

// DeleteGenre refuses with 400 while books still reference the genre.
func (h *Handler) DeleteGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	genre, err := h.lib.RemoveGenre(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, GenreFromModel(*genre))
}
