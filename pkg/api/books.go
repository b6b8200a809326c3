package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBooks(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	books, err := h.lib.GetBooks(ctx)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BooksFromModels(books))
}

func (h *Handler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.lib.GetBookByID(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BookFromModel(*book))
}

func (h *Handler) CreateBook(c *gin.Context) {
	var in CreateBookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.lib.AddBook(ctx, in.toModel(in.ID))
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, BookFromModel(*book))
}

func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in BookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.lib.SetBookByID(ctx, in.toModel(id), id)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, BookFromModel(*book))
}

func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	book, err := h.lib.RemoveBook(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BookFromModel(*book))
}

func (h *Handler) SearchByAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	books, err := h.lib.SearchByAuthor(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BooksFromModels(books))
}

func (h *Handler) SearchByGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	books, err := h.lib.SearchByGenre(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BooksFromModels(books))
}
