package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AttachAuthor(c *gin.Context) {
	authorID, ok := pathID(c, "authorId")
	if !ok {
		return
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.lib.UpdateAuthor(ctx, authorID, bookID); err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BookAuthorResponse{BookID: bookID, AuthorID: authorID})
}

func (h *Handler) AttachGenre(c *gin.Context) {
	genreID, ok := pathID(c, "genreId")
	if !ok {
		return
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.lib.UpdateGenre(ctx, genreID, bookID); err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BookGenreResponse{BookID: bookID, GenreID: genreID})
}

func (h *Handler) DetachAuthors(c *gin.Context) {
	h.detach(c, h.lib.RemoveBookAuthors)
}

func (h *Handler) DetachGenres(c *gin.Context) {
	h.detach(c, h.lib.RemoveBookGenres)
}

func (h *Handler) detach(c *gin.Context, remove func(ctx context.Context, bookID int) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	if err := remove(ctx, id); err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	book, err := h.lib.GetBookByID(ctx, id)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, BookFromModel(*book))
}

func (h *Handler) ListBookAuthors(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	links, err := h.lib.GetBookAuthors(ctx)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	resp := make([]BookAuthorResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, BookAuthorResponse{BookID: l.BookID, AuthorID: l.AuthorID})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListBookGenres(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	links, err := h.lib.GetBookGenres(ctx)
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	resp := make([]BookGenreResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, BookGenreResponse{BookID: l.BookID, GenreID: l.GenreID})
	}
	c.JSON(http.StatusOK, resp)
}
