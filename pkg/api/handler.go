package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bookservice/pkg/library"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

// Handler serves the catalog REST API on top of a Library.
type Handler struct {
	lib     library.Library
	logger  *zap.Logger
	timeout time.Duration
}

func NewHandler(lib library.Library, logger *zap.Logger) *Handler {
	return &Handler{lib: lib, logger: logger, timeout: defaultTimeout}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	books.GET("", h.ListBooks)
	books.POST("", h.CreateBook)
	books.GET("/:id", h.GetBook)
	books.PUT("/:id", h.UpdateBook)
	books.DELETE("/:id", h.DeleteBook)
	books.GET("/search-author/:id", h.SearchByAuthor)
	books.GET("/search-genre/:id", h.SearchByGenre)
	books.PUT("/author-update/:authorId/:bookId", h.AttachAuthor)
	books.PUT("/author-remove/:id", h.DetachAuthors)
	books.PUT("/genre-update/:genreId/:bookId", h.AttachGenre)
	books.PUT("/genre-remove/:id", h.DetachGenres)

	authors := rg.Group("/authors")
	authors.GET("", h.ListAuthors)
	authors.POST("", h.CreateAuthor)
	authors.GET("/:id", h.GetAuthor)
	authors.PUT("/:id", h.UpdateAuthor)
	authors.DELETE("/:id", h.DeleteAuthor)

	genres := rg.Group("/genres")
	genres.GET("", h.ListGenres)
	genres.POST("", h.CreateGenre)
	genres.GET("/:id", h.GetGenre)
	genres.PUT("/:id", h.UpdateGenre)
	genres.DELETE("/:id", h.DeleteGenre)

	rg.GET("/book-authors", h.ListBookAuthors)
	rg.GET("/book-genres", h.ListBookGenres)
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// pathID parses an integer path parameter, answering 400 when it is not one.
// Ids that match nothing are left to the library to report.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
