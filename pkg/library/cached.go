package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookservice/pkg/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const generationKey = "catalog:generation"

// Cached is a read-through redis cache in front of another Library.
// Reads are stored under keys scoped by a generation counter; any
// successful write bumps the counter, which retires every cached read.
// Redis failures are logged and never fail the call.
type Cached struct {
	next   Library
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ Library = (*Cached)(nil)

func NewCached(next Library, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *Cached) GetBooks(ctx context.Context) ([]models.Book, error) {
	return readThrough(ctx, c, "books", func() ([]models.Book, error) {
		return c.next.GetBooks(ctx)
	})
}

func (c *Cached) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	return readThrough(ctx, c, fmt.Sprintf("book:%d", id), func() (*models.Book, error) {
		return c.next.GetBookByID(ctx, id)
	})
}

func (c *Cached) AddBook(ctx context.Context, book models.Book) (*models.Book, error) {
	return writeThrough(ctx, c, func() (*models.Book, error) {
		return c.next.AddBook(ctx, book)
	})
}

func (c *Cached) SetBookByID(ctx context.Context, book models.Book, id int) (*models.Book, error) {
	return writeThrough(ctx, c, func() (*models.Book, error) {
		return c.next.SetBookByID(ctx, book, id)
	})
}

func (c *Cached) RemoveBook(ctx context.Context, id int) (*models.Book, error) {
	return writeThrough(ctx, c, func() (*models.Book, error) {
		return c.next.RemoveBook(ctx, id)
	})
}

func (c *Cached) GetAuthors(ctx context.Context) ([]models.Author, error) {
	return readThrough(ctx, c, "authors", func() ([]models.Author, error) {
		return c.next.GetAuthors(ctx)
	})
}

func (c *Cached) GetAuthorByID(ctx context.Context, id int) (*models.Author, error) {
	return readThrough(ctx, c, fmt.Sprintf("author:%d", id), func() (*models.Author, error) {
		return c.next.GetAuthorByID(ctx, id)
	})
}

func (c *Cached) AddAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	return writeThrough(ctx, c, func() (*models.Author, error) {
		return c.next.AddAuthor(ctx, author)
	})
}

func (c *Cached) SetAuthorByID(ctx context.Context, author models.Author, id int) (*models.Author, error) {
	return writeThrough(ctx, c, func() (*models.Author, error) {
		return c.next.SetAuthorByID(ctx, author, id)
	})
}

func (c *Cached) RemoveAuthor(ctx context.Context, id int) (*models.Author, error) {
	return writeThrough(ctx, c, func() (*models.Author, error) {
		return c.next.RemoveAuthor(ctx, id)
	})
}

func (c *Cached) GetGenres(ctx context.Context) ([]models.Genre, error) {
	return readThrough(ctx, c, "genres", func() ([]models.Genre, error) {
		return c.next.GetGenres(ctx)
	})
}

func (c *Cached) GetGenreByID(ctx context.Context, id int) (*models.Genre, error) {
	return readThrough(ctx, c, fmt.Sprintf("genre:%d", id), func() (*models.Genre, error) {
		return c.next.GetGenreByID(ctx, id)
	})
}

func (c *Cached) AddGenre(ctx context.Context, genre models.Genre) (*models.Genre, error) {
	return writeThrough(ctx, c, func() (*models.Genre, error) {
		return c.next.AddGenre(ctx, genre)
	})
}

func (c *Cached) SetGenreByID(ctx context.Context, genre models.Genre, id int) (*models.Genre, error) {
	return writeThrough(ctx, c, func() (*models.Genre, error) {
		return c.next.SetGenreByID(ctx, genre, id)
	})
}

func (c *Cached) RemoveGenre(ctx context.Context, id int) (*models.Genre, error) {
	return writeThrough(ctx, c, func() (*models.Genre, error) {
		return c.next.RemoveGenre(ctx, id)
	})
}

func (c *Cached) UpdateAuthor(ctx context.Context, authorID, bookID int) error {
	return c.mutate(ctx, c.next.UpdateAuthor(ctx, authorID, bookID))
}

func (c *Cached) UpdateGenre(ctx context.Context, genreID, bookID int) error {
	return c.mutate(ctx, c.next.UpdateGenre(ctx, genreID, bookID))
}

func (c *Cached) RemoveBookAuthors(ctx context.Context, bookID int) error {
	return c.mutate(ctx, c.next.RemoveBookAuthors(ctx, bookID))
}

func (c *Cached) RemoveBookGenres(ctx context.Context, bookID int) error {
	return c.mutate(ctx, c.next.RemoveBookGenres(ctx, bookID))
}

func (c *Cached) SearchByAuthor(ctx context.Context, authorID int) ([]models.Book, error) {
	return readThrough(ctx, c, fmt.Sprintf("search-author:%d", authorID), func() ([]models.Book, error) {
		return c.next.SearchByAuthor(ctx, authorID)
	})
}

func (c *Cached) SearchByGenre(ctx context.Context, genreID int) ([]models.Book, error) {
	return readThrough(ctx, c, fmt.Sprintf("search-genre:%d", genreID), func() ([]models.Book, error) {
		return c.next.SearchByGenre(ctx, genreID)
	})
}

func (c *Cached) GetBookAuthors(ctx context.Context) ([]models.BookAuthor, error) {
	return readThrough(ctx, c, "book-authors", func() ([]models.BookAuthor, error) {
		return c.next.GetBookAuthors(ctx)
	})
}

func (c *Cached) GetBookGenres(ctx context.Context) ([]models.BookGenre, error) {
	return readThrough(ctx, c, "book-genres", func() ([]models.BookGenre, error) {
		return c.next.GetBookGenres(ctx)
	})
}

func (c *Cached) key(ctx context.Context, name string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("catalog:g%d:%s", gen, name), nil
}

// mutate bumps the generation when the wrapped write succeeded.
func (c *Cached) mutate(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if incrErr := c.client.Incr(ctx, generationKey).Err(); incrErr != nil {
		c.logger.Warn("cache invalidation failed", zap.Error(incrErr))
	}
	return nil
}

func readThrough[T any](ctx context.Context, c *Cached, name string, load func() (T, error)) (T, error) {
	key, err := c.key(ctx, name)
	if err != nil {
		c.logger.Warn("cache unavailable", zap.String("key", name), zap.Error(err))
		return load()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("cache entry unreadable", zap.String("key", key), zap.Error(jsonErr))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func writeThrough[T any](ctx context.Context, c *Cached, write func() (T, error)) (T, error) {
	value, err := write()
	if err != nil {
		return value, err
	}
	return value, c.mutate(ctx, nil)
}
