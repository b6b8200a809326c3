package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkEquality(t *testing.T) {
	a := BookAuthor{BookAuthorID: 1, BookID: 2, AuthorID: 3}
	b := BookAuthor{BookAuthorID: 9, BookID: 2, AuthorID: 3}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(BookAuthor{BookID: 3, AuthorID: 2}))

	g := BookGenre{BookID: 1, GenreID: 4}
	assert.True(t, g.Equal(BookGenre{BookGenreID: 5, BookID: 1, GenreID: 4}))
}

func TestBookLinkIDs(t *testing.T) {
	book := Book{
		ID:      1,
		Authors: []BookAuthor{{BookID: 1, AuthorID: 5}, {BookID: 1, AuthorID: 2}},
	}
	assert.Equal(t, []int{5, 2}, book.AuthorIDs())
	assert.Equal(t, []int{}, book.GenreIDs())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "book_to_author", BookAuthor{}.TableName())
	assert.Equal(t, "book_to_genre", BookGenre{}.TableName())
}
