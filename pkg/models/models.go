package models

import (
	"time"
)

type Book struct {
	ID        int          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string       `json:"name" gorm:"size:200;not null"`
	Authors   []BookAuthor `json:"authors" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Genres    []BookGenre  `json:"genres" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

type Author struct {
	ID        int          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string       `json:"name" gorm:"size:80;not null"`
	Surname   string       `json:"surname" gorm:"size:80;not null"`
	Books     []BookAuthor `json:"books,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

type Genre struct {
	ID        int         `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string      `json:"name" gorm:"size:80;not null"`
	Books     []BookGenre `json:"books,omitempty" gorm:"foreignKey:GenreID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"-"`
}

// BookAuthor links a book to one of its authors. Two links are equal when
// their (BookID, AuthorID) pairs are equal; the surrogate key only orders rows.
type BookAuthor struct {
	BookAuthorID uint `json:"-" gorm:"primaryKey"`
	BookID       int  `json:"bookId" gorm:"not null;uniqueIndex:idx_book_author"`
	AuthorID     int  `json:"authorId" gorm:"not null;uniqueIndex:idx_book_author"`
}

func (BookAuthor) TableName() string {
	return "book_to_author"
}

func (l BookAuthor) Equal(other BookAuthor) bool {
	return l.BookID == other.BookID && l.AuthorID == other.AuthorID
}

// BookGenre links a book to one of its genres, with the same pair equality as BookAuthor.
type BookGenre struct {
	BookGenreID uint `json:"-" gorm:"primaryKey"`
	BookID      int  `json:"bookId" gorm:"not null;uniqueIndex:idx_book_genre"`
	GenreID     int  `json:"genreId" gorm:"not null;uniqueIndex:idx_book_genre"`
}

func (BookGenre) TableName() string {
	return "book_to_genre"
}

func (l BookGenre) Equal(other BookGenre) bool {
	return l.BookID == other.BookID && l.GenreID == other.GenreID
}

// AuthorIDs returns the ids of the book's authors in link order.
func (b Book) AuthorIDs() []int {
	ids := make([]int, 0, len(b.Authors))
	for _, link := range b.Authors {
		ids = append(ids, link.AuthorID)
	}
	return ids
}

// GenreIDs returns the ids of the book's genres in link order.
func (b Book) GenreIDs() []int {
	ids := make([]int, 0, len(b.Genres))
	for _, link := range b.Genres {
		ids = append(ids, link.GenreID)
	}
	return ids
}

// All returns every catalog model in migration order.
func All() []interface{} {
	return []interface{}{&Book{}, &Author{}, &Genre{}, &BookAuthor{}, &BookGenre{}}
}
