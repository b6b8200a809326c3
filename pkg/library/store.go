package library

import (
	"context"
	"errors"
	"fmt"

	"bookservice/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the relational Library backed by gorm. Lists are ordered by id,
// association records by their surrogate key.
type Store struct {
	db *gorm.DB
}

var _ Library = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := withBookLinks(s.db.WithContext(ctx)).Order("id").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *Store) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	return findBook(s.db.WithContext(ctx), id)
}

func (s *Store) AddBook(ctx context.Context, book models.Book) (*models.Book, error) {
	var created *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertRow(tx, &models.Book{ID: book.ID, Name: book.Name})
		if err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		if !inserted {
			return fmt.Errorf("book %d: %w", book.ID, ErrAlreadyExists)
		}
		if err := checkBookLinks(tx, book); err != nil {
			return err
		}
		if err := insertBookLinks(tx, book.ID, book); err != nil {
			return err
		}

		created, err = findBook(tx, book.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) SetBookByID(ctx context.Context, book models.Book, id int) (*models.Book, error) {
	var updated *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := rowExists(tx, &models.Book{}, id)
		if err != nil {
			return err
		}
		if !exists {
			return bookNotFound(id)
		}
		if err := checkBookLinks(tx, book); err != nil {
			return err
		}

		if err := tx.Model(&models.Book{}).Where("id = ?", id).Update("name", book.Name).Error; err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if err := deleteBookLinks(tx, id); err != nil {
			return err
		}
		if err := insertBookLinks(tx, id, book); err != nil {
			return err
		}

		updated, err = findBook(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) RemoveBook(ctx context.Context, id int) (*models.Book, error) {
	var removed *models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = findBook(tx, id)
		if err != nil {
			return err
		}
		if err := deleteBookLinks(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&models.Book{}, id).Error; err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *Store) GetAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	err := s.db.WithContext(ctx).
		Preload("Books", orderBy("book_author_id")).
		Order("id").
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

func (s *Store) GetAuthorByID(ctx context.Context, id int) (*models.Author, error) {
	return findAuthor(s.db.WithContext(ctx), id)
}

func (s *Store) AddAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	var created *models.Author
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertRow(tx, &models.Author{ID: author.ID, Name: author.Name, Surname: author.Surname})
		if err != nil {
			return fmt.Errorf("create author: %w", err)
		}
		if !inserted {
			return fmt.Errorf("author %d: %w", author.ID, ErrAlreadyExists)
		}
		created, err = findAuthor(tx, author.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) SetAuthorByID(ctx context.Context, author models.Author, id int) (*models.Author, error) {
	var updated *models.Author
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Author{}).Where("id = ?", id).
			Updates(map[string]interface{}{"name": author.Name, "surname": author.Surname})
		if res.Error != nil {
			return fmt.Errorf("update author: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return authorNotFound(id)
		}

		var err error
		updated, err = findAuthor(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) RemoveAuthor(ctx context.Context, id int) (*models.Author, error) {
	var removed *models.Author
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = findAuthor(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.BookAuthor{}).Error; err != nil {
			return fmt.Errorf("delete author links: %w", err)
		}
		if err := tx.Delete(&models.Author{}, id).Error; err != nil {
			return fmt.Errorf("delete author: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *Store) GetGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := s.db.WithContext(ctx).
		Preload("Books", orderBy("book_genre_id")).
		Order("id").
		Find(&genres).Error
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

func (s *Store) GetGenreByID(ctx context.Context, id int) (*models.Genre, error) {
	return findGenre(s.db.WithContext(ctx), id)
}

func (s *Store) AddGenre(ctx context.Context, genre models.Genre) (*models.Genre, error) {
	var created *models.Genre
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertRow(tx, &models.Genre{ID: genre.ID, Name: genre.Name})
		if err != nil {
			return fmt.Errorf("create genre: %w", err)
		}
		if !inserted {
			return fmt.Errorf("genre %d: %w", genre.ID, ErrAlreadyExists)
		}
		created, err = findGenre(tx, genre.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) SetGenreByID(ctx context.Context, genre models.Genre, id int) (*models.Genre, error) {
	var updated *models.Genre
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Genre{}).Where("id = ?", id).Update("name", genre.Name)
		if res.Error != nil {
			return fmt.Errorf("update genre: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return genreNotFound(id)
		}

		var err error
		updated, err = findGenre(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) RemoveGenre(ctx context.Context, id int) (*models.Genre, error) {
	var removed *models.Genre
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = findGenre(tx, id)
		if err != nil {
			return err
		}
		if len(removed.Books) > 0 {
			return fmt.Errorf("genre %d: %w", id, ErrInUse)
		}
		if err := tx.Delete(&models.Genre{}, id).Error; err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, authorID, bookID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Author{}, authorID, authorNotFound); err != nil {
			return err
		}
		if err := mustExist(tx, &models.Book{}, bookID, bookNotFound); err != nil {
			return err
		}
		link := models.BookAuthor{BookID: bookID, AuthorID: authorID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("attach author: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateGenre(ctx context.Context, genreID, bookID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Genre{}, genreID, genreNotFound); err != nil {
			return err
		}
		if err := mustExist(tx, &models.Book{}, bookID, bookNotFound); err != nil {
			return err
		}
		link := models.BookGenre{BookID: bookID, GenreID: genreID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("attach genre: %w", err)
		}
		return nil
	})
}

func (s *Store) RemoveBookAuthors(ctx context.Context, bookID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Book{}, bookID, bookNotFound); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&models.BookAuthor{}).Error; err != nil {
			return fmt.Errorf("delete book authors: %w", err)
		}
		return nil
	})
}

func (s *Store) RemoveBookGenres(ctx context.Context, bookID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Book{}, bookID, bookNotFound); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&models.BookGenre{}).Error; err != nil {
			return fmt.Errorf("delete book genres: %w", err)
		}
		return nil
	})
}

func (s *Store) SearchByAuthor(ctx context.Context, authorID int) ([]models.Book, error) {
	var books []models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Author{}, authorID, authorNotFound); err != nil {
			return err
		}
		return withBookLinks(tx).
			Joins("JOIN book_to_author ON book_to_author.book_id = books.id").
			Where("book_to_author.author_id = ?", authorID).
			Order("book_to_author.book_author_id").
			Find(&books).Error
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Store) SearchByGenre(ctx context.Context, genreID int) ([]models.Book, error) {
	var books []models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Genre{}, genreID, genreNotFound); err != nil {
			return err
		}
		return withBookLinks(tx).
			Joins("JOIN book_to_genre ON book_to_genre.book_id = books.id").
			Where("book_to_genre.genre_id = ?", genreID).
			Order("book_to_genre.book_genre_id").
			Find(&books).Error
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Store) GetBookAuthors(ctx context.Context) ([]models.BookAuthor, error) {
	links := []models.BookAuthor{}
	if err := s.db.WithContext(ctx).Order("book_author_id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list book authors: %w", err)
	}
	return links, nil
}

func (s *Store) GetBookGenres(ctx context.Context) ([]models.BookGenre, error) {
	links := []models.BookGenre{}
	if err := s.db.WithContext(ctx).Order("book_genre_id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list book genres: %w", err)
	}
	return links, nil
}

func orderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

func withBookLinks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Authors", orderBy("book_author_id")).
		Preload("Genres", orderBy("book_genre_id"))
}

func findBook(db *gorm.DB, id int) (*models.Book, error) {
	var book models.Book
	if err := withBookLinks(db).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookNotFound(id)
		}
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &book, nil
}

func findAuthor(db *gorm.DB, id int) (*models.Author, error) {
	var author models.Author
	if err := db.Preload("Books", orderBy("book_author_id")).First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authorNotFound(id)
		}
		return nil, fmt.Errorf("get author %d: %w", id, err)
	}
	return &author, nil
}

func findGenre(db *gorm.DB, id int) (*models.Genre, error) {
	var genre models.Genre
	if err := db.Preload("Books", orderBy("book_genre_id")).First(&genre, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, genreNotFound(id)
		}
		return nil, fmt.Errorf("get genre %d: %w", id, err)
	}
	return &genre, nil
}

// insertRow creates row unless its primary key is already taken, which
// concurrent inserts of the same id resolve in the database.
func insertRow(tx *gorm.DB, row interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func rowExists(tx *gorm.DB, model interface{}, id int) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check id %d: %w", id, err)
	}
	return count > 0, nil
}

func mustExist(tx *gorm.DB, model interface{}, id int, notFound func(int) error) error {
	exists, err := rowExists(tx, model, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound(id)
	}
	return nil
}

func checkBookLinks(tx *gorm.DB, book models.Book) error {
	for _, id := range book.AuthorIDs() {
		if err := mustExist(tx, &models.Author{}, id, authorNotFound); err != nil {
			return err
		}
	}
	for _, id := range book.GenreIDs() {
		if err := mustExist(tx, &models.Genre{}, id, genreNotFound); err != nil {
			return err
		}
	}
	return nil
}

func insertBookLinks(tx *gorm.DB, bookID int, book models.Book) error {
	skip := tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})
	for _, id := range book.AuthorIDs() {
		link := models.BookAuthor{BookID: bookID, AuthorID: id}
		if err := skip.Create(&link).Error; err != nil {
			return fmt.Errorf("attach author %d: %w", id, err)
		}
	}
	for _, id := range book.GenreIDs() {
		link := models.BookGenre{BookID: bookID, GenreID: id}
		if err := skip.Create(&link).Error; err != nil {
			return fmt.Errorf("attach genre %d: %w", id, err)
		}
	}
	return nil
}

func deleteBookLinks(tx *gorm.DB, bookID int) error {
	if err := tx.Where("book_id = ?", bookID).Delete(&models.BookAuthor{}).Error; err != nil {
		return fmt.Errorf("delete book authors: %w", err)
	}
	if err := tx.Where("book_id = ?", bookID).Delete(&models.BookGenre{}).Error; err != nil {
		return fmt.Errorf("delete book genres: %w", err)
	}
	return nil
}
