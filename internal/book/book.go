package book

import (
	"errors"
	"time"
)

var (
	// ErrCorruptSnapshot is returned by Load when the persisted collection cannot be decoded.
	ErrCorruptSnapshot = errors.New("stored book collection is corrupt")

	// ErrPersistFailed is returned when a mutation could not be written to storage.
	ErrPersistFailed = errors.New("persisting book collection failed")
)

// DefaultGenre is preselected by the entry form.
const DefaultGenre = "Fiction"

// Genres is the suggested genre vocabulary. The store does not enforce it.
var Genres = []string{
	"Fiction", "Non-Fiction", "Mystery", "Romance", "Science Fiction",
	"Fantasy", "Biography", "History", "Self-Help", "Poetry", "Drama",
}

// Book represents a single record in the library.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FormData holds the mutable fields of a book.
type FormData struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// Data returns the mutable fields of b.
func (b Book) Data() FormData {
	return FormData{
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		Year:        b.Year,
		Description: b.Description,
	}
}

func (b Book) withData(d FormData) Book {
	b.Title = d.Title
	b.Author = d.Author
	b.Genre = d.Genre
	b.Year = d.Year
	b.Description = d.Description
	return b
}
