package book

import "strings"

// Filter returns the books whose title, author or genre contains query,
// ignoring case and surrounding whitespace. A blank query returns books as is.
func Filter(books []Book, query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books
	}

	matched := make([]Book, 0, len(books))
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) {
			matched = append(matched, b)
		}
	}
	return matched
}
