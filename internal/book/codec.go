package book

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeSnapshot serializes the collection as a JSON array. createdAt is written as RFC 3339.
func EncodeSnapshot(books []Book) (string, error) {
	if books == nil {
		books = []Book{}
	}
	b, err := codec.Marshal(books)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSnapshot parses a serialized collection, reviving createdAt into time.Time.
// A blank value is treated like a missing one.
func DecodeSnapshot(raw string) ([]Book, error) {
	if strings.TrimSpace(raw) == "" {
		return []Book{}, nil
	}

	var books []Book
	if err := codec.UnmarshalFromString(raw, &books); err != nil {
		return nil, errors.Join(ErrCorruptSnapshot, err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}
