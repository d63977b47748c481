package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"shelf/internal/book"

	"github.com/brianvoe/gofakeit/v6"
)

// Dune and Nineteen84 are the fixtures used by the filtering examples.
var (
	Dune = book.FormData{
		Title:  "Dune",
		Author: "Herbert",
		Genre:  "Science Fiction",
		Year:   1965,
	}
	Nineteen84 = book.FormData{
		Title:  "1984",
		Author: "Orwell",
		Genre:  "Dystopian",
		Year:   1949,
	}
)

// FakeFormData returns random but valid book input.
func FakeFormData() book.FormData {
	info := gofakeit.Book()
	return book.FormData{
		Title:       info.Title,
		Author:      info.Author,
		Genre:       info.Genre,
		Year:        gofakeit.IntRange(1000, time.Now().Year()),
		Description: gofakeit.SentenceSimple(),
	}
}

// Clock returns increasing UTC timestamps one second apart, starting at start.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{next: start.UTC()}
}

// Now satisfies the clock signature expected by book.WithClock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		if raw, ok := body.(string); ok {
			bodyBytes = []byte(raw)
		} else {
			bodyBytes, _ = json.Marshal(body)
		}
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// Data returns the "data" member of a success envelope as a map.
func (r RecordResponse) Data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

// DataList returns the "data" member of a success envelope as a list.
func (r RecordResponse) DataList() []interface{} {
	data, _ := r.Body["data"].([]interface{})
	return data
}

// ErrorCode returns error.code from an error envelope.
func (r RecordResponse) ErrorCode() string {
	errBody, _ := r.Body["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}
