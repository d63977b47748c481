package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelf/internal/httpx"
)

// minYear is the earliest publication year the form accepts.
const minYear = 1000

type HTTPHandler struct {
	store *Store
	now   func() time.Time
}

func NewHTTPHandler(store *Store) *HTTPHandler {
	return &HTTPHandler{store: store, now: time.Now}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
	mux.HandleFunc("GET /genres", h.Genres)
}

// bookRequest is the form payload for create and update. Year is a pointer so
// an omitted year can be told apart from zero.
type bookRequest struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Author      string `json:"author" validate:"notblank,max=200"`
	Genre       string `json:"genre" validate:"max=100"`
	Year        *int   `json:"year"`
	Description string `json:"description" validate:"max=5000"`
}

func (req *bookRequest) normalize(currentYear int) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)
	if req.Genre == "" {
		req.Genre = DefaultGenre
	}
	if req.Year == nil {
		year := currentYear
		req.Year = &year
	}
}

func (req bookRequest) validate(currentYear int) []httpx.ErrorDetail {
	details := httpx.ValidateStruct(req)
	if y := *req.Year; y < minYear || y > currentYear+10 {
		details = append(details, httpx.ErrorDetail{
			Field:   "year",
			Message: "year must be between " + strconv.Itoa(minYear) + " and " + strconv.Itoa(currentYear+10),
		})
	}
	return details
}

func (req bookRequest) formData() FormData {
	return FormData{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Year:        *req.Year,
		Description: req.Description,
	}
}

// decodeForm reads, normalizes and validates the request body. It writes the
// error response itself and reports false when the request was rejected.
func (h *HTTPHandler) decodeForm(w http.ResponseWriter, r *http.Request) (FormData, bool) {
	var req bookRequest
	if err := codec.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return FormData{}, false
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON object", nil)
		return FormData{}, false
	}

	currentYear := h.now().Year()
	req.normalize(currentYear)
	if details := req.validate(currentYear); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book data", details)
		return FormData{}, false
	}
	return req.formData(), true
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	all := h.store.Collection()
	matched := Filter(all, query)

	httpx.JSONSuccess(w, r, matched, map[string]any{
		"total":   len(all),
		"matched": len(matched),
		"query":   strings.TrimSpace(query),
	})
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.store.Lookup(r.PathValue("id"))
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	created, err := h.store.Create(r.Context(), data)
	if err != nil {
		h.storageError(w, r)
		return
	}
	httpx.JSONSuccessCreated(w, r, created)
}

// Update handles PUT /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.Lookup(id); !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	data, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	updated, found, err := h.store.Update(r.Context(), id, data)
	switch {
	case err != nil:
		h.storageError(w, r)
	case !found:
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	default:
		httpx.JSONSuccess(w, r, updated, nil)
	}
}

// Delete handles DELETE /books/{id}. Deleting an absent book still succeeds.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.storageError(w, r)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Genres handles GET /genres
func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, Genres, map[string]any{"default": DefaultGenre})
}

func (h *HTTPHandler) storageError(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORAGE_ERROR", "The library could not be saved, please try again", nil)
}
