package book_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelf/internal/book"
	"shelf/internal/storage"
	"shelf/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, s *book.Store) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	book.NewHTTPHandler(s).Register(mux)
	return mux
}

func serve(h http.Handler, method, path string, body interface{}) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.NewRequest(method, path, body))
	return testutil.RecordHTTPResponse(w)
}

func seeded(t *testing.T) (*book.Store, book.Book, book.Book) {
	t.Helper()
	s := newStore(t, storage.NewMemory())
	dune, err := s.Create(context.Background(), testutil.Dune)
	require.NoError(t, err)
	orwell, err := s.Create(context.Background(), testutil.Nineteen84)
	require.NoError(t, err)
	return s, dune, orwell
}

func TestHTTPHandler_List(t *testing.T) {
	s, _, _ := seeded(t)
	h := newServer(t, s)

	t.Run("all books newest first", func(t *testing.T) {
		resp := serve(h, http.MethodGet, "/books", nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		list := resp.DataList()
		require.Len(t, list, 2)
		assert.Equal(t, "1984", list[0].(map[string]interface{})["title"])
		assert.Equal(t, "Dune", list[1].(map[string]interface{})["title"])
	})

	t.Run("filtered by query", func(t *testing.T) {
		resp := serve(h, http.MethodGet, "/books?q=HER", nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		list := resp.DataList()
		require.Len(t, list, 1)
		assert.Equal(t, "Dune", list[0].(map[string]interface{})["title"])

		meta := resp.Body["meta"].(map[string]interface{})
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(1), meta["matched"])
		assert.Equal(t, "HER", meta["query"])
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		resp := serve(h, http.MethodGet, "/books?q=tolkien", nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.NotNil(t, resp.Body["data"])
		assert.Empty(t, resp.DataList())
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	s, dune, _ := seeded(t)
	h := newServer(t, s)

	t.Run("success", func(t *testing.T) {
		resp := serve(h, http.MethodGet, "/books/"+dune.ID, nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, dune.ID, resp.Data()["id"])
		assert.Equal(t, "Herbert", resp.Data()["author"])
		assert.Equal(t, dune.CreatedAt.Format(time.RFC3339Nano), resp.Data()["createdAt"])
	})

	t.Run("not found", func(t *testing.T) {
		resp := serve(h, http.MethodGet, "/books/missing", nil)

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", resp.ErrorCode())
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
		check      func(t *testing.T, data map[string]interface{})
	}{
		{
			name:       "success",
			body:       map[string]interface{}{"title": "  Dune ", "author": "Herbert", "genre": "Science Fiction", "year": 1965},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Dune", data["title"])
				assert.Equal(t, "Science Fiction", data["genre"])
				assert.Equal(t, float64(1965), data["year"])
				assert.NotEmpty(t, data["id"])
			},
		},
		{
			name:       "defaults genre and year",
			body:       map[string]interface{}{"title": "Untitled", "author": "Anon"},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, book.DefaultGenre, data["genre"])
				assert.Equal(t, float64(time.Now().Year()), data["year"])
			},
		},
		{
			name:       "blank title",
			body:       map[string]interface{}{"title": "   ", "author": "Herbert", "year": 1965},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "missing author",
			body:       map[string]interface{}{"title": "Dune", "year": 1965},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "year too early",
			body:       map[string]interface{}{"title": "Dune", "author": "Herbert", "year": 999},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "year too far ahead",
			body:       map[string]interface{}{"title": "Dune", "author": "Herbert", "year": time.Now().Year() + 11},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, storage.NewMemory())
			h := newServer(t, s)

			resp := serve(h, http.MethodPost, "/books", tt.body)

			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp.ErrorCode())
				assert.Zero(t, s.Len())
				return
			}
			require.Equal(t, 1, s.Len())
			if tt.check != nil {
				tt.check(t, resp.Data())
			}
		})
	}
}

func TestHTTPHandler_Create_ValidationDetails(t *testing.T) {
	h := newServer(t, newStore(t, storage.NewMemory()))

	resp := serve(h, http.MethodPost, "/books", map[string]interface{}{"year": 1965})

	errBody := resp.Body["error"].(map[string]interface{})
	fields := map[string]bool{}
	for _, d := range errBody["details"].([]interface{}) {
		fields[d.(map[string]interface{})["field"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"title": true, "author": true}, fields)
}

func TestHTTPHandler_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, dune, _ := seeded(t)
		h := newServer(t, s)

		resp := serve(h, http.MethodPut, "/books/"+dune.ID, map[string]interface{}{
			"title": "Dune Messiah", "author": "Frank Herbert", "genre": "Science Fiction", "year": 1969,
		})

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "Dune Messiah", resp.Data()["title"])

		got, ok := s.Lookup(dune.ID)
		require.True(t, ok)
		assert.Equal(t, 1969, got.Year)
		assert.Equal(t, dune.CreatedAt, got.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		s, _, _ := seeded(t)
		h := newServer(t, s)

		resp := serve(h, http.MethodPut, "/books/missing", map[string]interface{}{"title": "X", "author": "Y", "year": 2000})

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", resp.ErrorCode())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("invalid", func(t *testing.T) {
		s, dune, _ := seeded(t)
		h := newServer(t, s)

		resp := serve(h, http.MethodPut, "/books/"+dune.ID, map[string]interface{}{"title": "", "author": "Herbert", "year": 1965})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		got, _ := s.Lookup(dune.ID)
		assert.Equal(t, "Dune", got.Title)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	s, dune, orwell := seeded(t)
	h := newServer(t, s)

	resp := serve(h, http.MethodDelete, "/books/"+dune.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []book.Book{orwell}, s.Collection())

	resp = serve(h, http.MethodDelete, "/books/"+dune.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, 1, s.Len())
}

func TestHTTPHandler_Genres(t *testing.T) {
	h := newServer(t, newStore(t, storage.NewMemory()))

	resp := serve(h, http.MethodGet, "/genres", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.DataList(), len(book.Genres))
	assert.Equal(t, book.DefaultGenre, resp.Body["meta"].(map[string]interface{})["default"])
}

func TestHTTPHandler_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := book.NewMockStorage(ctrl)
	mockStorage.EXPECT().Read(gomock.Any(), book.DefaultKey).Return("", false, nil)
	mockStorage.EXPECT().Write(gomock.Any(), book.DefaultKey, gomock.Any()).Return(errors.New("disk full"))

	s := book.NewStore(mockStorage)
	require.NoError(t, s.Load(context.Background()))
	h := newServer(t, s)

	resp := serve(h, http.MethodPost, "/books", map[string]interface{}{"title": "Dune", "author": "Herbert", "year": 1965})

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "STORAGE_ERROR", resp.ErrorCode())
	assert.Zero(t, s.Len())
}
