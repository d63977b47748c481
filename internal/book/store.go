package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultKey is the storage key that holds the serialized collection.
const DefaultKey = "books"

// Store owns the working set of books and writes the full collection back to
// storage after every mutation. All operations are serialized.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	now     func() time.Time
	newID   func() string
	logger  Logger

	books []Book
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Empty keys are ignored.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock replaces time.Now as the source of createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new records.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets the logger for persistence failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store backed by storage. Call Load before serving reads.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		logger:  slog.New(slog.DiscardHandler),
		books:   []Book{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key the collection is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the working set with the persisted collection. A missing key
// yields an empty collection. If the stored value cannot be decoded the
// working set is reset to empty and an error wrapping ErrCorruptSnapshot is
// returned, so the caller may log it and carry on.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = []Book{}

	raw, found, err := s.storage.Read(ctx, s.key)
	if err != nil {
		return fmt.Errorf("reading %q: %w", s.key, err)
	}
	if !found {
		return nil
	}

	books, err := DecodeSnapshot(raw)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", s.key, err)
	}

	s.books = books
	s.logger.Debug("book collection loaded", "key", s.key, "count", len(books))
	return nil
}

// Create adds a new record at the front of the collection and persists it.
// No validation happens here.
func (s *Store) Create(ctx context.Context, data FormData) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := Book{ID: s.newID(), CreatedAt: s.now()}.withData(data)

	next := make([]Book, 0, len(s.books)+1)
	next = append(next, created)
	next = append(next, s.books...)

	if err := s.persist(ctx, next); err != nil {
		return Book{}, err
	}
	s.books = next
	return created, nil
}

// Update replaces the mutable fields of the record with the given id. An
// unknown id is a no-op: found is false and nothing is written.
func (s *Store) Update(ctx context.Context, id string, data FormData) (updated Book, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Book{}, false, nil
	}

	next := slices.Clone(s.books)
	next[i] = next[i].withData(data)

	if err := s.persist(ctx, next); err != nil {
		return Book{}, true, err
	}
	s.books = next
	return next[i], true, nil
}

// Delete removes the record with the given id. Deleting an absent id is a
// no-op and reports removed=false.
func (s *Store) Delete(ctx context.Context, id string) (removed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.books), i, i+1)

	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.books = next
	return true, nil
}

// Lookup returns the record with the given id.
func (s *Store) Lookup(id string) (Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Book{}, false
	}
	return s.books[i], true
}

// Collection returns a copy of the working set, newest first.
func (s *Store) Collection() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.books)
}

// Len returns the number of records in the working set.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.books)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.books, func(b Book) bool { return b.ID == id })
}

func (s *Store) persist(ctx context.Context, books []Book) error {
	raw, err := EncodeSnapshot(books)
	if err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	if err := s.storage.Write(ctx, s.key, raw); err != nil {
		s.logger.Error("persisting book collection failed", "key", s.key, "count", len(books), "error", err)
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}
