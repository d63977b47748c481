package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shelf/internal/book"
	"shelf/internal/config"
	"shelf/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	var (
		count = flag.Int("count", 25, "Number of books to generate")
		seed  = flag.Int64("seed", 0, "Random seed, 0 picks one")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)

	if err := run(context.Background(), cfg, logger, *count, *seed); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, count int, seed int64) error {
	backend, err := storage.Open(ctx, cfg.Storage(), logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := book.NewStore(backend, book.WithKey(cfg.StoreKey), book.WithLogger(logger))
	if err := store.Load(ctx); err != nil {
		if !errors.Is(err, book.ErrCorruptSnapshot) {
			return err
		}
		logger.Warn("stored collection could not be read, it will be replaced by the seeded books", "key", store.Key(), "error", err)
	}

	faker := gofakeit.New(seed)
	for i := 0; i < count; i++ {
		if _, err := store.Create(ctx, fakeBook(faker)); err != nil {
			return fmt.Errorf("creating book %d: %w", i+1, err)
		}
	}

	logger.Info("seeded library", "backend", cfg.StoreBackend, "added", count, "total", store.Len())
	return nil
}

func fakeBook(f *gofakeit.Faker) book.FormData {
	info := f.Book()
	return book.FormData{
		Title:       info.Title,
		Author:      info.Author,
		Genre:       book.Genres[f.IntRange(0, len(book.Genres)-1)],
		Year:        f.IntRange(1850, time.Now().Year()),
		Description: f.Sentence(12),
	}
}
