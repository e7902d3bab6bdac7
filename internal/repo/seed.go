package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/crudbase/go-crud-backend/internal/domain"
	"github.com/crudbase/go-crud-backend/internal/schema"
)

// Seed inserts the given entities unless a row with the same primary key
// already exists. Entities with a zero id are always inserted. The whole
// batch runs in one transaction; the returned count is the number of rows
// actually written.
func Seed[T schema.Entity](ctx context.Context, db *gorm.DB, items []T) (int, error) {
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			id := items[i].GetID()
			if id != 0 {
				var n int64
				if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					continue
				}
			}
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, wrap("seed", err)
	}
	return inserted, nil
}

// SeedDemo loads a small demo dataset of authors, tags, and posts. Safe to
// call on every startup: existing ids are left alone.
func SeedDemo(ctx context.Context, db *gorm.DB) (int, error) {
	website := "https://ada.example.com"
	bio := "Writer of the first published algorithm."
	rating := 4.5

	total := 0

	n, err := Seed(ctx, db, demoAuthors(website, bio))
	if err != nil {
		return total, err
	}
	total += n

	n, err = Seed(ctx, db, demoTags())
	if err != nil {
		return total, err
	}
	total += n

	n, err = Seed(ctx, db, demoPosts(rating))
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}

func demoAuthors(website, bio string) []domain.Author {
	return []domain.Author{
		{Model: domain.Model{ID: 1}, Name: "Ada Lovelace", Email: "ada@example.com", Website: &website, Bio: &bio},
		{Model: domain.Model{ID: 2}, Name: "Alan Turing", Email: "alan@example.com"},
	}
}

func demoTags() []domain.Tag {
	return []domain.Tag{
		{Model: domain.Model{ID: 1}, Name: "go"},
		{Model: domain.Model{ID: 2}, Name: "databases"},
		{Model: domain.Model{ID: 3}, Name: "history"},
	}
}

func demoPosts(rating float64) []domain.Post {
	return []domain.Post{
		{
			Model:    domain.Model{ID: 1},
			Title:    "Notes on the Analytical Engine",
			Content:  "An account of the first general-purpose computing machine.",
			AuthorID: 1,
			Rating:   &rating,
		},
		{
			Model:     domain.Model{ID: 2},
			Title:     "On Computable Numbers",
			Content:   "Decidability, and the machines that settle it.",
			AuthorID:  2,
			Published: true,
			Views:     42,
		},
	}
}
