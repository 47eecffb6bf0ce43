package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/store"
)

// Category is a category with its live note count.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	NoteCount int       `json:"note_count"`
}

// Categories implements the category use cases.
type Categories struct {
	db *store.DB
}

// NewCategories creates the categories service.
func NewCategories(db *store.DB) *Categories {
	return &Categories{db: db}
}

// List returns all categories ordered by id, counting non-deleted notes
// only.
func (s *Categories) List(_ context.Context) ([]Category, error) {
	rows, err := s.db.ListCategories()
	if err != nil {
		return nil, err
	}
	out := make([]Category, len(rows))
	for i, r := range rows {
		out[i] = Category{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, NoteCount: r.NoteCount}
	}
	return out, nil
}

// Create adds a category and returns its id. The name is trimmed; an
// empty name fails with ErrInvalid, a collision with ErrConflict.
func (s *Categories) Create(_ context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("category name is required: %w", apperr.ErrInvalid)
	}
	return s.db.InsertCategory(name)
}

// Rename changes a category name. Unknown ids fail with ErrNotFound,
// collisions with another category's name with ErrConflict.
func (s *Categories) Rename(_ context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name is required: %w", apperr.ErrInvalid)
	}
	existing, err := s.db.GetCategory(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
	}
	return s.db.RenameCategory(id, name)
}

// Remove deletes a category. It fails with ErrConflict while any
// non-deleted note still references the category; soft-deleted notes do
// not block removal.
func (s *Categories) Remove(_ context.Context, id int64) error {
	n, err := s.db.CountActiveNotesInCategory(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category has notes: %w", apperr.ErrConflict)
	}
	return s.db.DeleteCategory(id)
}
