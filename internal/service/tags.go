package service

import (
	"context"

	"github.com/starford/mannaz/internal/store"
)

// TagCount is a tag with its live note count.
type TagCount struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	NoteCount int    `json:"note_count"`
}

// Tags implements the tag use cases. Tags are created implicitly when
// notes are saved and never deleted explicitly; an orphaned tag simply
// carries a count of zero.
type Tags struct {
	db *store.DB
}

// NewTags creates the tags service.
func NewTags(db *store.DB) *Tags {
	return &Tags{db: db}
}

// List returns all tags, most used first.
func (s *Tags) List(_ context.Context) ([]TagCount, error) {
	rows, err := s.db.ListTags()
	if err != nil {
		return nil, err
	}
	out := make([]TagCount, len(rows))
	for i, r := range rows {
		out[i] = TagCount{ID: r.ID, Name: r.Name, NoteCount: r.NoteCount}
	}
	return out, nil
}
