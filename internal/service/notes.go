// Package service implements the business rules over the note store:
// filtering and pagination, partial updates, the trash lifecycle, and
// wiki-link backlink resolution.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/store"
)

// DefaultCategoryID is the fallback category for notes created without
// one ("Default", seeded first).
const DefaultCategoryID int64 = 1

const defaultPageSize = 20

// Note is the list representation of a note: tag names only.
type Note struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	CategoryID   *int64     `json:"category_id"`
	CategoryName string     `json:"category_name,omitempty"`
	IsPinned     bool       `json:"is_pinned"`
	IsFavorite   bool       `json:"is_favorite"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Tags         []string   `json:"tags"`
}

// TagRef is a full tag object as returned on a single note.
type TagRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NoteDetail is a single note with its full tag objects.
type NoteDetail struct {
	Note
	Tags []TagRef `json:"tags"`
}

// NoteRef is a lightweight search hit.
type NoteRef struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NoteList is one page of notes plus pagination metadata.
type NoteList struct {
	Data       []Note     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Stats holds the three aggregate note counts.
type Stats struct {
	Total     int `json:"total"`
	Favorites int `json:"favorites"`
	Trash     int `json:"trash"`
}

// CreateNote carries the fields for a new note. Title is required;
// everything else has a default.
type CreateNote struct {
	Title      string
	Content    string
	CategoryID *int64
	IsPinned   bool
	IsFavorite bool
	Tags       []string
}

// UpdateNote carries a partial update. Nil fields keep their stored
// value; an explicitly empty Content overwrites. A non-nil Tags replaces
// the whole association set.
type UpdateNote struct {
	Title      *string
	Content    *string
	CategoryID *int64
	IsPinned   *bool
	IsFavorite *bool
	Tags       *[]string
}

// BacklinkIndex resolves the notes referencing a given note via the
// literal "[[title]]" marker. The store's substring scan satisfies it;
// the indirection exists so a maintained link-graph index can replace the
// scan without touching callers.
type BacklinkIndex interface {
	Backlinks(noteID int64) ([]store.NoteRow, error)
}

// Notes implements the notes use cases over the store.
type Notes struct {
	db        *store.DB
	backlinks BacklinkIndex
}

// NewNotes creates the notes service. The store itself serves as the
// backlink index.
func NewNotes(db *store.DB) *Notes {
	return &Notes{db: db, backlinks: db}
}

func toNote(r store.NoteRow) Note {
	return Note{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		IsPinned:     r.IsPinned,
		IsFavorite:   r.IsFavorite,
		IsDeleted:    r.IsDeleted,
		DeletedAt:    r.DeletedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Tags:         r.Tags,
	}
}

func toNotes(rows []store.NoteRow) []Note {
	out := make([]Note, len(rows))
	for i, r := range rows {
		out[i] = toNote(r)
	}
	return out
}

// List returns one page of non-deleted notes matching the filter, pinned
// first, then most recently updated. The total is computed with the same
// predicate, unpaginated.
func (s *Notes) List(_ context.Context, f store.NoteFilter, page, pageSize int) (*NoteList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	rows, err := s.db.ListNotes(f, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.db.CountNotes(f)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &NoteList{
		Data: toNotes(rows),
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get returns a single note with its full tag objects. A soft-deleted
// note is still returned; only listings exclude the trash.
func (s *Notes) Get(_ context.Context, id int64) (*NoteDetail, error) {
	row, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}
	tags, err := s.db.TagsForNote(id)
	if err != nil {
		return nil, err
	}
	refs := make([]TagRef, len(tags))
	for i, t := range tags {
		refs[i] = TagRef{ID: t.ID, Name: t.Name}
	}
	return &NoteDetail{Note: toNote(*row), Tags: refs}, nil
}

// Create inserts a note and returns the new id. Title must be non-empty;
// content defaults to "", the category to DefaultCategoryID, the flags to
// false.
func (s *Notes) Create(_ context.Context, n CreateNote) (int64, error) {
	if strings.TrimSpace(n.Title) == "" {
		return 0, fmt.Errorf("title is required: %w", apperr.ErrInvalid)
	}
	categoryID := DefaultCategoryID
	if n.CategoryID != nil {
		categoryID = *n.CategoryID
	}
	return s.db.InsertNote(store.NewNote{
		Title:      n.Title,
		Content:    n.Content,
		CategoryID: categoryID,
		IsPinned:   n.IsPinned,
		IsFavorite: n.IsFavorite,
		Tags:       n.Tags,
	})
}

// Update applies a partial update. Omitted (nil) fields keep their stored
// value; updated_at is bumped regardless. A non-nil Tags replaces the
// entire association set, an empty one leaves the note tagless.
func (s *Notes) Update(_ context.Context, id int64, u UpdateNote) error {
	existing, err := s.db.GetNote(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}

	final := store.NoteUpdate{
		Title:      existing.Title,
		Content:    existing.Content,
		CategoryID: existing.CategoryID,
		IsPinned:   existing.IsPinned,
		IsFavorite: existing.IsFavorite,
		Tags:       u.Tags,
	}
	if u.Title != nil && *u.Title != "" {
		final.Title = *u.Title
	}
	if u.Content != nil {
		final.Content = *u.Content
	}
	if u.CategoryID != nil {
		final.CategoryID = u.CategoryID
	}
	if u.IsPinned != nil {
		final.IsPinned = *u.IsPinned
	}
	if u.IsFavorite != nil {
		final.IsFavorite = *u.IsFavorite
	}
	return s.db.UpdateNote(id, final)
}

// SoftDelete moves a note to the trash. Deleting an unknown or
// already-trashed note fails with ErrNotFound.
func (s *Notes) SoftDelete(_ context.Context, id int64) error {
	ok, err := s.db.MarkDeleted(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Restore brings a note back from the trash. Restoring a note that is
// unknown or not currently deleted fails with ErrNotFound.
func (s *Notes) Restore(_ context.Context, id int64) error {
	ok, err := s.db.MarkRestored(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// PermanentDelete removes a trashed note and its tag associations for
// good. The note must currently be in the trash.
func (s *Notes) PermanentDelete(_ context.Context, id int64) error {
	ok, err := s.db.DeleteForever(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// EmptyTrash removes every trashed note and its associations.
func (s *Notes) EmptyTrash(_ context.Context) error {
	_, err := s.db.EmptyTrash()
	return err
}

// Trash lists the trashed notes, most recently deleted first.
func (s *Notes) Trash(_ context.Context) ([]Note, error) {
	rows, err := s.db.ListTrash()
	if err != nil {
		return nil, err
	}
	return toNotes(rows), nil
}

// GetStats returns the aggregate counts.
func (s *Notes) GetStats(_ context.Context) (*Stats, error) {
	total, favorites, trash, err := s.db.Stats()
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, Favorites: favorites, Trash: trash}, nil
}

// SearchByTitle returns up to limit non-deleted notes whose title
// contains the keyword. An empty keyword yields an empty result.
func (s *Notes) SearchByTitle(_ context.Context, keyword string, limit int) ([]NoteRef, error) {
	if keyword == "" {
		return []NoteRef{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.SearchByTitle(keyword, limit)
	if err != nil {
		return nil, err
	}
	out := make([]NoteRef, len(rows))
	for i, r := range rows {
		out[i] = NoteRef{ID: r.ID, Title: r.Title, UpdatedAt: r.UpdatedAt}
	}
	return out, nil
}

// Backlinks returns the notes whose content references the given note
// via a "[[title]]" wiki link. Notes that collide on title are not
// disambiguated, and renaming a note silently breaks links pointing at
// its old title; both are accepted behavior of the substring scan.
func (s *Notes) Backlinks(_ context.Context, id int64) ([]Note, error) {
	rows, err := s.backlinks.Backlinks(id)
	if err != nil {
		return nil, err
	}
	return toNotes(rows), nil
}
