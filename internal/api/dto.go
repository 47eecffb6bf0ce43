package api

import "github.com/starford/mannaz/internal/service"

// CreateNoteRequest is the request body for creating a note. Only the
// title is required.
type CreateNoteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID *int64   `json:"category_id"`
	IsPinned   bool     `json:"is_pinned"`
	IsFavorite bool     `json:"is_favorite"`
	Tags       []string `json:"tags"`
}

// UpdateNoteRequest is the request body for a partial note update.
// Omitted fields keep their stored value; an explicit empty content
// overwrites; a present tags array replaces the whole tag set.
type UpdateNoteRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	CategoryID *int64    `json:"category_id"`
	IsPinned   *bool     `json:"is_pinned"`
	IsFavorite *bool     `json:"is_favorite"`
	Tags       *[]string `json:"tags"`
}

// CategoryRequest is the request body for creating or renaming a
// category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CreatedResponse is returned with the id of a newly created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// Response aliases from the service layer.
type (
	Note       = service.Note
	NoteDetail = service.NoteDetail
	NoteList   = service.NoteList
	NoteRef    = service.NoteRef
	Category   = service.Category
	TagCount   = service.TagCount
	Stats      = service.Stats
)
