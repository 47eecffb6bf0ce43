package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/service"
	"github.com/starford/mannaz/internal/upload"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(notes *service.Notes, categories *service.Categories, tags *service.Tags, uploads *upload.Service) chi.Router {
	h := NewHandler(notes, categories, tags, uploads)

	r := chi.NewRouter()

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/search/title", h.SearchByTitle)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.SoftDeleteNote)
		r.Get("/{id}/backlinks", h.Backlinks)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.RenameCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Get("/tags", h.ListTags)

	r.Route("/trash", func(r chi.Router) {
		r.Get("/", h.ListTrash)
		r.Post("/{id}/restore", h.RestoreNote)
		r.Delete("/{id}", h.PermanentDeleteNote)
		r.Delete("/", h.EmptyTrash)
	})

	r.Get("/stats", h.Stats)

	r.Route("/upload", func(r chi.Router) {
		r.Post("/image", h.UploadImage)
		r.Get("/images", h.ListImages)
		r.Get("/images/{filename}", h.ServeImage)
	})

	return r
}
