package service

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/mannaz/internal/apperr"
)

func TestCategoryCreateValidationAndConflict(t *testing.T) {
	ctx := context.Background()
	svc := NewCategories(testStore(t))

	if _, err := svc.Create(ctx, "  "); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank name err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Create(ctx, "Work"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("seeded name err = %v, want ErrConflict", err)
	}
	id, err := svc.Create(ctx, "  Projects  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cats, _ := svc.List(ctx)
	for _, c := range cats {
		if c.ID == id && c.Name != "Projects" {
			t.Errorf("name = %q, want trimmed Projects", c.Name)
		}
	}
}

func TestCategoryRename(t *testing.T) {
	ctx := context.Background()
	svc := NewCategories(testStore(t))

	if err := svc.Rename(ctx, 999, "Nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
	if err := svc.Rename(ctx, 2, "Life"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("taken name err = %v, want ErrConflict", err)
	}
	if err := svc.Rename(ctx, 2, "Office"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
}

func TestCategoryRemoveBlockedByActiveNotes(t *testing.T) {
	// Delete is blocked while an active note references the category and
	// allowed once that note is soft-deleted.
	ctx := context.Background()
	db := testStore(t)
	categories := NewCategories(db)
	notes := NewNotes(db)

	work := int64(2)
	noteID, err := notes.Create(ctx, CreateNote{Title: "A", CategoryID: &work})
	if err != nil {
		t.Fatalf("Create note: %v", err)
	}

	if err := categories.Remove(ctx, work); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("remove with active note err = %v, want ErrConflict", err)
	}

	if err := notes.SoftDelete(ctx, noteID); err != nil {
		t.Fatal(err)
	}
	if err := categories.Remove(ctx, work); err != nil {
		t.Fatalf("remove after soft-delete: %v", err)
	}

	cats, _ := categories.List(ctx)
	for _, c := range cats {
		if c.ID == work {
			t.Error("category still listed after removal")
		}
	}
}

func TestTagsListThroughNotes(t *testing.T) {
	ctx := context.Background()
	db := testStore(t)
	notes := NewNotes(db)
	tags := NewTags(db)

	notes.Create(ctx, CreateNote{Title: "a", Tags: []string{"go", "sql"}})
	notes.Create(ctx, CreateNote{Title: "b", Tags: []string{"go"}})

	list, err := tags.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("tags = %d, want 2", len(list))
	}
	if list[0].Name != "go" || list[0].NoteCount != 2 {
		t.Errorf("most used = %q/%d, want go/2", list[0].Name, list[0].NoteCount)
	}
}
