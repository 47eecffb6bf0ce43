package store

import (
	"errors"
	"testing"

	"github.com/starford/mannaz/internal/apperr"
)

func TestInsertCategoryConflict(t *testing.T) {
	db := testDB(t)

	id, err := db.InsertCategory("Projects")
	if err != nil {
		t.Fatalf("InsertCategory: %v", err)
	}
	if id != 5 {
		t.Errorf("id = %d, want 5 after the four seeded categories", id)
	}

	// Seeded name collides.
	if _, err := db.InsertCategory("Work"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate insert err = %v, want ErrConflict", err)
	}
}

func TestRenameCategoryConflict(t *testing.T) {
	db := testDB(t)
	id, _ := db.InsertCategory("Projects")

	if err := db.RenameCategory(id, "Life"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("rename to taken name err = %v, want ErrConflict", err)
	}
	if err := db.RenameCategory(id, "Side Projects"); err != nil {
		t.Fatalf("rename to unique name: %v", err)
	}

	cats, _ := db.ListCategories()
	found := false
	for _, c := range cats {
		if c.ID == id && c.Name == "Side Projects" {
			found = true
		}
	}
	if !found {
		t.Error("rename not reflected in ListCategories")
	}
}

func TestCategoryNoteCounts(t *testing.T) {
	db := testDB(t)
	work := int64(2)
	mustInsert(t, db, NewNote{Title: "a", CategoryID: work})
	gone := mustInsert(t, db, NewNote{Title: "b", CategoryID: work})
	db.MarkDeleted(gone)

	n, err := db.CountActiveNotesInCategory(work)
	if err != nil {
		t.Fatalf("CountActiveNotesInCategory: %v", err)
	}
	if n != 1 {
		t.Errorf("active notes = %d, want 1 (soft-deleted excluded)", n)
	}

	cats, _ := db.ListCategories()
	for _, c := range cats {
		if c.ID == work && c.NoteCount != 1 {
			t.Errorf("note_count = %d, want 1", c.NoteCount)
		}
	}
}

func TestDeleteCategoryNullsNoteReference(t *testing.T) {
	db := testDB(t)
	id, _ := db.InsertCategory("Temp")
	noteID := mustInsert(t, db, NewNote{Title: "orphan", CategoryID: id})
	db.MarkDeleted(noteID)

	if err := db.DeleteCategory(id); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	n, _ := db.GetNote(noteID)
	if n.CategoryID != nil {
		t.Errorf("category_id = %v, want NULL after category delete", *n.CategoryID)
	}
}

func TestListTagsOrderAndCounts(t *testing.T) {
	db := testDB(t)
	mustInsert(t, db, NewNote{Title: "a", Tags: []string{"rare", "common"}})
	mustInsert(t, db, NewNote{Title: "b", Tags: []string{"common"}})
	gone := mustInsert(t, db, NewNote{Title: "c", Tags: []string{"orphan"}})
	db.MarkDeleted(gone)

	tags, err := db.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("tags = %d, want 3 (orphans stay listed)", len(tags))
	}
	if tags[0].Name != "common" || tags[0].NoteCount != 2 {
		t.Errorf("most used = %q/%d, want common/2", tags[0].Name, tags[0].NoteCount)
	}
	for _, tag := range tags {
		if tag.Name == "orphan" && tag.NoteCount != 0 {
			t.Errorf("orphan count = %d, want 0 (deleted notes excluded)", tag.NoteCount)
		}
	}
}
