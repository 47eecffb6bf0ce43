package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/starford/mannaz/internal/service"
	"github.com/starford/mannaz/internal/store"
	"github.com/starford/mannaz/internal/upload"
)

// testEnv sets up a temp SQLite DB, services, uploads dir, and router.
func testEnv(t *testing.T) http.Handler {
	t.Helper()

	dbFile, err := os.CreateTemp("", "mannaz-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	uploads, err := upload.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return NewRouter(service.NewNotes(db), service.NewCategories(db), service.NewTags(db), uploads)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createNote(t *testing.T, router http.Handler, body map[string]any) int64 {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/notes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create note status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreatedResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.ID
}

func TestCreateAndGetNote(t *testing.T) {
	router := testEnv(t)

	id := createNote(t, router, map[string]any{
		"title": "Hello",
		"tags":  []string{"go", "notes"},
	})

	w := doJSON(t, router, http.MethodGet, "/notes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var note NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.ID != id || note.Title != "Hello" {
		t.Errorf("note = %d %q", note.ID, note.Title)
	}
	if len(note.Tags) != 2 || note.Tags[0].Name != "go" {
		t.Errorf("tags = %+v", note.Tags)
	}
	if note.CategoryName != "Default" {
		t.Errorf("category_name = %q, want Default", note.CategoryName)
	}
}

func TestCreateNoteRequiresTitle(t *testing.T) {
	router := testEnv(t)
	w := doJSON(t, router, http.MethodPost, "/notes", map[string]any{"content": "no title"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	router := testEnv(t)
	w := doJSON(t, router, http.MethodGet, "/notes/42", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateNotePartial(t *testing.T) {
	router := testEnv(t)
	id := createNote(t, router, map[string]any{"title": "Keep", "content": "original"})

	// Only flip the favorite flag; title and content must survive.
	w := doJSON(t, router, http.MethodPut, "/notes/1", map[string]any{"is_favorite": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/notes/1", nil)
	var note NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.ID != id || note.Title != "Keep" || note.Content != "original" || !note.IsFavorite {
		t.Errorf("note after partial update = %+v", note.Note)
	}

	// Explicit empty content overwrites.
	w = doJSON(t, router, http.MethodPut, "/notes/1", map[string]any{"content": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/notes/1", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Content != "" {
		t.Errorf("content = %q, want empty", note.Content)
	}
}

func TestUpdateNoteNotFound(t *testing.T) {
	router := testEnv(t)
	w := doJSON(t, router, http.MethodPut, "/notes/42", map[string]any{"title": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListNotesPagination(t *testing.T) {
	router := testEnv(t)
	for i := 0; i < 5; i++ {
		createNote(t, router, map[string]any{"title": "note"})
	}

	w := doJSON(t, router, http.MethodGet, "/notes?page=1&pageSize=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list NoteList
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(list.Data))
	}
	if list.Pagination.Total != 5 || list.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", list.Pagination)
	}
}

func TestTrashFlow(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "doomed"})

	// Soft delete.
	w := doJSON(t, router, http.MethodDelete, "/notes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	// Gone from listings, present in trash.
	w = doJSON(t, router, http.MethodGet, "/notes", nil)
	var list NoteList
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Pagination.Total != 0 {
		t.Errorf("list total = %d, want 0", list.Pagination.Total)
	}
	w = doJSON(t, router, http.MethodGet, "/trash", nil)
	var trash []Note
	_ = json.Unmarshal(w.Body.Bytes(), &trash)
	if len(trash) != 1 {
		t.Fatalf("trash = %d, want 1", len(trash))
	}

	// Restore brings it back.
	w = doJSON(t, router, http.MethodPost, "/trash/1/restore", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/notes", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Pagination.Total != 1 {
		t.Errorf("list total after restore = %d, want 1", list.Pagination.Total)
	}

	// Permanent delete requires the note to be trashed.
	w = doJSON(t, router, http.MethodDelete, "/trash/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("permanent delete of active note = %d, want 404", w.Code)
	}
	doJSON(t, router, http.MethodDelete, "/notes/1", nil)
	w = doJSON(t, router, http.MethodDelete, "/trash/1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("permanent delete = %d, want 200", w.Code)
	}
}

func TestEmptyTrash(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "a"})
	createNote(t, router, map[string]any{"title": "b"})
	doJSON(t, router, http.MethodDelete, "/notes/1", nil)
	doJSON(t, router, http.MethodDelete, "/notes/2", nil)

	w := doJSON(t, router, http.MethodDelete, "/trash", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty trash status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/trash", nil)
	var trash []Note
	_ = json.Unmarshal(w.Body.Bytes(), &trash)
	if len(trash) != 0 {
		t.Errorf("trash = %d, want 0", len(trash))
	}
}

func TestCategoriesEndpoints(t *testing.T) {
	router := testEnv(t)

	// Seeded name → 409.
	w := doJSON(t, router, http.MethodPost, "/categories", map[string]any{"name": "Work"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/categories", map[string]any{"name": "Projects"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}

	// Category in use blocks deletion.
	work := int64(2)
	createNote(t, router, map[string]any{"title": "busy", "category_id": work})
	w = doJSON(t, router, http.MethodDelete, "/categories/2", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("delete in-use category = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/categories", nil)
	var cats []Category
	_ = json.Unmarshal(w.Body.Bytes(), &cats)
	if len(cats) != 5 {
		t.Errorf("categories = %d, want 5", len(cats))
	}
}

func TestTagsEndpoint(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "a", "tags": []string{"go", "sql"}})
	createNote(t, router, map[string]any{"title": "b", "tags": []string{"go"}})

	w := doJSON(t, router, http.MethodGet, "/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tags status = %d", w.Code)
	}
	var tags []TagCount
	_ = json.Unmarshal(w.Body.Bytes(), &tags)
	if len(tags) != 2 || tags[0].Name != "go" || tags[0].NoteCount != 2 {
		t.Errorf("tags = %+v", tags)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "a", "is_favorite": true})
	createNote(t, router, map[string]any{"title": "b"})
	doJSON(t, router, http.MethodDelete, "/notes/2", nil)

	w := doJSON(t, router, http.MethodGet, "/stats", nil)
	var stats Stats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Total != 1 || stats.Favorites != 1 || stats.Trash != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSearchTitleEndpoint(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "Weekly meeting"})
	createNote(t, router, map[string]any{"title": "Unrelated"})

	w := doJSON(t, router, http.MethodGet, "/notes/search/title?q=meeting", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var refs []NoteRef
	_ = json.Unmarshal(w.Body.Bytes(), &refs)
	if len(refs) != 1 || refs[0].Title != "Weekly meeting" {
		t.Errorf("refs = %+v", refs)
	}

	// Missing q yields an empty array, not an error.
	w = doJSON(t, router, http.MethodGet, "/notes/search/title", nil)
	if w.Code != http.StatusOK {
		t.Errorf("empty q status = %d, want 200", w.Code)
	}
}

func TestBacklinksEndpoint(t *testing.T) {
	router := testEnv(t)
	createNote(t, router, map[string]any{"title": "Hub", "content": "see [[Target]]"})
	createNote(t, router, map[string]any{"title": "Target"})

	w := doJSON(t, router, http.MethodGet, "/notes/2/backlinks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks status = %d", w.Code)
	}
	var notes []Note
	_ = json.Unmarshal(w.Body.Bytes(), &notes)
	if len(notes) != 1 || notes[0].Title != "Hub" {
		t.Errorf("backlinks = %+v", notes)
	}
}

func TestUploadImageRoundtrip(t *testing.T) {
	router := testEnv(t)
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 1, 2, 3}
	body := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	req := httptest.NewRequest(http.MethodPost, "/upload/image", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &saved)

	// The returned url resolves to the exact submitted bytes. The public
	// prefix includes /api, which the test router serves unprefixed.
	req = httptest.NewRequest(http.MethodGet, "/upload/images/"+saved.Filename, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("serve status = %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Error("served bytes differ from uploaded bytes")
	}
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	router := testEnv(t)

	for _, body := range []string{
		"just text",
		"data:image/bmp;base64,AAAA",
	} {
		req := httptest.NewRequest(http.MethodPost, "/upload/image", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("upload %q status = %d, want 400", body, w.Code)
		}
	}
}

func TestServeImageNotFound(t *testing.T) {
	router := testEnv(t)
	w := doJSON(t, router, http.MethodGet, "/upload/images/nope.png", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
