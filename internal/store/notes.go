package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// NoteRow is a fully joined note row: category name resolved, tag names
// aggregated in association insertion order.
type NoteRow struct {
	ID           int64
	Title        string
	Content      string
	CategoryID   *int64
	CategoryName string
	IsPinned     bool
	IsFavorite   bool
	IsDeleted    bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Tags         []string
}

// NoteRef is a lightweight note reference used by title search.
type NoteRef struct {
	ID        int64
	Title     string
	UpdatedAt time.Time
}

// Tag is a tag row.
type Tag struct {
	ID   int64
	Name string
}

// NewNote carries the resolved values for a note insert.
type NewNote struct {
	Title      string
	Content    string
	CategoryID int64
	IsPinned   bool
	IsFavorite bool
	Tags       []string
}

// NoteUpdate carries the final values for a note update. Partial-update
// resolution (merging omitted fields with the stored row) happens in the
// service layer; the store always writes every column. Tags == nil keeps
// the existing associations; a non-nil empty slice clears them.
type NoteUpdate struct {
	Title      string
	Content    string
	CategoryID *int64
	IsPinned   bool
	IsFavorite bool
	Tags       *[]string
}

// NoteFilter restricts ListNotes and CountNotes.
type NoteFilter struct {
	CategoryID *int64
	Search     string
	Tag        string
	Favorites  bool
}

// where builds the shared predicate for list and count queries.
// Deleted notes are always excluded.
func (f NoteFilter) where() (string, []any) {
	conds := []string{"n.is_deleted = 0"}
	var params []any
	if f.CategoryID != nil {
		conds = append(conds, "n.category_id = ?")
		params = append(params, *f.CategoryID)
	}
	if f.Search != "" {
		conds = append(conds, "(n.title LIKE ? OR n.content LIKE ?)")
		like := "%" + f.Search + "%"
		params = append(params, like, like)
	}
	if f.Tag != "" {
		conds = append(conds, "t.name = ?")
		params = append(params, f.Tag)
	}
	if f.Favorites {
		conds = append(conds, "n.is_favorite = 1")
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

const noteJoinedSelect = `
SELECT n.id, n.title, n.content, n.category_id, n.is_pinned, n.is_favorite,
       n.is_deleted, n.deleted_at, n.created_at, n.updated_at,
       c.name,
       (SELECT GROUP_CONCAT(name) FROM (
            SELECT t2.name FROM note_tags nt2
            JOIN tags t2 ON nt2.tag_id = t2.id
            WHERE nt2.note_id = n.id
            ORDER BY nt2.rowid)) AS tags
FROM notes n
LEFT JOIN categories c ON n.category_id = c.id
LEFT JOIN note_tags nt ON n.id = nt.note_id
LEFT JOIN tags t ON nt.tag_id = t.id
`

func scanNoteRows(rows *sql.Rows) ([]NoteRow, error) {
	var out []NoteRow
	for rows.Next() {
		var (
			n       NoteRow
			catID   sql.NullInt64
			catName sql.NullString
			deleted sql.NullTime
			tagsCSV sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &catID, &n.IsPinned, &n.IsFavorite,
			&n.IsDeleted, &deleted, &n.CreatedAt, &n.UpdatedAt, &catName, &tagsCSV); err != nil {
			return nil, err
		}
		if catID.Valid {
			n.CategoryID = &catID.Int64
		}
		n.CategoryName = catName.String
		if deleted.Valid {
			t := deleted.Time
			n.DeletedAt = &t
		}
		n.Tags = []string{}
		if tagsCSV.Valid && tagsCSV.String != "" {
			n.Tags = strings.Split(tagsCSV.String, ",")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListNotes returns one page of non-deleted notes matching the filter,
// pinned first, most recently updated first, id descending as tie-break.
func (db *DB) ListNotes(f NoteFilter, limit, offset int) ([]NoteRow, error) {
	where, params := f.where()
	query := noteJoinedSelect + where +
		" GROUP BY n.id ORDER BY n.is_pinned DESC, n.updated_at DESC, n.id DESC LIMIT ? OFFSET ?"
	params = append(params, limit, offset)

	rows, err := db.conn.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

// CountNotes returns the total number of notes matching the filter,
// using the same predicate as ListNotes but without pagination.
func (db *DB) CountNotes(f NoteFilter) (int, error) {
	where, params := f.where()
	query := `
		SELECT COUNT(DISTINCT n.id)
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
	` + where

	var total int
	if err := db.conn.QueryRow(query, params...).Scan(&total); err != nil {
		return 0, fmt.Errorf("store: count notes: %w", err)
	}
	return total, nil
}

// GetNote returns a single note with its category name, or nil if the id
// is unknown. Soft-deleted notes are returned as well; excluding them is
// a listing concern only.
func (db *DB) GetNote(id int64) (*NoteRow, error) {
	row := db.conn.QueryRow(`
		SELECT n.id, n.title, n.content, n.category_id, n.is_pinned, n.is_favorite,
		       n.is_deleted, n.deleted_at, n.created_at, n.updated_at, c.name
		FROM notes n
		LEFT JOIN categories c ON n.category_id = c.id
		WHERE n.id = ?
	`, id)

	var (
		n       NoteRow
		catID   sql.NullInt64
		catName sql.NullString
		deleted sql.NullTime
	)
	err := row.Scan(&n.ID, &n.Title, &n.Content, &catID, &n.IsPinned, &n.IsFavorite,
		&n.IsDeleted, &deleted, &n.CreatedAt, &n.UpdatedAt, &catName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	if catID.Valid {
		n.CategoryID = &catID.Int64
	}
	n.CategoryName = catName.String
	if deleted.Valid {
		t := deleted.Time
		n.DeletedAt = &t
	}
	n.Tags = []string{}
	return &n, nil
}

// TagsForNote returns the full tag rows of a note in association
// insertion order.
func (db *DB) TagsForNote(noteID int64) ([]Tag, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.name
		FROM tags t
		JOIN note_tags nt ON t.id = nt.tag_id
		WHERE nt.note_id = ?
		ORDER BY nt.rowid
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("store: tags for note: %w", err)
	}
	defer rows.Close()

	out := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ensureTag makes sure a tag with the given name exists and returns its id.
// Idempotent: an existing tag is reused.
func ensureTag(tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("store: ensure tag: %w", err)
	}
	var id int64
	if err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("store: ensure tag lookup: %w", err)
	}
	return id, nil
}

// associateTags links the note to each named tag, creating tags on demand.
// Duplicate names in the input collapse to one association via the
// composite primary key.
func associateTags(tx *sql.Tx, noteID int64, names []string) error {
	for _, name := range names {
		tagID, err := ensureTag(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, tagID); err != nil {
			return fmt.Errorf("store: associate tag: %w", err)
		}
	}
	return nil
}

// InsertNote inserts a note and its tag associations in one transaction
// and returns the new id.
func (db *DB) InsertNote(n NewNote) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO notes (title, content, category_id, is_pinned, is_favorite)
		VALUES (?, ?, ?, ?, ?)
	`, n.Title, n.Content, n.CategoryID, n.IsPinned, n.IsFavorite)
	if err != nil {
		return 0, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	if err := associateTags(tx, id, n.Tags); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// UpdateNote writes the resolved note values and, when u.Tags is non-nil,
// replaces the association set. updated_at is always bumped, whether or
// not any value changed.
func (db *DB) UpdateNote(id int64, u NoteUpdate) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		UPDATE notes
		SET title = ?, content = ?, category_id = ?, is_pinned = ?, is_favorite = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, u.Title, u.Content, u.CategoryID, u.IsPinned, u.IsFavorite, id)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}

	if u.Tags != nil {
		if _, err := tx.Exec(`DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
			return fmt.Errorf("store: clear associations: %w", err)
		}
		if err := associateTags(tx, id, *u.Tags); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkDeleted soft-deletes a note. Returns false when the note does not
// exist or is already in the trash.
func (db *DB) MarkDeleted(id int64) (bool, error) {
	res, err := db.conn.Exec(`
		UPDATE notes SET is_deleted = 1, deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_deleted = 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("store: mark deleted: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkRestored brings a note back from the trash. Returns false when the
// note does not exist or is not currently deleted.
func (db *DB) MarkRestored(id int64) (bool, error) {
	res, err := db.conn.Exec(`
		UPDATE notes SET is_deleted = 0, deleted_at = NULL
		WHERE id = ? AND is_deleted = 1
	`, id)
	if err != nil {
		return false, fmt.Errorf("store: mark restored: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteForever removes a trashed note and its associations. Returns
// false when the note does not exist or is not in the trash.
func (db *DB) DeleteForever(id int64) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM notes WHERE id = ? AND is_deleted = 1`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete note: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if _, err := tx.Exec(`DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
		return false, fmt.Errorf("store: delete associations: %w", err)
	}
	return true, tx.Commit()
}

// EmptyTrash removes all trashed notes and their associations in one
// transaction. Returns the number of notes removed.
func (db *DB) EmptyTrash() (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`
		DELETE FROM note_tags WHERE note_id IN (SELECT id FROM notes WHERE is_deleted = 1)
	`); err != nil {
		return 0, fmt.Errorf("store: empty trash associations: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM notes WHERE is_deleted = 1`)
	if err != nil {
		return 0, fmt.Errorf("store: empty trash: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// ListTrash returns all trashed notes, most recently deleted first.
func (db *DB) ListTrash() ([]NoteRow, error) {
	rows, err := db.conn.Query(noteJoinedSelect+`
		WHERE n.is_deleted = 1
		GROUP BY n.id
		ORDER BY n.deleted_at DESC, n.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list trash: %w", err)
	}
	defer rows.Close()
	return scanNoteRows(rows)
}

// Stats returns the three aggregate counts: active notes, favorites among
// them, and trashed notes.
func (db *DB) Stats() (total, favorites, trash int, err error) {
	if err = db.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE is_deleted = 0`).Scan(&total); err != nil {
		return 0, 0, 0, fmt.Errorf("store: stats total: %w", err)
	}
	if err = db.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE is_favorite = 1 AND is_deleted = 0`).Scan(&favorites); err != nil {
		return 0, 0, 0, fmt.Errorf("store: stats favorites: %w", err)
	}
	if err = db.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE is_deleted = 1`).Scan(&trash); err != nil {
		return 0, 0, 0, fmt.Errorf("store: stats trash: %w", err)
	}
	return total, favorites, trash, nil
}

// SearchByTitle returns non-deleted notes whose title contains the
// keyword, most recently updated first.
func (db *DB) SearchByTitle(keyword string, limit int) ([]NoteRef, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, updated_at
		FROM notes
		WHERE is_deleted = 0 AND title LIKE ?
		ORDER BY updated_at DESC, id DESC
		LIMIT ?
	`, "%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("store: search by title: %w", err)
	}
	defer rows.Close()

	out := []NoteRef{}
	for rows.Next() {
		var r NoteRef
		if err := rows.Scan(&r.ID, &r.Title, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Backlinks returns all non-deleted notes (other than the note itself)
// whose content contains the literal marker "[[<title>]]". The match is a
// plain substring scan via instr(), so wildcard characters in titles need
// no escaping. An unknown or deleted id yields an empty result.
func (db *DB) Backlinks(noteID int64) ([]NoteRow, error) {
	var title string
	err := db.conn.QueryRow(`SELECT title FROM notes WHERE id = ? AND is_deleted = 0`, noteID).Scan(&title)
	if err == sql.ErrNoRows {
		return []NoteRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: backlinks title: %w", err)
	}

	marker := "[[" + title + "]]"
	rows, err := db.conn.Query(noteJoinedSelect+`
		WHERE n.is_deleted = 0 AND n.id <> ? AND instr(n.content, ?) > 0
		GROUP BY n.id
		ORDER BY n.updated_at DESC, n.id DESC
	`, noteID, marker)
	if err != nil {
		return nil, fmt.Errorf("store: backlinks: %w", err)
	}
	defer rows.Close()

	out, err := scanNoteRows(rows)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []NoteRow{}
	}
	return out, nil
}
