package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CategoryRow is a category with its live note count (non-deleted notes
// only).
type CategoryRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	NoteCount int
}

// ListCategories returns all categories ordered by id with their active
// note counts.
func (db *DB) ListCategories() ([]CategoryRow, error) {
	rows, err := db.conn.Query(`
		SELECT c.id, c.name, c.created_at, COUNT(n.id)
		FROM categories c
		LEFT JOIN notes n ON c.id = n.category_id AND n.is_deleted = 0
		GROUP BY c.id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	out := []CategoryRow{}
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.NoteCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory returns a category by id, or nil when unknown.
func (db *DB) GetCategory(id int64) (*CategoryRow, error) {
	var c CategoryRow
	err := db.conn.QueryRow(`SELECT id, name, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get category: %w", err)
	}
	return &c, nil
}

// InsertCategory creates a category and returns its id. A name collision
// surfaces as apperr.ErrConflict.
func (db *DB) InsertCategory(name string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("store: insert category: %w", translateConstraint(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

// RenameCategory updates a category name. A collision with another
// category surfaces as apperr.ErrConflict.
func (db *DB) RenameCategory(id int64, name string) error {
	if _, err := db.conn.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("store: rename category: %w", translateConstraint(err))
	}
	return nil
}

// CountActiveNotesInCategory counts the non-deleted notes referencing a
// category.
func (db *DB) CountActiveNotesInCategory(id int64) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE category_id = ? AND is_deleted = 0`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count notes in category: %w", err)
	}
	return n, nil
}

// DeleteCategory removes a category unconditionally. Notes still
// referencing it keep working with a NULL category via the foreign key's
// ON DELETE SET NULL.
func (db *DB) DeleteCategory(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	return nil
}
