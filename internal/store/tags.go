package store

import "fmt"

// TagRow is a tag with its live note count (non-deleted notes only).
type TagRow struct {
	ID        int64
	Name      string
	NoteCount int
}

// ListTags returns all tags with their active note counts, most used
// first. Orphaned tags stay listed with a count of zero.
func (db *DB) ListTags() ([]TagRow, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.name, COUNT(n.id) AS note_count
		FROM tags t
		LEFT JOIN note_tags nt ON t.id = nt.tag_id
		LEFT JOIN notes n ON nt.note_id = n.id AND n.is_deleted = 0
		GROUP BY t.id
		ORDER BY note_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list tags: %w", err)
	}
	defer rows.Close()

	out := []TagRow{}
	for rows.Next() {
		var t TagRow
		if err := rows.Scan(&t.ID, &t.Name, &t.NoteCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
