package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lexidraft/api/internal/util"
)

func (s *PostgresStore) InsertDocument(ctx context.Context, item Document, tags []string) (Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("begin insert document tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (id, owner_id, title, content, doc_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, title, content, doc_type, created_at, updated_at
	`, item.ID, item.OwnerID, item.Title, item.Content, item.DocType).Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.DocType, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}

	attached, err := attachTags(ctx, tx, "document_tags", "document_id", item.ID, tags)
	if err != nil {
		return Document{}, err
	}
	item.Tags = attached

	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("commit insert document: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (Document, error) {
	var item Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, content, doc_type, created_at, updated_at
		FROM documents
		WHERE id=$1
	`, documentID).Scan(&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.DocType, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	tags, err := s.listEntityTags(ctx, "document_tags", "document_id", documentID)
	if err != nil {
		return Document{}, err
	}
	item.Tags = tags
	return item, nil
}

func (s *PostgresStore) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, content, doc_type, created_at, updated_at
		FROM documents
		WHERE owner_id=$1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		var item Document
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.DocType, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

// UpdateDocumentContent snapshots the prior content into document_versions and
// applies the new content in one transaction, so a crash cannot leave the
// document ahead of its history. Returns the created snapshot.
func (s *PostgresStore) UpdateDocumentContent(ctx context.Context, documentID, title, content string) (DocumentVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DocumentVersion{}, fmt.Errorf("begin update document tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prior string
	err = tx.QueryRowContext(ctx, `SELECT content FROM documents WHERE id=$1 FOR UPDATE`, documentID).Scan(&prior)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentVersion{}, sql.ErrNoRows
		}
		return DocumentVersion{}, fmt.Errorf("lock document for update: %w", err)
	}

	version := DocumentVersion{ID: util.NewID("ver"), DocumentID: documentID, Content: prior}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO document_versions (id, document_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, version.ID, version.DocumentID, version.Content).Scan(&version.CreatedAt)
	if err != nil {
		return DocumentVersion{}, fmt.Errorf("insert document version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET title=$2, content=$3, updated_at=NOW() WHERE id=$1
	`, documentID, title, content); err != nil {
		return DocumentVersion{}, fmt.Errorf("update document content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return DocumentVersion{}, fmt.Errorf("commit update document: %w", err)
	}
	return version, nil
}

// SetDocumentTags replaces the document's tag set, reusing existing tag rows
// by text.
func (s *PostgresStore) SetDocumentTags(ctx context.Context, documentID string, tags []string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin set tags tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id=$1`, documentID); err != nil {
		return nil, fmt.Errorf("clear document tags: %w", err)
	}
	attached, err := attachTags(ctx, tx, "document_tags", "document_id", documentID, tags)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit set tags: %w", err)
	}
	return attached, nil
}

// DeleteDocument removes the document; versions, grants, tag joins, and share
// links go with it via ON DELETE CASCADE.
func (s *PostgresStore) DeleteDocument(ctx context.Context, documentID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=$1`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, documentID string) ([]DocumentVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, created_at
		FROM document_versions
		WHERE document_id=$1
		ORDER BY created_at DESC, id DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	items := make([]DocumentVersion, 0)
	for rows.Next() {
		var item DocumentVersion
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return items, nil
}

// GetVersion requires the version id AND its parent document id to match, so
// a version id alone cannot be replayed against another document.
func (s *PostgresStore) GetVersion(ctx context.Context, documentID, versionID string) (DocumentVersion, error) {
	var item DocumentVersion
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, created_at
		FROM document_versions
		WHERE document_id=$1 AND id=$2
	`, documentID, versionID).Scan(&item.ID, &item.DocumentID, &item.Content, &item.CreatedAt)
	if err != nil {
		return DocumentVersion{}, err
	}
	return item, nil
}

// FilterReadableDocumentIDs narrows a candidate id list to documents the user
// owns or holds a grant on. Used to authorize search results in one query.
func (s *PostgresStore) FilterReadableDocumentIDs(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(`
		SELECT d.id
		FROM documents d
		WHERE d.id IN (%s)
		  AND (d.owner_id = $1
		       OR EXISTS (SELECT 1 FROM shared_documents sd WHERE sd.document_id = d.id AND sd.grantee_id = $1))
	`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter readable documents: %w", err)
	}
	defer rows.Close()

	readable := make([]string, 0, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan readable id: %w", err)
		}
		readable = append(readable, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readable ids: %w", err)
	}
	return readable, nil
}

// attachTags attaches tags to a document or template inside tx, creating tag
// rows as needed. Tag text is the identity key; matching is case-insensitive
// on the normalized (trimmed, lowered) text.
func attachTags(ctx context.Context, tx *sql.Tx, joinTable, joinColumn, entityID string, tags []string) ([]string, error) {
	attached := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		text := strings.ToLower(strings.TrimSpace(raw))
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		var tagID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tags (text) VALUES ($1)
			ON CONFLICT (text) DO UPDATE SET text=EXCLUDED.text
			RETURNING id
		`, text).Scan(&tagID)
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", text, err)
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (%s, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, joinTable, joinColumn)
		if _, err := tx.ExecContext(ctx, query, entityID, tagID); err != nil {
			return nil, fmt.Errorf("attach tag %q: %w", text, err)
		}
		attached = append(attached, text)
	}
	return attached, nil
}

func (s *PostgresStore) listEntityTags(ctx context.Context, joinTable, joinColumn, entityID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT t.text
		FROM tags t
		JOIN %s j ON j.tag_id = t.id
		WHERE j.%s = $1
		ORDER BY t.text ASC
	`, joinTable, joinColumn)
	rows, err := s.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}
