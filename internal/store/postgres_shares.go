package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertShare records a grant. A second grant for the same (document, grantee)
// pair updates the permission on the existing row instead of adding one.
func (s *PostgresStore) UpsertShare(ctx context.Context, share SharedDocument) (SharedDocument, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO shared_documents (id, document_id, owner_id, grantee_id, permission)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, grantee_id)
		DO UPDATE SET permission=EXCLUDED.permission, updated_at=NOW()
		RETURNING id, document_id, owner_id, grantee_id, permission, created_at, updated_at
	`, share.ID, share.DocumentID, share.OwnerID, share.GranteeID, share.Permission).Scan(
		&share.ID, &share.DocumentID, &share.OwnerID, &share.GranteeID, &share.Permission, &share.CreatedAt, &share.UpdatedAt,
	)
	if err != nil {
		return SharedDocument{}, fmt.Errorf("upsert share: %w", err)
	}
	return share, nil
}

// GetShareForUser returns the grant for (document, grantee), or nil when the
// document has not been shared with that user.
func (s *PostgresStore) GetShareForUser(ctx context.Context, documentID, granteeID string) (*SharedDocument, error) {
	var share SharedDocument
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, owner_id, grantee_id, permission, created_at, updated_at
		FROM shared_documents
		WHERE document_id=$1 AND grantee_id=$2
	`, documentID, granteeID).Scan(
		&share.ID, &share.DocumentID, &share.OwnerID, &share.GranteeID, &share.Permission, &share.CreatedAt, &share.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get share for user: %w", err)
	}
	return &share, nil
}

func (s *PostgresStore) GetShareByID(ctx context.Context, shareID string) (SharedDocument, error) {
	var share SharedDocument
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, owner_id, grantee_id, permission, created_at, updated_at
		FROM shared_documents
		WHERE id=$1
	`, shareID).Scan(
		&share.ID, &share.DocumentID, &share.OwnerID, &share.GranteeID, &share.Permission, &share.CreatedAt, &share.UpdatedAt,
	)
	if err != nil {
		return SharedDocument{}, err
	}
	return share, nil
}

func (s *PostgresStore) DeleteShare(ctx context.Context, shareID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shared_documents WHERE id=$1`, shareID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete share rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListSharesByDocument returns the document's grants with each grantee's
// public profile, for the owner's sharing panel.
func (s *PostgresStore) ListSharesByDocument(ctx context.Context, documentID string) ([]ShareListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sd.id, sd.document_id, sd.owner_id, sd.grantee_id, sd.permission, sd.created_at, sd.updated_at,
			u.id, u.display_name, u.email
		FROM shared_documents sd
		JOIN users u ON u.id = sd.grantee_id
		WHERE sd.document_id=$1
		ORDER BY sd.created_at ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	items := make([]ShareListing, 0)
	for rows.Next() {
		var item ShareListing
		if err := rows.Scan(
			&item.ID, &item.DocumentID, &item.OwnerID, &item.GranteeID, &item.Permission, &item.CreatedAt, &item.UpdatedAt,
			&item.Grantee.ID, &item.Grantee.DisplayName, &item.Grantee.Email,
		); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return items, nil
}

// ListGrantedToUser builds the "shared with me" view: every document granted
// to the user, with its tags and the granting owner's public profile. Only
// id, name, and email of the owner leave the store.
func (s *PostgresStore) ListGrantedToUser(ctx context.Context, granteeID string) ([]GrantedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.owner_id, d.title, d.content, d.doc_type, d.created_at, d.updated_at,
			sd.id, sd.permission, sd.created_at,
			o.id, o.display_name, o.email
		FROM shared_documents sd
		JOIN documents d ON d.id = sd.document_id
		JOIN users o ON o.id = sd.owner_id
		WHERE sd.grantee_id=$1
		ORDER BY sd.created_at DESC
	`, granteeID)
	if err != nil {
		return nil, fmt.Errorf("list granted documents: %w", err)
	}
	defer rows.Close()

	items := make([]GrantedDocument, 0)
	for rows.Next() {
		var item GrantedDocument
		if err := rows.Scan(
			&item.Document.ID, &item.Document.OwnerID, &item.Document.Title, &item.Document.Content,
			&item.Document.DocType, &item.Document.CreatedAt, &item.Document.UpdatedAt,
			&item.ShareID, &item.Permission, &item.SharedAt,
			&item.SharedBy.ID, &item.SharedBy.DisplayName, &item.SharedBy.Email,
		); err != nil {
			return nil, fmt.Errorf("scan granted document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate granted documents: %w", err)
	}

	for i := range items {
		tags, err := s.listEntityTags(ctx, "document_tags", "document_id", items[i].Document.ID)
		if err != nil {
			return nil, err
		}
		items[i].Document.Tags = tags
	}
	return items, nil
}

func (s *PostgresStore) InsertShareLink(ctx context.Context, link ShareLink) (ShareLink, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO share_links (id, document_id, token_hash, password_hash, expires_at, created_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING created_at
	`, link.ID, link.DocumentID, link.TokenHash, link.PasswordHash, link.ExpiresAt, link.CreatedBy).Scan(&link.CreatedAt)
	if err != nil {
		return ShareLink{}, fmt.Errorf("insert share link: %w", err)
	}
	return link, nil
}

// GetShareLinkByTokenHash resolves an unexpired share link by token hash.
func (s *PostgresStore) GetShareLinkByTokenHash(ctx context.Context, tokenHash string) (ShareLink, error) {
	var link ShareLink
	var passwordHash sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, token_hash, password_hash, expires_at, created_by, created_at
		FROM share_links
		WHERE token_hash=$1 AND (expires_at IS NULL OR expires_at > NOW())
	`, tokenHash).Scan(
		&link.ID, &link.DocumentID, &link.TokenHash, &passwordHash, &link.ExpiresAt, &link.CreatedBy, &link.CreatedAt,
	)
	if err != nil {
		return ShareLink{}, err
	}
	link.PasswordHash = passwordHash.String
	return link, nil
}
