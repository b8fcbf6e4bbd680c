package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"lexidraft/api/internal/access"
	"lexidraft/api/internal/export"
	"lexidraft/api/internal/gitrepo"
	"lexidraft/api/internal/search"
	"lexidraft/api/internal/store"
	"lexidraft/api/internal/util"
)

// authorizeDocument is the single gate in front of every document-scoped
// operation. It resolves the document, fetches the caller's grant, and
// applies the access rules.
func (s *Service) authorizeDocument(ctx context.Context, userID, documentID string, required access.Permission) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, errDocumentNotFound()
	}
	if err != nil {
		return store.Document{}, err
	}

	var grant *access.Grant
	if doc.OwnerID != userID {
		share, err := s.store.GetShareForUser(ctx, documentID, userID)
		if err != nil {
			return store.Document{}, err
		}
		if share != nil {
			grant = &access.Grant{
				GranteeID:  share.GranteeID,
				Permission: access.Permission(share.Permission),
			}
		}
	}

	decision := access.Evaluate(userID, doc.OwnerID, grant, required)
	if decision.Allowed {
		return doc, nil
	}
	switch decision.Reason {
	case access.ReasonNotShared:
		return store.Document{}, errNotShared()
	case access.ReasonInsufficientPermission:
		return store.Document{}, errInsufficientPermission()
	default:
		return store.Document{}, errNotShared()
	}
}

func (s *Service) CreateDocument(ctx context.Context, session Session, title, content, docType string, tags []string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errValidation("title is required")
	}

	doc, err := s.store.InsertDocument(ctx, store.Document{
		ID:      util.NewID("doc"),
		OwnerID: session.UserID,
		Title:   title,
		Content: content,
		DocType: strings.TrimSpace(docType),
	}, tags)
	if err != nil {
		return nil, err
	}

	// Mirror and index failures never fail the request.
	if s.git != nil {
		if err := s.git.EnsureDocumentRepo(doc.ID, gitrepo.Content{
			Title:   doc.Title,
			DocType: doc.DocType,
			Body:    doc.Content,
			Tags:    doc.Tags,
		}, session.UserName); err != nil {
			log.Printf("gitrepo: ensure repo for %s: %v", doc.ID, err)
		}
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
			DocType: doc.DocType,
		})
	}

	return documentPayload(doc), nil
}

func (s *Service) GetDocumentByID(ctx context.Context, session Session, documentID string) (map[string]any, error) {
	doc, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionRead)
	if err != nil {
		return nil, err
	}
	return documentPayload(doc), nil
}

func (s *Service) ListDocuments(ctx context.Context, session Session) ([]map[string]any, error) {
	documents, err := s.store.ListDocumentsByOwner(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(documents))
	for _, doc := range documents {
		items = append(items, documentPayload(doc))
	}
	return items, nil
}

// UpdateDocument snapshots the prior content as a version, applies the new
// content, and refreshes the tags. The snapshot and the update share one DB
// transaction inside the store.
func (s *Service) UpdateDocument(ctx context.Context, session Session, documentID, title, content string, tags []string) (map[string]any, error) {
	doc, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionWrite)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = doc.Title
	}

	snapshot, err := s.store.UpdateDocumentContent(ctx, documentID, title, content)
	if err != nil {
		return nil, err
	}

	updatedTags := doc.Tags
	if tags != nil {
		updatedTags, err = s.store.SetDocumentTags(ctx, documentID, tags)
		if err != nil {
			return nil, err
		}
	}

	updated := doc
	updated.Title = title
	updated.Content = content
	updated.Tags = updatedTags

	if s.git != nil {
		if _, err := s.git.CommitContent(documentID, gitrepo.Content{
			Title:   updated.Title,
			DocType: updated.DocType,
			Body:    updated.Content,
			Tags:    updated.Tags,
		}, session.UserName, "Update document"); err != nil {
			log.Printf("gitrepo: commit %s: %v", documentID, err)
		}
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{
			ID:      updated.ID,
			Title:   updated.Title,
			Content: updated.Content,
			DocType: updated.DocType,
		})
	}

	payload := documentPayload(updated)
	payload["snapshotVersionId"] = snapshot.ID
	return payload, nil
}

// DeleteDocument is owner-only. A write grant lets a collaborator edit, not
// destroy.
func (s *Service) DeleteDocument(ctx context.Context, session Session, documentID string) error {
	doc, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionWrite)
	if err != nil {
		return err
	}
	if doc.OwnerID != session.UserID {
		return errNotOwner()
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errDocumentNotFound()
		}
		return err
	}
	if s.search != nil {
		s.search.DeleteDocument(documentID)
	}
	return nil
}

// Version routes are owner-only: grantees collaborate on the current text,
// the revision trail stays with the owner.
func (s *Service) requireOwner(ctx context.Context, userID, documentID string) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, errDocumentNotFound()
	}
	if err != nil {
		return store.Document{}, err
	}
	if doc.OwnerID != userID {
		return store.Document{}, errNotOwner()
	}
	return doc, nil
}

func (s *Service) ListVersions(ctx context.Context, session Session, documentID string) ([]map[string]any, error) {
	if _, err := s.requireOwner(ctx, session.UserID, documentID); err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(versions))
	for _, version := range versions {
		items = append(items, versionPayload(version))
	}
	return items, nil
}

// GetVersion requires the version to belong to the named document. A version
// id that exists under a different document is indistinguishable from one
// that does not exist.
func (s *Service) GetVersion(ctx context.Context, session Session, documentID, versionID string) (map[string]any, error) {
	if _, err := s.requireOwner(ctx, session.UserID, documentID); err != nil {
		return nil, err
	}
	version, err := s.store.GetVersion(ctx, documentID, versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errVersionNotFound()
	}
	if err != nil {
		return nil, err
	}
	return versionPayload(version), nil
}

func (s *Service) ExportDocument(ctx context.Context, session Session, documentID string, format export.Format) (*export.Result, error) {
	doc, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionRead)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.GetUserByID(ctx, doc.OwnerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.export.Export(export.Document{
		ID:        doc.ID,
		Title:     doc.Title,
		DocType:   doc.DocType,
		Content:   doc.Content,
		Author:    owner.DisplayName,
		Tags:      doc.Tags,
		UpdatedAt: doc.UpdatedAt,
	}, format)
}

func (s *Service) DocumentHistory(ctx context.Context, session Session, documentID string, limit int) ([]map[string]any, error) {
	if _, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionRead); err != nil {
		return nil, err
	}
	// No mirror configured means no revisions, not a fault.
	if s.git == nil {
		return []map[string]any{}, nil
	}
	revisions, err := s.git.History(documentID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(revisions))
	for _, revision := range revisions {
		items = append(items, map[string]any{
			"hash":      revision.Hash,
			"author":    revision.Author,
			"message":   strings.TrimSpace(revision.Message),
			"createdAt": revision.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) DocumentHistoryContent(ctx context.Context, session Session, documentID, hash string) (map[string]any, error) {
	if _, err := s.authorizeDocument(ctx, session.UserID, documentID, access.PermissionRead); err != nil {
		return nil, err
	}
	if s.git == nil {
		return nil, errVersionNotFound()
	}
	content, err := s.git.GetContentByHash(documentID, hash)
	if err != nil {
		return nil, errVersionNotFound()
	}
	return map[string]any{
		"hash":    hash,
		"title":   content.Title,
		"docType": content.DocType,
		"content": content.Body,
		"tags":    content.Tags,
	}, nil
}

func documentPayload(doc store.Document) map[string]any {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":        doc.ID,
		"ownerId":   doc.OwnerID,
		"title":     doc.Title,
		"content":   doc.Content,
		"docType":   doc.DocType,
		"tags":      tags,
		"createdAt": doc.CreatedAt,
		"updatedAt": doc.UpdatedAt,
	}
}

func versionPayload(version store.DocumentVersion) map[string]any {
	return map[string]any{
		"id":         version.ID,
		"documentId": version.DocumentID,
		"content":    version.Content,
		"createdAt":  version.CreatedAt,
	}
}
