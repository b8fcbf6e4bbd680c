package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lexidraft/api/internal/access"
	"lexidraft/api/internal/auth"
	"lexidraft/api/internal/store"
	"lexidraft/api/internal/util"
)

// GrantShare records or updates a grant. The grantee may be referenced by
// user id or by email. Granting twice to the same user updates the
// permission on the existing row.
func (s *Service) GrantShare(ctx context.Context, session Session, documentID, granteeRef, permission string) (map[string]any, error) {
	if !access.Valid(permission) {
		return nil, errValidation("permission must be read or write")
	}
	granteeRef = strings.TrimSpace(granteeRef)
	if granteeRef == "" {
		return nil, errValidation("grantee is required")
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errDocumentNotFound()
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != session.UserID {
		return nil, errNotOwner()
	}

	grantee, err := s.resolveGrantee(ctx, granteeRef)
	if err != nil {
		return nil, err
	}
	if grantee.ID == doc.OwnerID {
		return nil, errSelfShareNotAllowed()
	}

	share, err := s.store.UpsertShare(ctx, store.SharedDocument{
		ID:         util.NewID("shr"),
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		GranteeID:  grantee.ID,
		Permission: permission,
	})
	if err != nil {
		return nil, err
	}

	if s.email != nil && s.email.IsConfigured() {
		documentURL := s.cfg.PublicBaseURL + "/documents/" + doc.ID
		if err := s.email.SendShareNotification(grantee.Email, grantee.DisplayName, session.UserName, doc.Title, permission, documentURL); err != nil {
			log.Printf("email: share notification for %s: %v", doc.ID, err)
		}
	}

	return sharePayload(share), nil
}

func (s *Service) resolveGrantee(ctx context.Context, ref string) (store.User, error) {
	if strings.Contains(ref, "@") {
		user, err := s.store.GetUserByEmail(ctx, ref)
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, errUserNotFound()
		}
		return user, err
	}
	user, err := s.store.GetUserByID(ctx, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, errUserNotFound()
	}
	return user, err
}

func (s *Service) ListShares(ctx context.Context, session Session, documentID string) ([]map[string]any, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errDocumentNotFound()
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != session.UserID {
		return nil, errNotOwner()
	}

	shares, err := s.store.ListSharesByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(shares))
	for _, share := range shares {
		payload := sharePayload(share.SharedDocument)
		payload["grantee"] = publicProfilePayload(share.Grantee)
		items = append(items, payload)
	}
	return items, nil
}

func (s *Service) RevokeShare(ctx context.Context, session Session, documentID, shareID string) error {
	share, err := s.store.GetShareByID(ctx, shareID)
	if errors.Is(err, sql.ErrNoRows) {
		return errShareNotFound()
	}
	if err != nil {
		return err
	}
	if share.DocumentID != documentID {
		return errShareNotFound()
	}
	if share.OwnerID != session.UserID {
		return errNotOwner()
	}
	if err := s.store.DeleteShare(ctx, shareID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errShareNotFound()
		}
		return err
	}
	return nil
}

// ListGrantedToMe is the "shared with me" view. Each entry carries the
// document, the grant, and the owner's public profile only.
func (s *Service) ListGrantedToMe(ctx context.Context, session Session) ([]map[string]any, error) {
	granted, err := s.store.ListGrantedToUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(granted))
	for _, item := range granted {
		payload := documentPayload(item.Document)
		payload["shareId"] = item.ShareID
		payload["permission"] = item.Permission
		payload["sharedBy"] = publicProfilePayload(item.SharedBy)
		payload["sharedAt"] = item.SharedAt
		items = append(items, payload)
	}
	return items, nil
}

// CreateShareLink mints a tokenized read-only link. The raw token appears
// once in the response; only its hash is stored.
func (s *Service) CreateShareLink(ctx context.Context, session Session, documentID, password string, expiresInHours int) (map[string]any, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errDocumentNotFound()
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != session.UserID {
		return nil, errNotOwner()
	}

	token := util.NewID("slt") + util.NewID("")

	passwordHash := ""
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hashed)
	}

	var expiresAt *time.Time
	if expiresInHours > 0 {
		expiry := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
		expiresAt = &expiry
	}

	link, err := s.store.InsertShareLink(ctx, store.ShareLink{
		ID:           util.NewID("lnk"),
		DocumentID:   doc.ID,
		TokenHash:    auth.HashToken(token),
		PasswordHash: passwordHash,
		ExpiresAt:    expiresAt,
		CreatedBy:    session.UserID,
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"id":        link.ID,
		"token":     token,
		"url":       s.cfg.PublicBaseURL + "/share/" + token,
		"createdAt": link.CreatedAt,
	}
	if link.ExpiresAt != nil {
		payload["expiresAt"] = link.ExpiresAt
	}
	return payload, nil
}

// ResolveShareLink serves the public read-only view. Expired links are
// filtered in SQL and read the same as absent ones.
func (s *Service) ResolveShareLink(ctx context.Context, token, password string) (map[string]any, error) {
	link, err := s.store.GetShareLinkByTokenHash(ctx, auth.HashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errShareLinkNotFound()
	}
	if err != nil {
		return nil, err
	}

	if link.PasswordHash != "" {
		if password == "" {
			return nil, domainError(http.StatusUnauthorized, "SHARE_LINK_PASSWORD_REQUIRED", "This link requires a password", nil)
		}
		if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)) != nil {
			return nil, domainError(http.StatusUnauthorized, "SHARE_LINK_PASSWORD_INVALID", "Incorrect password", nil)
		}
	}

	doc, err := s.store.GetDocument(ctx, link.DocumentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errShareLinkNotFound()
	}
	if err != nil {
		return nil, err
	}

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"title":     doc.Title,
		"content":   doc.Content,
		"docType":   doc.DocType,
		"tags":      tags,
		"updatedAt": doc.UpdatedAt,
	}, nil
}

func sharePayload(share store.SharedDocument) map[string]any {
	return map[string]any{
		"id":         share.ID,
		"documentId": share.DocumentID,
		"ownerId":    share.OwnerID,
		"granteeId":  share.GranteeID,
		"permission": share.Permission,
		"createdAt":  share.CreatedAt,
		"updatedAt":  share.UpdatedAt,
	}
}
