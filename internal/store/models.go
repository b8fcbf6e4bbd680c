package store

import "time"

type User struct {
	ID          string
	ExternalID  string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicProfile is the subset of a user record safe to hand to other users.
type PublicProfile struct {
	ID          string
	DisplayName string
	Email       string
}

type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	DocType   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DocumentVersion struct {
	ID         string
	DocumentID string
	Content    string
	CreatedAt  time.Time
}

type Template struct {
	ID         string
	Title      string
	Content    string
	Category   string
	UsageCount int
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SharedDocument struct {
	ID         string
	DocumentID string
	OwnerID    string
	GranteeID  string
	Permission string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ShareListing is a grant as seen by the document owner, enriched with the
// grantee's public profile.
type ShareListing struct {
	SharedDocument
	Grantee PublicProfile
}

// GrantedDocument is one row of the "shared with me" view: the document plus
// the grant and the granting owner's public profile.
type GrantedDocument struct {
	Document   Document
	ShareID    string
	Permission string
	SharedBy   PublicProfile
	SharedAt   time.Time
}

type ShareLink struct {
	ID           string
	DocumentID   string
	TokenHash    string
	PasswordHash string
	ExpiresAt    *time.Time
	CreatedBy    string
	CreatedAt    time.Time
}

// RevisionInfo describes one commit in a document's git mirror.
type RevisionInfo struct {
	Hash      string
	Author    string
	Message   string
	CreatedAt time.Time
}
