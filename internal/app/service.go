package app

import (
	"context"
	"strings"
	"time"

	"lexidraft/api/internal/auth"
	"lexidraft/api/internal/config"
	"lexidraft/api/internal/export"
	"lexidraft/api/internal/genai"
	"lexidraft/api/internal/gitrepo"
	"lexidraft/api/internal/search"
	"lexidraft/api/internal/store"
	"lexidraft/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	ExternalID   string
	UserName     string
	Email        string
	JTI          string
	ExpiresAt    time.Time
}

// IdentityProfile is the shape the identity gateway hands us on session
// exchange. The primary address is referenced by id, not given inline.
type IdentityProfile struct {
	ExternalID     string          `json:"externalId"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Emails         []IdentityEmail `json:"emails"`
	PrimaryEmailID string          `json:"primaryEmailId"`
}

type IdentityEmail struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type dataStore interface {
	SyncUser(ctx context.Context, id, externalID, displayName, email string) (store.User, error)
	GetUserByID(context.Context, string) (store.User, error)
	GetUserByExternalID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)

	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	InsertDocument(ctx context.Context, item store.Document, tags []string) (store.Document, error)
	GetDocument(context.Context, string) (store.Document, error)
	ListDocumentsByOwner(context.Context, string) ([]store.Document, error)
	UpdateDocumentContent(ctx context.Context, documentID, title, content string) (store.DocumentVersion, error)
	SetDocumentTags(ctx context.Context, documentID string, tags []string) ([]string, error)
	DeleteDocument(context.Context, string) error
	ListVersions(context.Context, string) ([]store.DocumentVersion, error)
	GetVersion(ctx context.Context, documentID, versionID string) (store.DocumentVersion, error)

	UpsertShare(context.Context, store.SharedDocument) (store.SharedDocument, error)
	GetShareForUser(ctx context.Context, documentID, granteeID string) (*store.SharedDocument, error)
	GetShareByID(context.Context, string) (store.SharedDocument, error)
	DeleteShare(context.Context, string) error
	ListSharesByDocument(context.Context, string) ([]store.ShareListing, error)
	ListGrantedToUser(context.Context, string) ([]store.GrantedDocument, error)
	InsertShareLink(context.Context, store.ShareLink) (store.ShareLink, error)
	GetShareLinkByTokenHash(context.Context, string) (store.ShareLink, error)

	InsertTemplate(ctx context.Context, item store.Template, tags []string) (store.Template, error)
	GetTemplate(context.Context, string) (store.Template, error)
	ReadTemplateForUse(context.Context, string) (store.Template, error)
	UpdateTemplate(ctx context.Context, templateID, title, content, category string) (store.Template, error)
	ListTemplates(context.Context, string) ([]store.Template, error)

	Ping(ctx context.Context) error
}

// sessionStore is satisfied by both the Redis store and the Postgres
// fallback. Lookup may return a partial user; callers re-fetch by id.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type gitService interface {
	EnsureDocumentRepo(string, gitrepo.Content, string) error
	CommitContent(string, gitrepo.Content, string, string) (store.RevisionInfo, error)
	History(string, int) ([]store.RevisionInfo, error)
	GetContentByHash(string, string) (gitrepo.Content, error)
}

type searchService interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexDocument(doc search.DocumentRecord)
	IndexTemplate(t search.TemplateRecord)
	DeleteDocument(id string)
}

type exporter interface {
	Export(doc export.Document, format export.Format) (*export.Result, error)
}

type notifier interface {
	IsConfigured() bool
	SendShareNotification(to, granteeName, ownerName, documentTitle, permission, documentURL string) error
	SendShareLink(to, ownerName, documentTitle, linkURL string, hasPassword bool, expiresAt string) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	git      gitService
	search   searchService
	export   exporter
	email    notifier
	genai    genai.Generator
}

// Dependencies carries everything the service needs; optional members
// (search, email, genai, git) may be nil and the matching features degrade.
type Dependencies struct {
	Store    dataStore
	Sessions sessionStore
	Git      gitService
	Search   searchService
	Export   exporter
	Email    notifier
	GenAI    genai.Generator
}

func New(cfg config.Config, deps Dependencies) *Service {
	return &Service{
		cfg:      cfg,
		store:    deps.Store,
		sessions: deps.Sessions,
		git:      deps.Git,
		search:   deps.Search,
		export:   deps.Export,
		email:    deps.Email,
		genai:    deps.GenAI,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PingSessions probes the refresh-session backend when it exposes a health
// check, so readiness reflects Redis when Redis is the active store. The
// Postgres fallback answers through the same database the main check covers.
func (s *Service) PingSessions(ctx context.Context) error {
	if p, ok := s.sessions.(interface{ Ping(ctx context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Service) GatewayToken() string {
	return s.cfg.GatewayToken
}

// SyncIdentity applies the upsert contract: resolve the primary email from
// the profile's address list, then write external id, display name, and
// email through in a single statement. Repeat calls with the same payload
// change nothing.
func (s *Service) SyncIdentity(ctx context.Context, profile IdentityProfile) (store.User, error) {
	externalID := strings.TrimSpace(profile.ExternalID)
	if externalID == "" {
		return store.User{}, errValidation("externalId is required")
	}

	email := ""
	for _, candidate := range profile.Emails {
		if candidate.ID == profile.PrimaryEmailID && strings.TrimSpace(candidate.Address) != "" {
			email = strings.TrimSpace(candidate.Address)
			break
		}
	}
	if email == "" {
		return store.User{}, errMissingEmail()
	}

	displayName := strings.TrimSpace(strings.TrimSpace(profile.FirstName) + " " + strings.TrimSpace(profile.LastName))

	user, err := s.store.SyncUser(ctx, util.NewID("usr"), externalID, displayName, email)
	if err != nil {
		return store.User{}, err
	}
	return user, nil
}

// ExchangeSession syncs the gateway profile and issues tokens for the
// resulting user. The HTTP layer has already checked the gateway token.
func (s *Service) ExchangeSession(ctx context.Context, profile IdentityProfile) (Session, error) {
	user, err := s.SyncIdentity(ctx, profile)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	partial, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, errUnauthenticated()
	}
	user, err := s.store.GetUserByID(ctx, partial.ID)
	if err != nil {
		return Session{}, errUnauthenticated()
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:        user.ID,
		ExternalID: user.ExternalID,
		Name:       user.DisplayName,
		Email:      user.Email,
		JTI:        jti,
		Exp:        expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		ExternalID:   user.ExternalID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:      token,
		UserID:     user.ID,
		ExternalID: user.ExternalID,
		UserName:   user.DisplayName,
		Email:      user.Email,
		JTI:        claims.JTI,
		ExpiresAt:  time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func userPayload(user store.User) map[string]any {
	return map[string]any{
		"id":          user.ID,
		"externalId":  user.ExternalID,
		"displayName": user.DisplayName,
		"email":       user.Email,
	}
}

func publicProfilePayload(profile store.PublicProfile) map[string]any {
	return map[string]any{
		"id":          profile.ID,
		"displayName": profile.DisplayName,
		"email":       profile.Email,
	}
}
