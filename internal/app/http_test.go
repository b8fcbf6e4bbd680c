package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lexidraft/api/internal/store"
)

func newTestServer(t *testing.T, fs *fakeStore) (*httptest.Server, *Service) {
	t.Helper()
	svc, _ := newTestService(fs)
	server := httptest.NewServer(NewHTTPServer(svc, "*").Handler())
	t.Cleanup(server.Close)
	return server, svc
}

func issueTestSession(t *testing.T, svc *Service) Session {
	t.Helper()
	session, err := svc.ExchangeSession(context.Background(), IdentityProfile{
		ExternalID:     "ext-1",
		FirstName:      "Dana",
		LastName:       "Reyes",
		Emails:         []IdentityEmail{{ID: "em_1", Address: "dana@example.com"}},
		PrimaryEmailID: "em_1",
	})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return session
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func syncingStore(t *testing.T) *fakeStore {
	user := store.User{ID: "usr_dana", ExternalID: "ext-1", DisplayName: "Dana Reyes", Email: "dana@example.com"}
	return &fakeStore{
		t: t,
		syncUserFn: func(ctx context.Context, id, externalID, displayName, email string) (store.User, error) {
			return user, nil
		},
		getUserByIDFn: func(ctx context.Context, id string) (store.User, error) {
			return user, nil
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{t: t})
	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["ok"] != true {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

type unreachableSessions struct {
	*fakeSessions
}

func (u *unreachableSessions) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestReadyReportsSessionStoreOutage(t *testing.T) {
	svc := New(testConfig(), Dependencies{
		Store:    &fakeStore{t: t},
		Sessions: &unreachableSessions{fakeSessions: newFakeSessions()},
	})
	server := httptest.NewServer(NewHTTPServer(svc, "*").Handler())
	t.Cleanup(server.Close)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/ready", "", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the session store is down, got %d", resp.StatusCode)
	}
	checks, ok := payload["checks"].(map[string]any)
	if !ok {
		t.Fatalf("expected checks in payload, got %v", payload)
	}
	sessions, ok := checks["sessions"].(map[string]any)
	if !ok || sessions["status"] != "error" {
		t.Fatalf("expected sessions check to report the outage, got %v", checks)
	}
	database, ok := checks["database"].(map[string]any)
	if !ok || database["status"] != "ok" {
		t.Fatalf("expected database check to stay ok, got %v", checks)
	}
}

func TestReadyPassesWithoutProbeableSessionStore(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{t: t})
	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/ready", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["status"] != "ready" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestDocumentsRequireSession(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{t: t})
	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/documents", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if payload["code"] != "UNAUTHORIZED" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestSessionExchangeRequiresGatewayToken(t *testing.T) {
	server, _ := newTestServer(t, syncingStore(t))

	body := `{"externalId":"ext-1","firstName":"Dana","lastName":"Reyes","emails":[{"id":"em_1","address":"dana@example.com"}],"primaryEmailId":"em_1"}`

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/session/exchange", "", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without gateway token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/session/exchange", strings.NewReader(body))
	req.Header.Set("x-lexidraft-gateway-token", "test-gateway-token")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with gateway token, got %d", resp2.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["token"] == "" || payload["refreshToken"] == "" {
		t.Fatalf("expected issued tokens, got %v", payload)
	}
}

func TestSessionEndpointReportsUnauthenticated(t *testing.T) {
	server, _ := newTestServer(t, &fakeStore{t: t})
	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/session", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["authenticated"] != false {
		t.Fatalf("expected authenticated false, got %v", payload)
	}
}

func TestGetDocumentForbiddenVersusMissing(t *testing.T) {
	fs := syncingStore(t)
	fs.getDocumentFn = func(ctx context.Context, id string) (store.Document, error) {
		if id == "doc_1" {
			return store.Document{ID: "doc_1", OwnerID: "usr_other", Title: "Lease"}, nil
		}
		return store.Document{}, sql.ErrNoRows
	}
	fs.getShareForUserFn = func(ctx context.Context, documentID, granteeID string) (*store.SharedDocument, error) {
		return nil, nil
	}
	server, svc := newTestServer(t, fs)
	session := issueTestSession(t, svc)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/documents/doc_1", session.Token, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for unshared document, got %d", resp.StatusCode)
	}
	if payload["code"] != "NOT_SHARED" {
		t.Fatalf("unexpected code: %v", payload)
	}

	resp, payload = doJSON(t, http.MethodGet, server.URL+"/api/documents/doc_missing", session.Token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing document, got %d", resp.StatusCode)
	}
	if payload["code"] != "DOCUMENT_NOT_FOUND" {
		t.Fatalf("unexpected code: %v", payload)
	}
}

func TestSharedWithMeRouteAndShape(t *testing.T) {
	fs := syncingStore(t)
	fs.listGrantedToUserFn = func(ctx context.Context, userID string) ([]store.GrantedDocument, error) {
		return []store.GrantedDocument{{
			Document:   store.Document{ID: "doc_9", OwnerID: "usr_other", Title: "Lease"},
			ShareID:    "shr_1",
			Permission: "read",
			SharedBy:   store.PublicProfile{ID: "usr_other", DisplayName: "Sam Okafor", Email: "sam@example.com"},
		}}, nil
	}
	server, svc := newTestServer(t, fs)
	session := issueTestSession(t, svc)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/documents/shared", session.Token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	documents, ok := payload["documents"].([]any)
	if !ok || len(documents) != 1 {
		t.Fatalf("expected one shared document, got %v", payload)
	}
	entry := documents[0].(map[string]any)
	if entry["shareId"] != "shr_1" || entry["permission"] != "read" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	sharedBy, ok := entry["sharedBy"].(map[string]any)
	if !ok || sharedBy["displayName"] != "Sam Okafor" {
		t.Fatalf("expected owner public profile, got %v", entry["sharedBy"])
	}
}

func TestVersionRoutesOwnerOnly(t *testing.T) {
	fs := syncingStore(t)
	fs.getDocumentFn = func(ctx context.Context, id string) (store.Document, error) {
		return store.Document{ID: id, OwnerID: "usr_other"}, nil
	}
	server, svc := newTestServer(t, fs)
	session := issueTestSession(t, svc)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/documents/doc_1/versions", session.Token, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if payload["code"] != "NOT_OWNER" {
		t.Fatalf("unexpected code: %v", payload)
	}
}

func TestTemplateReadCountsUsage(t *testing.T) {
	usage := 0
	fs := syncingStore(t)
	fs.readTemplateForUseFn = func(ctx context.Context, id string) (store.Template, error) {
		usage++
		return store.Template{ID: id, Title: "Mutual NDA", UsageCount: usage}, nil
	}
	server, svc := newTestServer(t, fs)
	session := issueTestSession(t, svc)

	_, first := doJSON(t, http.MethodGet, server.URL+"/api/templates/tpl_1", session.Token, "")
	_, second := doJSON(t, http.MethodGet, server.URL+"/api/templates/tpl_1", session.Token, "")
	if first["usageCount"] != float64(1) || second["usageCount"] != float64(2) {
		t.Fatalf("expected usage to count reads, got %v then %v", first["usageCount"], second["usageCount"])
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	server, svc := newTestServer(t, syncingStore(t))
	session := issueTestSession(t, svc)

	resp, payload := doJSON(t, http.MethodPost, server.URL+"/api/documents/doc_1/export", session.Token, `{"format":"rtf"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code: %v", payload)
	}
}

func TestPublicShareLinkRouteIsOpen(t *testing.T) {
	fs := syncingStore(t)
	fs.getShareLinkByTokenHashFn = func(ctx context.Context, tokenHash string) (store.ShareLink, error) {
		return store.ShareLink{ID: "lnk_1", DocumentID: "doc_1"}, nil
	}
	fs.getDocumentFn = func(ctx context.Context, id string) (store.Document, error) {
		return store.Document{ID: id, OwnerID: "usr_other", Title: "Lease", Content: "Terms."}, nil
	}
	server, _ := newTestServer(t, fs)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/share/slt_abc", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 without a session, got %d", resp.StatusCode)
	}
	if payload["title"] != "Lease" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, exposed := payload["ownerId"]; exposed {
		t.Fatal("public view must not expose the owner id")
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	server, svc := newTestServer(t, syncingStore(t))
	session := issueTestSession(t, svc)

	resp, payload := doJSON(t, http.MethodGet, server.URL+"/api/nope", session.Token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if payload["code"] != "NOT_FOUND" {
		t.Fatalf("unexpected code: %v", payload)
	}
}
