package search

import (
	"context"
	"testing"
)

type fakeAuthorizer struct {
	filterFn func(ctx context.Context, userID string, ids []string) ([]string, error)
}

func (f *fakeAuthorizer) FilterReadableDocumentIDs(ctx context.Context, userID string, ids []string) ([]string, error) {
	return f.filterFn(ctx, userID, ids)
}

func TestFilterDocumentHitsDropsUnreadableDocuments(t *testing.T) {
	authz := &fakeAuthorizer{
		filterFn: func(_ context.Context, _ string, ids []string) ([]string, error) {
			return []string{"doc_mine"}, nil
		},
	}
	svc := NewService(nil, nil, authz)

	results := []Result{
		{Type: ResultDocument, ID: "doc_mine", Title: "My NDA"},
		{Type: ResultDocument, ID: "doc_theirs", Title: "Someone else's lease"},
		{Type: ResultTemplate, ID: "tpl_1", Title: "Standard NDA"},
	}

	filtered, dropped, err := svc.filterDocumentHits(context.Background(), "usr_1", results)
	if err != nil {
		t.Fatalf("filterDocumentHits: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped hit, got %d", dropped)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 results, got %d", len(filtered))
	}
	for _, r := range filtered {
		if r.ID == "doc_theirs" {
			t.Fatal("unreadable document leaked through the filter")
		}
	}
}

func TestEstimateTotalStaysAnHonestFloor(t *testing.T) {
	cases := []struct {
		name                          string
		total, dropped, offset, page  int
		want                          int
	}{
		{name: "nothing dropped", total: 40, dropped: 0, offset: 0, page: 20, want: 40},
		{name: "dropped reduces estimate", total: 40, dropped: 3, offset: 0, page: 17, want: 37},
		{name: "never below returned page", total: 5, dropped: 4, offset: 0, page: 5, want: 5},
		{name: "deep page keeps offset floor", total: 25, dropped: 10, offset: 20, page: 5, want: 25},
		{name: "never negative", total: 1, dropped: 3, offset: 0, page: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := estimateTotal(tc.total, tc.dropped, tc.offset, tc.page); got != tc.want {
				t.Fatalf("estimateTotal(%d, %d, %d, %d) = %d, want %d",
					tc.total, tc.dropped, tc.offset, tc.page, got, tc.want)
			}
		})
	}
}

func TestFilterDocumentHitsLeavesTemplatesAlone(t *testing.T) {
	called := false
	authz := &fakeAuthorizer{
		filterFn: func(_ context.Context, _ string, ids []string) ([]string, error) {
			called = true
			return ids, nil
		},
	}
	svc := NewService(nil, nil, authz)

	results := []Result{
		{Type: ResultTemplate, ID: "tpl_1"},
		{Type: ResultTemplate, ID: "tpl_2"},
	}

	filtered, dropped, err := svc.filterDocumentHits(context.Background(), "usr_1", results)
	if err != nil {
		t.Fatalf("filterDocumentHits: %v", err)
	}
	if called {
		t.Fatal("authorizer should not be consulted when no document hits exist")
	}
	if dropped != 0 || len(filtered) != 2 {
		t.Fatalf("expected all template hits kept, got %d results %d dropped", len(filtered), dropped)
	}
}
