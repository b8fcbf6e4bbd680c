package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
// Meilisearch hits for documents are narrowed through the authorizer so a user
// never sees a document they neither own nor were granted.
type Service struct {
	meili *Meili
	pgfts *PgFTS
	authz Authorizer
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS, authz Authorizer) *Service {
	return &Service{meili: meili, pgfts: pgfts, authz: authz}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(ctx, q)
		if err == nil {
			filtered, dropped, ferr := s.filterDocumentHits(ctx, q.UserID, results)
			if ferr == nil {
				return Response{Results: nonNil(filtered), Total: estimateTotal(total, dropped, q.Offset, len(filtered)), Query: q.Text}
			}
			log.Printf("search: authz filter error, falling back to pgfts: %v", ferr)
		} else {
			log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
		}
	}

	results, total, err := s.pgfts.Search(ctx, q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// filterDocumentHits drops document results the user cannot read. Template
// results pass through untouched.
func (s *Service) filterDocumentHits(ctx context.Context, userID string, results []Result) ([]Result, int, error) {
	var candidateIDs []string
	for _, r := range results {
		if r.Type == ResultDocument {
			candidateIDs = append(candidateIDs, r.ID)
		}
	}
	if len(candidateIDs) == 0 {
		return results, 0, nil
	}

	readable, err := s.authz.FilterReadableDocumentIDs(ctx, userID, candidateIDs)
	if err != nil {
		return nil, 0, err
	}
	allowed := make(map[string]bool, len(readable))
	for _, id := range readable {
		allowed[id] = true
	}

	filtered := make([]Result, 0, len(results))
	dropped := 0
	for _, r := range results {
		if r.Type == ResultDocument && !allowed[r.ID] {
			dropped++
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, dropped, nil
}

// IndexDocument indexes a document (fire-and-forget to Meilisearch).
func (s *Service) IndexDocument(doc DocumentRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexDocument(doc); err != nil {
			log.Printf("search: index document %s: %v", doc.ID, err)
		}
	}()
}

// IndexTemplate indexes a template (fire-and-forget to Meilisearch).
func (s *Service) IndexTemplate(t TemplateRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTemplate(t); err != nil {
			log.Printf("search: index template %s: %v", t.ID, err)
		}
	}()
}

// DeleteDocument removes a document from the search index (fire-and-forget).
func (s *Service) DeleteDocument(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteDocument(id); err != nil {
			log.Printf("search: delete document %s: %v", id, err)
		}
	}()
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into Meilisearch.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	documents, templates, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if err := s.meili.IndexDocuments(documents); err != nil {
		log.Printf("search: reindex documents: %v", err)
	}
	if err := s.meili.IndexTemplates(templates); err != nil {
		log.Printf("search: reindex templates: %v", err)
	}
}

// estimateTotal adjusts Meilisearch's corpus-wide count for the hits dropped
// from the current page. Unreadable documents beyond this page are invisible
// here, so the value remains an estimate; it is clamped so it never
// understates what the page itself returned.
func estimateTotal(total, dropped, offset, pageLen int) int {
	estimated := total - dropped
	if floor := offset + pageLen; estimated < floor {
		estimated = floor
	}
	if estimated < 0 {
		estimated = 0
	}
	return estimated
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
