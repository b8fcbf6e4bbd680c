package search

import "context"

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument ResultType = "document"
	ResultTemplate ResultType = "template"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	DocType  string     `json:"docType,omitempty"`
	Category string     `json:"category,omitempty"`
}

// Query describes a search request. UserID scopes document hits to what the
// caller owns or has been granted; templates are visible to everyone.
type Query struct {
	Text       string
	UserID     string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexDocument(doc DocumentRecord) error
	IndexTemplate(t TemplateRecord) error
	DeleteDocument(id string) error
}

// Authorizer narrows a candidate set of document IDs to those a user may read.
type Authorizer interface {
	FilterReadableDocumentIDs(ctx context.Context, userID string, ids []string) ([]string, error)
}

// DocumentRecord is the data we index for a document.
type DocumentRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	DocType string `json:"docType"`
}

// TemplateRecord is the data we index for a template.
type TemplateRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}
