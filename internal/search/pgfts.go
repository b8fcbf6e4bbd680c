package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across documents and templates using
// plainto_tsquery and ts_rank, with ts_headline for snippets. Document hits
// are restricted in SQL to what the querying user owns or has been granted.
func (p *PgFTS) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultDocument {
		docWhere := fmt.Sprintf(
			"d.fts @@ %s AND (d.owner_id = $%d OR EXISTS (SELECT 1 FROM shared_documents sd WHERE sd.document_id = d.id AND sd.grantee_id = $%d))",
			tsQuery, argN, argN)
		args = append(args, q.UserID)
		argN++
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'document'::text AS type, d.id, d.title,
				ts_headline('english', coalesce(d.content, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				d.doc_type AS extra,
				ts_rank(d.fts, %s) AS rank
			FROM documents d
			WHERE %s`, tsQuery, tsQuery, docWhere))
	}

	if q.FilterType == "" || q.FilterType == ResultTemplate {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'template'::text AS type, t.id, t.title,
				ts_headline('english', coalesce(t.content, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				t.category AS extra,
				ts_rank(t.fts, %s) AS rank
			FROM templates t
			WHERE t.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, extra
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ, extra string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &extra); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		switch r.Type {
		case ResultDocument:
			r.DocType = extra
		case ResultTemplate:
			r.Category = extra
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]DocumentRecord, []TemplateRecord, error) {
	docRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, content, doc_type
		FROM documents
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load documents: %w", err)
	}
	defer docRows.Close()

	documents := make([]DocumentRecord, 0)
	for docRows.Next() {
		var d DocumentRecord
		if err := docRows.Scan(&d.ID, &d.Title, &d.Content, &d.DocType); err != nil {
			return nil, nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, d)
	}
	if err := docRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate documents: %w", err)
	}

	templateRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, content, category
		FROM templates
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load templates: %w", err)
	}
	defer templateRows.Close()

	templates := make([]TemplateRecord, 0)
	for templateRows.Next() {
		var t TemplateRecord
		if err := templateRows.Scan(&t.ID, &t.Title, &t.Content, &t.Category); err != nil {
			return nil, nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := templateRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate templates: %w", err)
	}

	return documents, templates, nil
}
