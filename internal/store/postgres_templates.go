package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) InsertTemplate(ctx context.Context, item Template, tags []string) (Template, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Template{}, fmt.Errorf("begin insert template tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO templates (id, title, content, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, content, category, usage_count, created_at, updated_at
	`, item.ID, item.Title, item.Content, item.Category).Scan(
		&item.ID, &item.Title, &item.Content, &item.Category, &item.UsageCount, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Template{}, fmt.Errorf("insert template: %w", err)
	}

	attached, err := attachTags(ctx, tx, "template_tags", "template_id", item.ID, tags)
	if err != nil {
		return Template{}, err
	}
	item.Tags = attached

	if err := tx.Commit(); err != nil {
		return Template{}, fmt.Errorf("commit insert template: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, templateID string) (Template, error) {
	var item Template
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, category, usage_count, created_at, updated_at
		FROM templates
		WHERE id=$1
	`, templateID).Scan(&item.ID, &item.Title, &item.Content, &item.Category, &item.UsageCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Template{}, err
	}
	tags, err := s.listEntityTags(ctx, "template_tags", "template_id", templateID)
	if err != nil {
		return Template{}, err
	}
	item.Tags = tags
	return item, nil
}

// ReadTemplateForUse fetches a template and bumps its usage counter in the
// same statement. The increment happens in SQL, never read-modify-write in
// application code, so concurrent reads cannot lose counts.
func (s *PostgresStore) ReadTemplateForUse(ctx context.Context, templateID string) (Template, error) {
	var item Template
	err := s.db.QueryRowContext(ctx, `
		UPDATE templates
		SET usage_count = usage_count + 1
		WHERE id=$1
		RETURNING id, title, content, category, usage_count, created_at, updated_at
	`, templateID).Scan(&item.ID, &item.Title, &item.Content, &item.Category, &item.UsageCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Template{}, err
	}
	tags, err := s.listEntityTags(ctx, "template_tags", "template_id", templateID)
	if err != nil {
		return Template{}, err
	}
	item.Tags = tags
	return item, nil
}

func (s *PostgresStore) UpdateTemplate(ctx context.Context, templateID, title, content, category string) (Template, error) {
	var item Template
	err := s.db.QueryRowContext(ctx, `
		UPDATE templates
		SET title=$2, content=$3, category=$4, updated_at=NOW()
		WHERE id=$1
		RETURNING id, title, content, category, usage_count, created_at, updated_at
	`, templateID, title, content, category).Scan(
		&item.ID, &item.Title, &item.Content, &item.Category, &item.UsageCount, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Template{}, err
	}
	tags, err := s.listEntityTags(ctx, "template_tags", "template_id", templateID)
	if err != nil {
		return Template{}, err
	}
	item.Tags = tags
	return item, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context, category string) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, usage_count, created_at, updated_at
		FROM templates
		WHERE ($1='' OR category=$1)
		ORDER BY usage_count DESC, title ASC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	items := make([]Template, 0)
	for rows.Next() {
		var item Template
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.Category, &item.UsageCount, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return items, nil
}
