package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"lexidraft/api/internal/search"
	"lexidraft/api/internal/store"
	"lexidraft/api/internal/util"
)

func (s *Service) CreateTemplate(ctx context.Context, session Session, title, content, category string, tags []string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errValidation("title is required")
	}

	item, err := s.store.InsertTemplate(ctx, store.Template{
		ID:       util.NewID("tpl"),
		Title:    title,
		Content:  content,
		Category: strings.TrimSpace(category),
	}, tags)
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexTemplate(search.TemplateRecord{
			ID:       item.ID,
			Title:    item.Title,
			Content:  item.Content,
			Category: item.Category,
		})
	}

	return templatePayload(item), nil
}

// UseTemplate reads a template and counts the read. The counter bump is a
// single SQL statement, so concurrent readers cannot lose increments.
func (s *Service) UseTemplate(ctx context.Context, templateID string) (map[string]any, error) {
	item, err := s.store.ReadTemplateForUse(ctx, templateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTemplateNotFound()
	}
	if err != nil {
		return nil, err
	}
	return templatePayload(item), nil
}

func (s *Service) UpdateTemplate(ctx context.Context, templateID, title, content, category string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errValidation("title is required")
	}

	item, err := s.store.UpdateTemplate(ctx, templateID, title, content, strings.TrimSpace(category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTemplateNotFound()
	}
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		s.search.IndexTemplate(search.TemplateRecord{
			ID:       item.ID,
			Title:    item.Title,
			Content:  item.Content,
			Category: item.Category,
		})
	}

	return templatePayload(item), nil
}

func (s *Service) ListTemplates(ctx context.Context, category string) ([]map[string]any, error) {
	templates, err := s.store.ListTemplates(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(templates))
	for _, item := range templates {
		items = append(items, templatePayload(item))
	}
	return items, nil
}

func templatePayload(item store.Template) map[string]any {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":         item.ID,
		"title":      item.Title,
		"content":    item.Content,
		"category":   item.Category,
		"usageCount": item.UsageCount,
		"tags":       tags,
		"createdAt":  item.CreatedAt,
		"updatedAt":  item.UpdatedAt,
	}
}
