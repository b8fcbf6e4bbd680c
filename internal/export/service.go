package export

import (
	"fmt"
	"html/template"
)

// Service provides document export functionality
type Service struct{}

// NewService creates a new export service
func NewService() *Service {
	return &Service{}
}

// Export renders the document and generates output in the requested format.
// Authorization happens before this point; the service only formats.
func (s *Service) Export(doc Document, format Format) (*Result, error) {
	data := TemplateData{
		Title:       doc.Title,
		DocType:     doc.DocType,
		ContentHTML: template.HTML(ContentToHTML(doc.Content)),
		Author:      doc.Author,
		Tags:        doc.Tags,
		UpdatedAt:   doc.UpdatedAt,
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch format {
	case FormatPDF:
		return exportPDF(html, doc.Title)
	case FormatDOCX:
		return exportDOCX(html, doc.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
