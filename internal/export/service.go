package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"blueprint/api/internal/blueprint"
)

// Raster is the external collaborator that turns rendered HTML into bytes.
// The chromedp Rasterizer implements it; tests substitute a fake.
type Raster interface {
	PNG(ctx context.Context, html string) ([]byte, error)
	PDF(ctx context.Context, html string) ([]byte, error)
}

// Service produces export artifacts from blueprint documents.
type Service struct {
	raster Raster
}

// NewService creates an export service around a rasterizer.
func NewService(raster Raster) *Service {
	return &Service{raster: raster}
}

// Export generates the requested format from the given document.
func (s *Service) Export(ctx context.Context, doc *blueprint.Blueprint, format Format) (*Result, error) {
	base := sanitizeFilename(documentName(doc))
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode blueprint: %w", err)
		}
		return &Result{Data: data, Filename: base + ".json", MimeType: "application/json"}, nil
	case FormatPNG:
		html, err := RenderGridHTML(doc)
		if err != nil {
			return nil, fmt.Errorf("render grid: %w", err)
		}
		data, err := s.raster.PNG(ctx, html)
		if err != nil {
			return nil, err
		}
		return &Result{Data: data, Filename: base + ".png", MimeType: "image/png"}, nil
	case FormatPDF:
		html, err := RenderGridHTML(doc)
		if err != nil {
			return nil, fmt.Errorf("render grid: %w", err)
		}
		data, err := s.raster.PDF(ctx, html)
		if err != nil {
			return nil, err
		}
		return &Result{Data: data, Filename: base + ".pdf", MimeType: "application/pdf"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func documentName(doc *blueprint.Blueprint) string {
	if doc == nil || strings.TrimSpace(doc.Meta.Name) == "" {
		return "blueprint"
	}
	return doc.Meta.Name
}
