// Package export turns a blueprint into its exchange formats: the JSON wire
// document, and PNG/PDF captures of the rendered grid view.
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// Source selects which document state to export.
type Source string

const (
	SourceDraft     Source = "draft"
	SourceCommitted Source = "committed"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrRasterDependencyMissing indicates the headless Chrome runtime is unavailable.
	ErrRasterDependencyMissing = errors.New("export raster dependency missing")
	// ErrUnsupportedFormat indicates an unknown export format was requested.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// sanitizeFilename creates a safe filename from a document name
func sanitizeFilename(name string) string {
	result := ""
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		default:
			// Skip other characters
		}
	}

	if len(result) > 50 {
		result = result[:50]
	}

	if result == "" {
		result = "blueprint"
	}

	return result
}
