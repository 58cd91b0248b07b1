package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"blueprint/api/internal/blueprint"
)

//go:embed templates/*.html
var templateFS embed.FS

var gridTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"categoryLabel": func(c blueprint.Category) string {
			switch c {
			case blueprint.CategoryFinancial:
				return "Financial"
			case blueprint.CategoryEnvironmental:
				return "Environmental"
			case blueprint.CategorySocial:
				return "Social"
			case blueprint.CategoryOtherNonFinancial:
				return "Other non-financial"
			default:
				return string(c)
			}
		},
	}

	content, err := templateFS.ReadFile("templates/blueprint.html")
	if err != nil {
		panic("export: missing embedded grid template: " + err.Error())
	}
	gridTemplate = template.Must(template.New("blueprint").Funcs(funcMap).Parse(string(content)))
}

// TemplateData holds data for grid template rendering
type TemplateData struct {
	Title      string
	NetworkVP  string
	Categories []blueprint.Category
	Grid       blueprint.Grid
}

// RenderGridHTML renders the read-only grid view of a document as HTML. The
// rendered page is what the rasterizer captures for PNG and PDF export.
func RenderGridHTML(doc *blueprint.Blueprint) (string, error) {
	grid := blueprint.BuildGrid(doc, false)
	title := doc.Meta.Name
	if strings.TrimSpace(title) == "" {
		title = "Value Network Blueprint"
	}
	data := TemplateData{
		Title:      title,
		NetworkVP:  grid.NetworkVP,
		Categories: blueprint.Categories,
		Grid:       grid,
	}
	var buf bytes.Buffer
	if err := gridTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
