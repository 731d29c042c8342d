package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

// PageHeading is the top-level heading above all sensor sections.
const PageHeading = "All Sensors"

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded page templates. Call during startup before
// building the dashboard; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Section is one sensor block: a sub-heading and its rendered chart.
type Section struct {
	ID       int
	Name     string
	Readings int
	// Chart is the inline SVG; empty when the sensor has no readings.
	Chart template.HTML
}

type Page struct {
	Heading  string
	Sections []Section
}

// BuildPage stacks sections under the page heading in the given order.
func BuildPage(sections []Section) Page {
	out := make([]Section, len(sections))
	copy(out, sections)
	return Page{Heading: PageHeading, Sections: out}
}

func RenderPage(w io.Writer, page Page) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "dashboard.html", page)
}

// RenderSection executes only the section partial into w.
func RenderSection(w io.Writer, section Section) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "partials/section.html", section)
}
