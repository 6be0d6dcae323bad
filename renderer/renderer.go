// Package renderer renders sync reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

//go:embed *.md
var templates embed.FS

// Currency of the utility bills.
const Currency = money.USD

// RenderSync renders the report of a sync run to a markdown string.
func RenderSync(r *SyncReport) string {
	partials := map[string]string{
		"sync_title":    "sync_title.md",
		"sync_counts":   "sync_counts.md",
		"sync_accounts": "sync_accounts.md",
	}
	return renderTemplate("sync", "sync.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

var funcs = template.FuncMap{
	"cell": cell,
}

// Money formats an amount in the bill currency, rounded to the cent.
func Money(amount decimal.Decimal) string {
	cur := money.GetCurrency(Currency)
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, Currency).Display()
}

// cell escapes text for a markdown table cell. Empty text is rendered as "-".
func cell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
