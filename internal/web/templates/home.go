// Package templates renders the HTML pages of the barcode UI.
package templates

import "github.com/JonMunkholm/barcodegen/internal/core"

// HomeParams is everything the home page shows.
type HomeParams struct {
	Galleries       []core.Gallery
	ShowImportError bool
	Cleared         bool
}

// Option is one entry of a <select>.
type Option struct {
	Value string
	Label string
}

// ImportOptions lists the formats offered by the import form.
func ImportOptions() []Option {
	var opts []Option
	for _, f := range core.Formats() {
		opts = append(opts, Option{Value: f.String(), Label: "Importar " + f.Label()})
	}
	return opts
}

// ExportOptions lists the scopes offered by the export form.
func ExportOptions() []Option {
	var opts []Option
	for _, f := range core.Formats() {
		opts = append(opts, Option{Value: f.String(), Label: "Exportar " + f.Label()})
	}
	return append(opts, Option{Value: "both", Label: "Exportar Todos"})
}
