package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/JonMunkholm/barcodegen/internal/logging"
	"github.com/JonMunkholm/barcodegen/internal/sheet"
)

// ExportResult describes a written export workbook.
type ExportResult struct {
	Path     string
	Filename string
	Rows     int
	Dropped  []DroppedCode
}

// Export writes the registered codes of scope to dados_<scope>.xlsx in the
// public directory. Every image is rendered again; codes that fail to
// render get no row.
func (s *Service) Export(ctx context.Context, scope string) (*ExportResult, error) {
	sc, err := ParseExportScope(scope)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	entries := s.registry.Concat(sc.Formats()...)
	logger := logging.WithFields(ctx, "scope", sc.Name())
	logger.Info("export started", "codes", len(entries))

	w, err := sheet.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", sc.Name(), err)
	}
	defer w.Close()

	result := &ExportResult{
		Filename: ExportName(sc),
		Path:     filepath.Join(s.publicDir, ExportName(sc)),
	}

	for _, e := range entries {
		img, err := s.generator.GenerateImage(ctx, e.Code, e.Format)
		if err != nil {
			result.Dropped = append(result.Dropped, dropped(err, e.Format, e.Code))
			continue
		}
		if err := w.AddRow(e.Code.String(), img.PNG); err != nil {
			return nil, fmt.Errorf("export %s: code %s: %w", sc.Name(), e.Code, err)
		}
	}

	if err := w.SaveAs(result.Path); err != nil {
		return nil, fmt.Errorf("export %s: %w", sc.Name(), err)
	}
	result.Rows = w.Rows()

	logger.Info("export finished",
		"rows", result.Rows,
		"dropped", len(result.Dropped),
		"path", result.Path,
	)
	return result, nil
}
