// Package sheet reads code lists from uploaded workbooks and writes the
// export workbook with embedded barcode images.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG for DecodeConfig
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoWorksheet is returned when a workbook contains no sheet.
var ErrNoWorksheet = errors.New("worksheet not found")

// ReadFirstColumn returns the first-column text of every non-empty row of
// the first worksheet, in row order. Cell values are raw, so numbers come
// back without their display format applied.
func ReadFirstColumn(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(cols) == 0 {
			continue
		}
		v := strings.TrimSpace(cols[0])
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return values, nil
}

// Layout of the export workbook.
const (
	SheetName   = "Dados"
	HeaderCode  = "Código"
	HeaderImage = "Imagem"

	ImageWidth  = 200
	ImageHeight = 70
	RowHeight   = 70

	codeColWidth  = 20
	imageColWidth = 40

	// numFmtText is the built-in "@" (text) number format.
	numFmtText = 49
)

// Writer builds the export workbook one row at a time.
type Writer struct {
	f    *excelize.File
	rows int
}

// NewWriter creates a workbook with the header row and column layout in place.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtText})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create text style: %w", err)
	}

	steps := []func() error{
		func() error { return f.SetColWidth(SheetName, "A", "A", codeColWidth) },
		func() error { return f.SetColWidth(SheetName, "B", "B", imageColWidth) },
		func() error { return f.SetColStyle(SheetName, "A", textStyle) },
		func() error { return f.SetCellStr(SheetName, "A1", HeaderCode) },
		func() error { return f.SetCellStr(SheetName, "B1", HeaderImage) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("prepare sheet: %w", err)
		}
	}

	return &Writer{f: f}, nil
}

// AddRow appends code as a text cell and anchors png next to it, scaled to
// ImageWidth x ImageHeight.
func (w *Writer) AddRow(code string, png []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decode image: empty %dx%d raster", cfg.Width, cfg.Height)
	}

	row := w.rows + 2 // row 1 is the header
	codeCell, _ := excelize.CoordinatesToCellName(1, row)
	imageCell, _ := excelize.CoordinatesToCellName(2, row)

	if err := w.f.SetCellStr(SheetName, codeCell, code); err != nil {
		return fmt.Errorf("set code cell: %w", err)
	}

	pic := &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format: &excelize.GraphicOptions{
			AltText: "Código " + code,
			ScaleX:  float64(ImageWidth) / float64(cfg.Width),
			ScaleY:  float64(ImageHeight) / float64(cfg.Height),
		},
	}
	// The picture anchor is computed from the current row height.
	if err := w.f.SetRowHeight(SheetName, row, RowHeight); err != nil {
		return fmt.Errorf("set row height: %w", err)
	}
	if err := w.f.AddPictureFromBytes(SheetName, imageCell, pic); err != nil {
		return fmt.Errorf("add picture: %w", err)
	}

	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int { return w.rows }

// SaveAs writes the workbook to path, replacing any existing file.
func (w *Writer) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook's resources.
func (w *Writer) Close() error {
	return w.f.Close()
}
