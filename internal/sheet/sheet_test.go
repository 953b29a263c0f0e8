package sheet

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx whose first sheet holds rows in column A.
func workbook(t *testing.T, rows ...any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, v := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if v == nil {
			continue
		}
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 2 {
		img.Set(x, 0, color.White)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestReadFirstColumn(t *testing.T) {
	data := workbook(t, "Código", 100, "abc", nil, 200, " 300 ", 12345678901234)

	got, err := ReadFirstColumn(data)
	if err != nil {
		t.Fatalf("ReadFirstColumn() error = %v", err)
	}

	want := []string{"Código", "100", "abc", "200", "300", "12345678901234"}
	if len(got) != len(want) {
		t.Fatalf("ReadFirstColumn() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadFirstColumn_OnlyFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 1)
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Other", "A1", 2)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	got, err := ReadFirstColumn(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadFirstColumn() error = %v", err)
	}
	if len(got) != 1 || got[0] != "1" {
		t.Errorf("ReadFirstColumn() = %q, want [1]", got)
	}
}

func TestReadFirstColumn_NotAWorkbook(t *testing.T) {
	_, err := ReadFirstColumn([]byte("codigo\n123\n"))
	if err == nil {
		t.Fatal("ReadFirstColumn() expected error for CSV input")
	}
	if errors.Is(err, ErrNoWorksheet) {
		t.Errorf("parse failure should not be ErrNoWorksheet: %v", err)
	}
}

func TestWriter(t *testing.T) {
	w, err := NewWriter()
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	for _, code := range []string{"123", "456"} {
		if err := w.AddRow(code, testPNG(t, 400, 140)); err != nil {
			t.Fatalf("AddRow(%s) error = %v", code, err)
		}
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != HeaderCode || rows[0][1] != HeaderImage {
		t.Errorf("header = %q, want [%s %s]", rows[0], HeaderCode, HeaderImage)
	}

	for i, code := range []string{"123", "456"} {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		typ, err := f.GetCellType(SheetName, cell)
		if err != nil {
			t.Fatalf("GetCellType(%s): %v", cell, err)
		}
		if typ == excelize.CellTypeNumber {
			t.Errorf("%s stored as number, want text", cell)
		}
		if v, _ := f.GetCellValue(SheetName, cell); v != code {
			t.Errorf("%s = %q, want %q", cell, v, code)
		}

		imgCell, _ := excelize.CoordinatesToCellName(2, row)
		pics, err := f.GetPictures(SheetName, imgCell)
		if err != nil {
			t.Fatalf("GetPictures(%s): %v", imgCell, err)
		}
		if len(pics) != 1 {
			t.Errorf("%s has %d pictures, want 1", imgCell, len(pics))
		}

		h, err := f.GetRowHeight(SheetName, row)
		if err != nil {
			t.Fatalf("GetRowHeight(%d): %v", row, err)
		}
		if h != RowHeight {
			t.Errorf("row %d height = %v, want %d", row, h, RowHeight)
		}
	}
}

func TestWriter_RejectsNonImage(t *testing.T) {
	w, err := NewWriter()
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	if err := w.AddRow("1", []byte("not a png")); err == nil {
		t.Error("AddRow() expected error for invalid image")
	}
	if w.Rows() != 0 {
		t.Errorf("Rows() = %d, want 0", w.Rows())
	}
}

// drawingAnchors lists the from/to rows of every picture anchor in the
// saved workbook's first drawing part.
type drawingAnchors struct {
	Anchors []struct {
		From struct {
			Row int `xml:"row"`
		} `xml:"from"`
		To struct {
			Row int `xml:"row"`
		} `xml:"to"`
	} `xml:"twoCellAnchor"`
}

func readAnchors(t *testing.T, path string) drawingAnchors {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("zip.OpenReader: %v", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "xl/drawings/drawing") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}

		var d drawingAnchors
		if err := xml.Unmarshal(data, &d); err != nil {
			t.Fatalf("parse %s: %v", f.Name, err)
		}
		return d
	}
	t.Fatal("workbook has no drawing part")
	return drawingAnchors{}
}

func TestWriter_PicturesStayInTheirRow(t *testing.T) {
	w, err := NewWriter()
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	for _, code := range []string{"1", "2", "3"} {
		if err := w.AddRow(code, testPNG(t, 400, 140)); err != nil {
			t.Fatalf("AddRow(%s) error = %v", code, err)
		}
	}

	path := filepath.Join(t.TempDir(), "anchors.xlsx")
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	d := readAnchors(t, path)
	if len(d.Anchors) != 3 {
		t.Fatalf("got %d anchors, want 3", len(d.Anchors))
	}
	for i, a := range d.Anchors {
		// Anchor rows are zero-based; data starts below the header.
		if a.From.Row != i+1 {
			t.Errorf("picture %d anchored from row %d, want %d", i, a.From.Row, i+1)
		}
		if a.To.Row != a.From.Row {
			t.Errorf("picture %d spans rows %d to %d, want a single row", i, a.From.Row, a.To.Row)
		}
	}
}
