package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/barcodegen/internal/sheet"
)

func codesEqual(a, b []Code) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// exportedRows opens an export and returns its data-row codes, checking
// each row carries one picture.
func exportedRows(t *testing.T, path string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(%s): %v", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet.SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) == 0 || rows[0][0] != sheet.HeaderCode {
		t.Fatalf("missing header row: %q", rows)
	}

	var codes []string
	for i, row := range rows[1:] {
		codes = append(codes, row[0])
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		pics, err := f.GetPictures(sheet.SheetName, cell)
		if err != nil {
			t.Fatalf("GetPictures(%s): %v", cell, err)
		}
		if len(pics) != 1 {
			t.Errorf("row %d has %d pictures, want 1", i+2, len(pics))
		}
	}
	return codes
}

func TestImport_SkipsNonNumericRows(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})

	res, err := svc.Import(context.Background(), "code128", xlsx(t, 100, "abc", 200))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	want := []Code{100, 200}
	if got := svc.Registry().Snapshot(FormatCode128); !codesEqual(got, want) {
		t.Errorf("registry = %v, want %v", got, want)
	}
	if !codesEqual(res.Imported, want) {
		t.Errorf("Imported = %v, want %v", res.Imported, want)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.ID == "" {
		t.Error("ImportResult.ID is empty")
	}
}

func TestImport_DropsFailedGenerations(t *testing.T) {
	r := &fakeRenderer{fail: map[string]bool{"0000000000007": true}}
	svc := newTestService(t, r)

	res, err := svc.Import(context.Background(), "ean13", xlsx(t, 42, 7, 12345678901234, 8))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	want := []Code{42, 8}
	if got := svc.Registry().Snapshot(FormatEAN13); !codesEqual(got, want) {
		t.Errorf("registry = %v, want %v", got, want)
	}
	if len(res.Dropped) != 2 {
		t.Fatalf("Dropped = %+v, want 2 entries", res.Dropped)
	}
	if res.Dropped[0].Code != 7 || res.Dropped[1].Code != 12345678901234 {
		t.Errorf("Dropped codes = %+v", res.Dropped)
	}

	for _, c := range want {
		payload, _ := Payload(c, FormatEAN13)
		if _, err := os.Stat(filepath.Join(svc.ImageDir(), ImageName(FormatEAN13, payload))); err != nil {
			t.Errorf("image for %d missing: %v", c, err)
		}
	}
}

func TestImport_ClientErrors(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	ctx := context.Background()

	if _, err := svc.Import(ctx, "xyz", xlsx(t, 1)); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("invalid format error = %v, want ErrInvalidFormat", err)
	}
	if _, err := svc.Import(ctx, "code128", nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("missing file error = %v, want ErrNoFile", err)
	}

	_, err := svc.Import(ctx, "code128", []byte("not a spreadsheet"))
	if err == nil || IsClientError(err) {
		t.Errorf("unparseable file error = %v, want unexpected error", err)
	}

	for f, n := range svc.Registry().Sizes() {
		if n != 0 {
			t.Errorf("registry %s has %d codes after failed imports", f, n)
		}
	}
}

func TestImportExport_RoundTrip(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	ctx := context.Background()

	if _, err := svc.Import(ctx, "code128", xlsx(t, 123, 456)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	res, err := svc.Export(ctx, "code128")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Filename != "dados_code128.xlsx" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.Path != filepath.Join(svc.PublicDir(), "dados_code128.xlsx") {
		t.Errorf("Path = %q", res.Path)
	}
	if res.Rows != 2 {
		t.Errorf("Rows = %d, want 2", res.Rows)
	}

	got := exportedRows(t, res.Path)
	if strings.Join(got, ",") != "123,456" {
		t.Errorf("exported codes = %q, want [123 456]", got)
	}
}

func TestExport_AllConcatenatesInFormatOrder(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	ctx := context.Background()

	svc.Registry().Append(FormatEAN14, 3)
	svc.Registry().Append(FormatEAN13, 2)
	svc.Registry().Append(FormatCode128, 1, 11)

	for _, scope := range []string{"both", "all"} {
		res, err := svc.Export(ctx, scope)
		if err != nil {
			t.Fatalf("Export(%s) error = %v", scope, err)
		}
		if got := exportedRows(t, res.Path); strings.Join(got, ",") != "1,11,2,3" {
			t.Errorf("Export(%s) codes = %q, want [1 11 2 3]", scope, got)
		}
	}
}

func TestExport_SkipsFailedGenerations(t *testing.T) {
	r := &fakeRenderer{}
	svc := newTestService(t, r)
	svc.Registry().Append(FormatCode128, 1, 2, 3)
	r.fail = map[string]bool{"2": true}

	res, err := svc.Export(context.Background(), "code128")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Code != 2 {
		t.Errorf("Dropped = %+v", res.Dropped)
	}
	if got := exportedRows(t, res.Path); strings.Join(got, ",") != "1,3" {
		t.Errorf("exported codes = %q, want [1 3]", got)
	}
}

func TestExport_EmptyRegistryWritesHeaderOnly(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})

	res, err := svc.Export(context.Background(), "ean14")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := exportedRows(t, res.Path); len(got) != 0 {
		t.Errorf("exported codes = %q, want none", got)
	}
}

func TestExport_InvalidScope(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	svc.Registry().Append(FormatCode128, 1)

	if _, err := svc.Export(context.Background(), "xyz"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Export(xyz) error = %v, want ErrInvalidFormat", err)
	}
	if svc.Registry().Len(FormatCode128) != 1 {
		t.Error("invalid export changed the registry")
	}
}

func TestClear_RemovesOnlyFormatImages(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	ctx := context.Background()

	if _, err := svc.Import(ctx, "ean13", xlsx(t, 1, 2)); err != nil {
		t.Fatalf("Import(ean13) error = %v", err)
	}
	if _, err := svc.Import(ctx, "ean14", xlsx(t, 1)); err != nil {
		t.Fatalf("Import(ean14) error = %v", err)
	}

	res, err := svc.Clear(ctx, "ean13")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if res.Codes != 2 || res.FilesRemoved != 2 {
		t.Errorf("ClearResult = %+v, want 2 codes, 2 files", res)
	}
	if svc.Registry().Len(FormatEAN13) != 0 {
		t.Error("ean13 registry not emptied")
	}
	if svc.Registry().Len(FormatEAN14) != 1 {
		t.Error("ean14 registry touched by ean13 clear")
	}

	entries, err := os.ReadDir(svc.ImageDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "barcode_ean14_") {
		t.Errorf("remaining images = %v, want only the ean14 image", entries)
	}
}

func TestClear_Idempotent(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	ctx := context.Background()
	svc.Registry().Append(FormatCode128, 9)

	for i := 0; i < 2; i++ {
		if _, err := svc.Clear(ctx, "code128"); err != nil {
			t.Fatalf("Clear() #%d error = %v", i+1, err)
		}
		if n := svc.Registry().Len(FormatCode128); n != 0 {
			t.Errorf("Clear() #%d left %d codes", i+1, n)
		}
	}
}

func TestClear_InvalidFormat(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	svc.Registry().Append(FormatEAN13, 5)

	if _, err := svc.Clear(context.Background(), "xyz"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Clear(xyz) error = %v, want ErrInvalidFormat", err)
	}
	if svc.Registry().Len(FormatEAN13) != 1 {
		t.Error("invalid clear changed the registry")
	}
}

func TestGalleries(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	svc.Registry().Append(FormatEAN13, 42)
	svc.Registry().Append(FormatCode128, 42)

	gs := svc.Galleries()
	if len(gs) != 3 {
		t.Fatalf("Galleries() returned %d formats, want 3", len(gs))
	}
	if gs[0].Format != FormatCode128 || gs[1].Format != FormatEAN13 || gs[2].Format != FormatEAN14 {
		t.Errorf("gallery order = %v %v %v", gs[0].Format, gs[1].Format, gs[2].Format)
	}

	if got := gs[0].Items[0].URL; got != "/barcodes/barcode_code128_42.png" {
		t.Errorf("code128 URL = %q", got)
	}
	if got := gs[1].Items[0].URL; got != "/barcodes/barcode_ean13_0000000000042.png" {
		t.Errorf("ean13 URL = %q", got)
	}
	if len(gs[2].Items) != 0 {
		t.Errorf("ean14 items = %v, want none", gs[2].Items)
	}
}

func TestClear_EmptiesRegistryWhenRemovalFails(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})
	svc.Registry().Append(FormatCode128, 1, 2)

	// A file where the image directory should be makes listing fail.
	if err := os.MkdirAll(filepath.Dir(svc.ImageDir()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(svc.ImageDir(), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Clear(context.Background(), "code128")
	if err == nil {
		t.Fatal("Clear() expected error when the image dir is unreadable")
	}
	if res == nil || res.Codes != 2 {
		t.Errorf("ClearResult = %+v, want 2 codes", res)
	}
	if n := svc.Registry().Len(FormatCode128); n != 0 {
		t.Errorf("registry kept %d codes after failed clear", n)
	}
}
