package core

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/barcodegen/internal/config"
)

var errFakeRender = errors.New("fake render failure")

// fakeRenderer records payloads and returns a small PNG; payloads listed in
// fail produce errFakeRender.
type fakeRenderer struct {
	mu       sync.Mutex
	fail     map[string]bool
	payloads []string
}

func (f *fakeRenderer) Render(format Format, payload string, opts RenderOptions) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, string(format)+":"+payload)
	if f.fail[payload] {
		return nil, errFakeRender
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 14))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *fakeRenderer) rendered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{PublicDir: t.TempDir(), BarcodeDir: "barcodes"},
		Upload:  config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second},
	}
}

func newTestService(t *testing.T, r Renderer) *Service {
	t.Helper()
	svc, err := NewService(testConfig(t), r)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

// xlsx builds a workbook whose first sheet holds values in column A.
func xlsx(t *testing.T, values ...any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
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
