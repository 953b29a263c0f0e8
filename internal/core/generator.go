package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/barcodegen/internal/logging"
)

// RenderOptions describes the raster a Renderer should produce.
// Lengths are in the renderer's base units (points, millimetres for bar height)
// before Scale is applied.
type RenderOptions struct {
	Scale         int
	BarHeight     int
	PaddingWidth  int
	PaddingHeight int
	IncludeText   bool
}

// DefaultRenderOptions is the layout used for every generated image.
var DefaultRenderOptions = RenderOptions{
	Scale:         3,
	BarHeight:     10,
	PaddingWidth:  20,
	PaddingHeight: 10,
	IncludeText:   true,
}

// Renderer turns a validated payload into PNG bytes.
type Renderer interface {
	Render(format Format, payload string, opts RenderOptions) ([]byte, error)
}

// Generator renders codes to deterministic image files under Dir.
type Generator struct {
	Dir      string
	Renderer Renderer
	Options  RenderOptions
}

// NewGenerator returns a Generator writing to dir with DefaultRenderOptions.
func NewGenerator(dir string, r Renderer) *Generator {
	return &Generator{Dir: dir, Renderer: r, Options: DefaultRenderOptions}
}

// Path returns where the image of payload is stored.
func (g *Generator) Path(format Format, payload string) string {
	return filepath.Join(g.Dir, ImageName(format, payload))
}

// Generate renders code in format and writes the image, overwriting any
// previous render of the same payload. Failures are returned as
// *GenerationError and leave no file behind.
func (g *Generator) Generate(ctx context.Context, code Code, format Format) (string, error) {
	img, err := g.GenerateImage(ctx, code, format)
	if err != nil {
		return "", err
	}
	return img.Path, nil
}

// Image is a rendered barcode and where it was written.
type Image struct {
	Path string
	PNG  []byte
}

// GenerateImage is Generate, also returning the rendered bytes.
func (g *Generator) GenerateImage(ctx context.Context, code Code, format Format) (*Image, error) {
	logger := logging.WithFields(ctx, "format", format, "code", code.String())

	payload, err := Payload(code, format)
	if err != nil {
		return nil, g.fail(ctx, &GenerationError{Format: format, Code: code, Err: err})
	}

	logger.Debug("rendering barcode", "payload", payload)
	png, err := g.Renderer.Render(format, payload, g.Options)
	if err != nil {
		return nil, g.fail(ctx, &GenerationError{Format: format, Code: code, Payload: payload, Err: fmt.Errorf("render: %w", err)})
	}

	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return nil, g.fail(ctx, &GenerationError{Format: format, Code: code, Payload: payload, Err: fmt.Errorf("create image dir: %w", err)})
	}

	path := g.Path(format, payload)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		os.Remove(path)
		return nil, g.fail(ctx, &GenerationError{Format: format, Code: code, Payload: payload, Err: fmt.Errorf("write image: %w", err)})
	}

	logger.Debug("barcode saved", "path", path)
	return &Image{Path: path, PNG: png}, nil
}

func (g *Generator) fail(ctx context.Context, err *GenerationError) error {
	logging.FromContext(ctx).Warn("barcode generation failed",
		"format", err.Format,
		"code", err.Code.String(),
		"payload", err.Payload,
		"error", err.Err,
	)
	return err
}
