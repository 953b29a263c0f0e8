// Package render draws barcode symbols as PNG rasters with a human-readable
// line of text centred under the bars.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/JonMunkholm/barcodegen/internal/core"
)

// gs1GTIN is the GS1 application identifier prefixed to EAN-14 payloads.
const gs1GTIN = "01"

// pointsPerMM converts the bar height option, given in millimetres, to points.
const pointsPerMM = 72.0 / 25.4

// textGap is the space between bars and text, in points.
const textGap = 2

// Renderer renders the symbologies behind each core.Format.
type Renderer struct {
	face font.Face
}

// New returns a Renderer using the built-in 7x13 bitmap face for text.
func New() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Render encodes payload and returns the PNG bytes of the laid-out image.
func (r *Renderer) Render(format core.Format, payload string, opts core.RenderOptions) ([]byte, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %d", opts.Scale)
	}

	bc, text, err := encode(format, payload)
	if err != nil {
		return nil, err
	}

	img, err := r.layout(bc, text, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// encode builds the symbol for format and the text printed beneath it.
// EAN-13 payloads carry their own check digit, which the encoder verifies.
// EAN-14 is drawn as GS1-128 with the (01) identifier.
func encode(format core.Format, payload string) (barcode.Barcode, string, error) {
	switch format {
	case core.FormatCode128:
		bc, err := code128.Encode(payload)
		if err != nil {
			return nil, "", fmt.Errorf("code128: %w", err)
		}
		return bc, payload, nil

	case core.FormatEAN13:
		bc, err := ean.Encode(payload)
		if err != nil {
			return nil, "", fmt.Errorf("ean13: %w", err)
		}
		return bc, payload, nil

	case core.FormatEAN14:
		bc, err := code128.Encode(string(code128.FNC1) + gs1GTIN + payload)
		if err != nil {
			return nil, "", fmt.Errorf("ean14: %w", err)
		}
		return bc, "(" + gs1GTIN + ")" + payload, nil
	}
	return nil, "", fmt.Errorf("unsupported format %q", format)
}

func (r *Renderer) layout(bc barcode.Barcode, text string, opts core.RenderOptions) (image.Image, error) {
	scale := opts.Scale
	barW := bc.Bounds().Dx() * scale
	barH := int(float64(opts.BarHeight)*pointsPerMM+0.5) * scale
	if barW == 0 || barH <= 0 {
		return nil, fmt.Errorf("empty symbol %dx%d", barW, barH)
	}

	bars, err := barcode.Scale(bc, barW, barH)
	if err != nil {
		return nil, fmt.Errorf("scale symbol: %w", err)
	}

	var label *image.Gray
	if opts.IncludeText && text != "" {
		label = r.drawText(text)
	}

	contentW, contentH := barW, barH
	if label != nil {
		if w := label.Bounds().Dx() * scale; w > contentW {
			contentW = w
		}
		contentH += textGap*scale + label.Bounds().Dy()*scale
	}

	padX, padY := opts.PaddingWidth*scale, opts.PaddingHeight*scale
	canvas := image.NewGray(image.Rect(0, 0, contentW+2*padX, contentH+2*padY))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	barRect := image.Rect(0, 0, barW, barH).Add(image.Pt(padX+(contentW-barW)/2, padY))
	draw.Draw(canvas, barRect, bars, bars.Bounds().Min, draw.Src)

	if label != nil {
		w, h := label.Bounds().Dx()*scale, label.Bounds().Dy()*scale
		textRect := image.Rect(0, 0, w, h).Add(image.Pt(padX+(contentW-w)/2, padY+barH+textGap*scale))
		xdraw.NearestNeighbor.Scale(canvas, textRect, label, label.Bounds(), xdraw.Src, nil)
	}

	return canvas, nil
}

// drawText renders text at 1x on a white background.
func (r *Renderer) drawText(text string) *image.Gray {
	m := r.face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	width := font.MeasureString(r.face, text).Ceil()

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)
	return img
}
