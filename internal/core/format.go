package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects the barcode symbology, the registry list and the payload width.
type Format string

const (
	FormatCode128 Format = "code128"
	FormatEAN13   Format = "ean13"
	FormatEAN14   Format = "ean14"
)

// formats is the canonical order used by the home page and by "all" exports.
var formats = []Format{FormatCode128, FormatEAN13, FormatEAN14}

// Formats returns every supported format in canonical order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat validates a user-supplied format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimSpace(s)); f {
	case FormatCode128, FormatEAN13, FormatEAN14:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Width is the fixed payload length, or 0 when the format is variable length.
func (f Format) Width() int {
	switch f {
	case FormatEAN13:
		return 13
	case FormatEAN14:
		return 14
	default:
		return 0
	}
}

// Label is the display name used in the UI.
func (f Format) Label() string {
	switch f {
	case FormatCode128:
		return "Code128"
	case FormatEAN13:
		return "EAN13"
	case FormatEAN14:
		return "EAN14"
	default:
		return string(f)
	}
}

func (f Format) String() string { return string(f) }

// ScopeAll exports every registry, concatenated in canonical format order.
const ScopeAll = "all"

// scopeBoth is the value the export form sends for ScopeAll.
const scopeBoth = "both"

// ExportScope is either a single Format or every format.
type ExportScope struct {
	name   string
	format Format
}

// ParseExportScope accepts a format, "all" or "both".
func ParseExportScope(s string) (ExportScope, error) {
	s = strings.TrimSpace(s)
	if s == ScopeAll || s == scopeBoth {
		return ExportScope{name: s}, nil
	}
	f, err := ParseFormat(s)
	if err != nil {
		return ExportScope{}, err
	}
	return ExportScope{name: string(f), format: f}, nil
}

// All reports whether the scope covers every format.
func (s ExportScope) All() bool { return s.format == "" }

// Formats returns the formats covered by the scope, in export order.
func (s ExportScope) Formats() []Format {
	if s.All() {
		return Formats()
	}
	return []Format{s.format}
}

// Name is the scope as requested; it names the exported file.
func (s ExportScope) Name() string { return s.name }

// Code is a numeric product identifier.
type Code int64

func (c Code) String() string { return strconv.FormatInt(int64(c), 10) }

// Payload returns the digit string encoded into the barcode for code.
// Fixed-width formats are left-padded with zeros and must end up exactly
// Width digits long.
func Payload(code Code, format Format) (string, error) {
	payload := code.String()
	if w := format.Width(); w > 0 && len(payload) < w {
		payload = strings.Repeat("0", w-len(payload)) + payload
	}

	if !isDigits(payload) {
		return "", fmt.Errorf("%w: %q", ErrPayloadDigits, payload)
	}
	if w := format.Width(); w > 0 && len(payload) != w {
		return "", fmt.Errorf("%w: %q has %d digits, %s needs %d", ErrPayloadLength, payload, len(payload), format, w)
	}
	return payload, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ImagePrefix is the filename prefix shared by every image of a format.
func ImagePrefix(format Format) string {
	return "barcode_" + string(format) + "_"
}

// ImageName is the deterministic file name of a rendered payload.
func ImageName(format Format, payload string) string {
	return ImagePrefix(format) + payload + ".png"
}

// ExportName is the file name of the spreadsheet written for scope.
func ExportName(scope ExportScope) string {
	return "dados_" + scope.Name() + ".xlsx"
}
