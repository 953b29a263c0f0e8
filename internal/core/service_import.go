package core

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/barcodegen/internal/logging"
	"github.com/JonMunkholm/barcodegen/internal/sheet"
)

// ImportResult summarises one spreadsheet import.
type ImportResult struct {
	ID       string
	Format   Format
	Imported []Code
	Skipped  int // rows whose first cell is not a number
	Dropped  []DroppedCode
}

// Import reads the first column of the first worksheet in data, renders
// every numeric value in format and appends the rendered codes to the
// registry in row order. Non-numeric rows are skipped and codes that fail
// to render are dropped; neither aborts the batch.
func (s *Service) Import(ctx context.Context, format string, data []byte) (*ImportResult, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	values, err := sheet.ReadFirstColumn(data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f, err)
	}

	result := &ImportResult{ID: uuid.NewString(), Format: f}
	logger := logging.WithFields(ctx, "import_id", result.ID, "format", f)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	logger.Info("import started", "rows", len(values))

	for _, v := range values {
		code, ok := CoerceCode(v)
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := s.generator.Generate(ctx, code, f); err != nil {
			result.Dropped = append(result.Dropped, dropped(err, f, code))
			continue
		}
		result.Imported = append(result.Imported, code)
	}

	s.registry.Append(f, result.Imported...)

	logger.Info("import finished",
		"imported", len(result.Imported),
		"skipped", result.Skipped,
		"dropped", len(result.Dropped),
	)
	return result, nil
}

// CoerceCode converts spreadsheet text to a Code. Integers parse directly;
// other numeric text must be a finite, whole float in int64 range.
func CoerceCode(s string) (Code, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Code(n), true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return Code(int64(v)), true
}
