package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/barcodegen/internal/logging"
)

// ClearResult reports what a Clear removed.
type ClearResult struct {
	Format       Format
	Codes        int
	FilesRemoved int
}

// Clear empties the registry list of format and deletes its rendered
// images. Clearing an empty format succeeds. When an image cannot be
// removed the list stays empty and the partial result is returned with
// the error.
func (s *Service) Clear(ctx context.Context, format string) (*ClearResult, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	// Registry first: a listed code must never point at a removed image.
	result := &ClearResult{Format: f, Codes: s.registry.Clear(f)}

	removed, err := removeImages(s.generator.Dir, f)
	result.FilesRemoved = removed
	if err != nil {
		return result, fmt.Errorf("clear %s: %w", f, err)
	}

	logging.FromContext(ctx).Info("format cleared",
		"format", f,
		"codes", result.Codes,
		"files_removed", result.FilesRemoved,
	)
	return result, nil
}

// removeImages deletes files in dir carrying the image prefix of format.
// A missing dir holds nothing to remove.
func removeImages(dir string, format Format) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}

	prefix := ImagePrefix(format)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		err := os.Remove(filepath.Join(dir, e.Name()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
