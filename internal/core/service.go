package core

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/JonMunkholm/barcodegen/internal/config"
)

// Service provides the barcode import, export and clear operations.
// It owns the code registry for the lifetime of the process.
type Service struct {
	cfg       *config.Config
	publicDir string
	registry  *Registry
	generator *Generator
	limiter   *JobLimiter
}

// NewService creates a Service storing images and exports under the
// configured public directory.
func NewService(cfg *config.Config, renderer Renderer) (*Service, error) {
	publicDir, err := filepath.Abs(cfg.Storage.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("resolve public dir: %w", err)
	}
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return nil, fmt.Errorf("create public dir: %w", err)
	}

	imageDir := filepath.Join(publicDir, filepath.FromSlash(cfg.Storage.BarcodeDir))

	return &Service{
		cfg:       cfg,
		publicDir: publicDir,
		registry:  NewRegistry(),
		generator: NewGenerator(imageDir, renderer),
		limiter:   NewJobLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}, nil
}

// Registry exposes the code registry owned by the service.
func (s *Service) Registry() *Registry { return s.registry }

// PublicDir is the absolute directory served as static content.
func (s *Service) PublicDir() string { return s.publicDir }

// ImageDir is the absolute directory holding rendered barcodes.
func (s *Service) ImageDir() string { return s.generator.Dir }

// ImageURL is the public URL of a rendered payload.
func (s *Service) ImageURL(format Format, payload string) string {
	return path.Join("/", s.cfg.Storage.BarcodeDir, ImageName(format, payload))
}

// GalleryItem is one registered code as shown on the home page.
type GalleryItem struct {
	Code     Code
	Payload  string
	URL      string
	FileName string
}

// Gallery lists the registered codes of one format.
type Gallery struct {
	Format Format
	Items  []GalleryItem
}

// Galleries builds the home page listing for every format from the
// registry and the file naming scheme. File existence is not checked.
func (s *Service) Galleries() []Gallery {
	out := make([]Gallery, 0, len(formats))
	for _, f := range formats {
		codes := s.registry.Snapshot(f)
		g := Gallery{Format: f, Items: make([]GalleryItem, 0, len(codes))}
		for _, c := range codes {
			payload, err := Payload(c, f)
			if err != nil {
				payload = c.String()
			}
			name := ImageName(f, payload)
			g.Items = append(g.Items, GalleryItem{
				Code:     c,
				Payload:  payload,
				URL:      s.ImageURL(f, payload),
				FileName: name,
			})
		}
		out = append(out, g)
	}
	return out
}

// LimiterStatus reports how many import/export jobs are running.
func (s *Service) LimiterStatus() JobLimiterStatus {
	return s.limiter.Status()
}

// WaitForJobs blocks until running jobs finish or ctx is done.
func (s *Service) WaitForJobs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// DroppedCode is a code left out of a batch because it could not be rendered.
type DroppedCode struct {
	Format Format
	Code   Code
	Reason string
}

func dropped(err error, format Format, code Code) DroppedCode {
	return DroppedCode{Format: format, Code: code, Reason: err.Error()}
}
