package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/barcodegen/internal/core"
	"github.com/JonMunkholm/barcodegen/internal/logging"
	"github.com/JonMunkholm/barcodegen/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartMemory is how much of an upload is kept in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// handleHome renders the registry with the import, export and clear forms.
// The import error banner shows on every visit that does not come from a
// successful import.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := templates.HomeParams{
		Galleries:       s.service.Galleries(),
		ShowImportError: q.Get("importStatus") != "success",
		Cleared:         q.Get("clearStatus") == "success",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Home(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render home", "error", err)
	}
}

// handleImport accepts a multipart form with format and file fields.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}

	format := r.FormValue("format")
	if _, err := core.ParseFormat(format); err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Import(ctx, format, data); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/?importStatus=success", http.StatusFound)
}

// readUpload returns the bytes of the "file" form field.
func readUpload(r *http.Request) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, core.ErrNoFile
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, core.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// handleExport builds dados_<scope>.xlsx and sends it as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Export(ctx, r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	http.ServeFile(w, r, res.Path)
}

// handleClear removes one format's images and registry entries.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Clear(ctx, r.FormValue("format")); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/?clearStatus=success", http.StatusFound)
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string                `json:"status"`
	Codes  map[string]int        `json:"codes"`
	Jobs   core.JobLimiterStatus `json:"jobs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	codes := make(map[string]int)
	for f, n := range s.service.Registry().Sizes() {
		codes[f.String()] = n
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Codes:  codes,
		Jobs:   s.service.LimiterStatus(),
	})
}
