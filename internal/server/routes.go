package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/pipeline"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/generate", s.handleGenerate)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error payload for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GenerateResponse is the response for a completed generation run.
type GenerateResponse struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Filename  string `json:"filename"`
	SavedPath string `json:"saved_path,omitempty"`
	Citations int    `json:"citations"`
	Fallback  bool   `json:"fallback"`
	LaTeX     string `json:"latex"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleGenerate accepts a multipart form with one or more research papers
// under "papers", a single format template under "template", and the
// target kind under "kind" ("report" or "slides"). Uploads are staged in a
// per-run directory that is removed when the request finishes.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind, err := doc.ParseKind(r.FormValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	papers := r.MultipartForm.File["papers"]
	if len(papers) == 0 {
		writeError(w, http.StatusBadRequest, "no research papers uploaded")
		return
	}
	templates := r.MultipartForm.File["template"]
	if len(templates) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one format template is required")
		return
	}
	for _, fh := range append(append([]*multipart.FileHeader{}, papers...), templates...) {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
			return
		}
	}

	uploadID := uuid.New().String()
	if err := s.home.EnsureRunUploadsDir(uploadID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create upload dir: %v", err))
		return
	}
	uploadDir := s.home.RunUploadsDir(uploadID)
	defer os.RemoveAll(uploadDir)

	// Destination names carry a role prefix so a paper and the template
	// (or two papers) sharing a filename never overwrite each other.
	paperPaths := make([]string, 0, len(papers))
	for i, fh := range papers {
		name := fmt.Sprintf("paper-%d-%s", i+1, filepath.Base(fh.Filename))
		path, err := saveUpload(fh, uploadDir, name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		paperPaths = append(paperPaths, path)
	}
	templatePath, err := saveUpload(templates[0], uploadDir, "template-"+filepath.Base(templates[0].Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := s.getPipeline().RunAndSave(r.Context(), pipeline.Request{
		PaperPaths:   paperPaths,
		TemplatePath: templatePath,
		Kind:         kind,
	})
	if err != nil {
		s.logger.Error("generation request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if res.Rendered.Empty() {
		writeError(w, http.StatusUnprocessableEntity, "generated document was empty")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		RunID:     res.RunID,
		Kind:      string(res.Rendered.Kind),
		Filename:  res.Rendered.Filename,
		SavedPath: res.SavedPath,
		Citations: len(res.Citations),
		Fallback:  res.Content.Fallback,
		LaTeX:     res.Rendered.LaTeX,
	})
}

func saveUpload(fh *multipart.FileHeader, dir, name string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(dir, name)
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return destPath, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
