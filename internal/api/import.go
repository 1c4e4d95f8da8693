package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/lesa/internal/apperr"
	"github.com/starford/lesa/internal/docservice"
)

const maxImportBytes = 10 << 20 // 10 MB

// ImportHandler accepts markdown files uploaded as multipart form data and
// adds them to the library through the document service.
type ImportHandler struct {
	svc *docservice.Service
}

// NewImportHandler creates an import handler backed by the given service.
func NewImportHandler(svc *docservice.Service) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// safeName validates that the filename is a plain markdown file name
// (no path separators, no traversal).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !strings.HasSuffix(strings.ToLower(cleaned), ".md") {
		return "", fmt.Errorf("only .md files can be imported")
	}
	return cleaned, nil
}

// Import handles POST /api/import (multipart/form-data, field "file").
//
//	@Summary		Import a markdown file into the library
//	@Tags			import
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Markdown file"
//	@Success		201		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(content) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("file is empty"))
		return
	}

	doc, err := h.svc.CreateDocument(r.Context(), name, content)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("document already exists"))
		} else {
			slog.Error("import failed", slog.String("filename", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, ImportResponse{
		Filename: name,
		Size:     int64(len(content)),
		Document: doc,
	})
}
