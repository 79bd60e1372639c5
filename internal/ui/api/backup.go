package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dailyworkspace/daybook/internal/backup"
	"github.com/dailyworkspace/daybook/internal/export"
	"github.com/dailyworkspace/daybook/internal/importer"
)

// exportBackup streams the full document as a download.
func (s *Server) exportBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := export.Export(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backup.Filename(s.now())))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = export.Encode(w, doc)
}

type importResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Stats   importer.Stats `json:"stats"`
}

// importBackup accepts the document as a multipart "file" upload or as the
// raw request body. ?replace=true overwrites existing days.
func (s *Server) importBackup(w http.ResponseWriter, r *http.Request) {
	replace := false
	if raw := r.URL.Query().Get("replace"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid replace flag", raw)
			return
		}
		replace = b
	}

	body, closeBody, err := uploadedDocument(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	defer closeBody()

	doc, err := backup.Parse(body, s.importMaxBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := importer.Import(r.Context(), s.store, doc, importer.Options{Replace: replace})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		Success: true,
		Message: "Data imported successfully",
		Stats:   res.Stats,
	})
}

var errNoFilePart = errors.New(`multipart upload has no "file" part`)

func uploadedDocument(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return r.Body, func() {}, nil
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, nil, errNoFilePart
		}
		if err != nil {
			return nil, nil, err
		}
		if part.FormName() == "file" {
			return part, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}
