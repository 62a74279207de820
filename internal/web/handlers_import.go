package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/staffdir/orgimport/internal/logging"
	"github.com/staffdir/orgimport/internal/orgimport"
)

// handleImport accepts a multipart CSV or XLSX upload and runs the import
// pipeline. Query/form parameters:
//
//	mode          - "merge" (default) or "replace"
//	skip_on_error - "true" to keep going past failing rows
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := s.limiter.Acquire(r.Context()); err != nil {
		if errors.Is(err, orgimport.ErrTooManyImports) {
			w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.Import.MaxWaitTime.Seconds())))
			respondError(w, r, http.StatusTooManyRequests, err)
			return
		}
		respondError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	defer s.limiter.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		respondBadRequest(w, "Unable to parse upload; check the file size and form encoding")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondBadRequest(w, "Missing \"file\" form field")
		return
	}
	defer file.Close()

	mode, err := orgimport.ParseMode(r.FormValue("mode"))
	if err != nil {
		respondBadRequest(w, "Unknown import mode; use \"merge\" or \"replace\"")
		return
	}
	opts := orgimport.Options{
		Mode:        mode,
		SkipOnError: r.FormValue("skip_on_error") == "true",
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	log.Info("import upload received",
		"filename", header.Filename,
		"size", header.Size,
		"mode", opts.Mode,
		"skip_on_error", opts.SkipOnError,
	)

	var result *orgimport.ImportResult
	if strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		result, err = s.importer.ImportXLSX(ctx, file, opts)
	} else {
		result, err = s.importer.ImportCSV(ctx, file, opts)
	}
	if err != nil {
		var parseErr *orgimport.ParseError
		if errors.As(err, &parseErr) {
			respondError(w, r, http.StatusBadRequest, err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
