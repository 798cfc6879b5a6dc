package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/KaramelBytes/adbudget-cli/internal/report"
	"github.com/KaramelBytes/adbudget-cli/internal/table"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const headerWarnings = "X-Adbudget-Warnings"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommend accepts a multipart upload in field "file" and returns the
// recommendations as CSV (default), JSON or XLSX. Optional form values:
// format, skip_rows, sheet.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		respondError(w, http.StatusBadRequest, "expected multipart form with a 'file' field")
		return
	}

	format := report.FormatCSV
	if v := r.FormValue("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil || f == report.FormatMarkdown {
			respondError(w, http.StatusBadRequest, "format must be csv, json or xlsx")
			return
		}
		format = f
	}

	topt := s.cfg.Table
	if v := r.FormValue("skip_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "skip_rows must be a non-negative integer")
			return
		}
		topt.SkipRows = n
	}
	if v := r.FormValue("sheet"); v != "" {
		topt.Sheet = v
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	log := s.log.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"file":       hdr.Filename,
	})

	raw, err := table.Read(hdr.Filename, file, topt)
	if err != nil {
		switch {
		case errors.Is(err, table.ErrUnsupported):
			respondError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, table.ErrEmpty):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			respondError(w, http.StatusBadRequest, fmt.Sprintf("read table: %v", err))
		}
		log.WithError(err).Warn("unreadable upload")
		return
	}

	res, err := advisor.Run(raw, s.cfg.Advisor)
	if err != nil {
		var se *advisor.SchemaError
		if errors.As(err, &se) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": se.Error(), "missing": se.Missing})
		} else {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		}
		log.WithError(err).Warn("input rejected")
		return
	}
	for _, msg := range res.Diagnostics.Warnings {
		log.Warn(msg)
	}
	log.WithFields(logrus.Fields{
		"rows":      len(res.Rows),
		"dropped":   res.Diagnostics.Dropped,
		"benchmark": res.Benchmark.Source,
	}).Info("recommendations computed")

	rep := report.New(hdr.Filename, res, s.cfg.Advisor.Extended, s.cfg.Advisor.Glyphs)
	if len(res.Diagnostics.Warnings) > 0 {
		w.Header().Set(headerWarnings, strings.Join(res.Diagnostics.Warnings, " "))
	}
	switch format {
	case report.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case report.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", attachment(strings.TrimSuffix(report.DefaultFilename, ".csv")+".xlsx"))
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(report.DefaultFilename))
	}
	w.WriteHeader(http.StatusOK)
	if err := rep.Write(w, format); err != nil {
		log.WithError(err).Error("write response")
	}
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
