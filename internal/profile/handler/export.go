package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"shareregistry/internal/profile/models"
	"shareregistry/pkg/requestcontext"
)

const csvContentType = "text/csv; charset=utf-8"

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	row, err := h.service.Export(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to export profile", err)
		return
	}
	name := row.PANNumber
	if name == "" {
		name = row.ProfileID
	}
	h.writeCSV(w, r, "client_profile_"+sanitizeFilename(name)+".csv", []models.ExportRow{row})
}

func (h *Handler) HandleExportAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.ExportAll(ctx, models.ParseListQuery(r.URL.Query().Get))
	if err != nil {
		h.fail(ctx, w, "failed to export profiles", err)
		return
	}
	day := requestcontext.Now(ctx).UTC().Format("2006-01-02")
	h.writeCSV(w, r, "all_client_profiles_"+day+".csv", rows)
}

// WriteCSV renders rows with the fixed export header. Cells are passed
// through neutralizeCell since the file is meant to be opened in a spreadsheet.
func WriteCSV(w *csv.Writer, rows []models.ExportRow) error {
	if err := w.Write(models.ExportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		values := row.Values()
		for i, v := range values {
			values[i] = neutralizeCell(v)
		}
		if err := w.Write(values); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, rows []models.ExportRow) {
	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if err := WriteCSV(csv.NewWriter(w), rows); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write csv export", "error", err)
	}
}

// neutralizeCell prefixes a quote to cells a spreadsheet would evaluate as a
// formula, so they open as text.
func neutralizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
