// Package handler: export.go implements GET /export.
// Returns every loop and waypoint on the device as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"loop_id", "loop_name", "start_at", "end_at", "approx_stay",
	"waypoint_order", "waypoint_name", "latitude", "longitude", "stay_hint",
}

// GetExport implements GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := optionalQuery(r, "format")
	if err != nil {
		badRequest(w, err)
		return
	}
	if format != "" && format != "csv" && format != "json" {
		badRequest(w, errUnknownFormat(format))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string {
	return "unsupported format " + strconv.Quote(string(e)) + ": use csv or json"
}

// writeCSV encodes domain rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(rowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="loops.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// rowToCSVRecord converts a domain.ExportRow to a CSV record.
// Timestamps are RFC 3339 in UTC; missing values become empty cells.
func rowToCSVRecord(r domain.ExportRow) []string {
	rec := []string{
		r.LoopID, r.LoopName, formatTime(r.StartAt), formatTime(r.EndAt), r.ApproxStay,
		"", r.WaypointLabel, "", "", r.StayHint,
	}
	if r.WaypointOrder > 0 {
		rec[5] = strconv.Itoa(r.WaypointOrder)
	}
	if r.Latitude != nil {
		rec[7] = strconv.FormatFloat(*r.Latitude, 'f', -1, 64)
	}
	if r.Longitude != nil {
		rec[8] = strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	}
	return rec
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
