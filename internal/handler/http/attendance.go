package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/handler/http/response"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/validator"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/workbook"
)

type AttendanceHandler interface {
	Refresh(w http.ResponseWriter, r *http.Request)
	Snapshot(w http.ResponseWriter, r *http.Request)
	Records(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Yesterday(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Options(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
	Shifts(w http.ResponseWriter, r *http.Request)
	Logs(w http.ResponseWriter, r *http.Request)
	RawData(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportLocale      string
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reportLocale string) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		reportLocale:      reportLocale,
		now:               time.Now,
	}
}

// parseRecordQuery reads the shared filter parameters. Format checks happen
// in RecordQuery.Validate; only refresh is parsed here.
func parseRecordQuery(r *http.Request) (attendance.RecordQuery, error) {
	q := r.URL.Query()

	query := attendance.RecordQuery{
		Filter: attendance.Filter{
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
			SiteID:    q.Get("site_id"),
			StaffID:   q.Get("staff_id"),
		},
		Mode: q.Get("mode"),
		Date: q.Get("date"),
	}

	if raw := q.Get("refresh"); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			return attendance.RecordQuery{}, validator.ValidationErrors{{
				Field:   "refresh",
				Message: "refresh must be true or false",
			}}
		}
		query.Refresh = refresh
	}

	return query, nil
}

// Refresh implements AttendanceHandler.
func (h *attendanceHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	info, err := h.attendanceService.Refresh(r.Context())
	if err != nil {
		slog.Error("Snapshot refresh failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Snapshot refreshed", info)
}

// Snapshot implements AttendanceHandler.
func (h *attendanceHandlerImpl) Snapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.attendanceService.Snapshot(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, info)
}

// Records implements AttendanceHandler.
func (h *attendanceHandlerImpl) Records(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Records(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		TotalItems: result.TotalCount,
		SnapshotID: result.SnapshotID,
		Mode:       result.Mode,
	})
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Summary(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	h.day(w, r, attendance.DayToday)
}

// Yesterday implements AttendanceHandler.
func (h *attendanceHandlerImpl) Yesterday(w http.ResponseWriter, r *http.Request) {
	h.day(w, r, attendance.DayYesterday)
}

func (h *attendanceHandlerImpl) day(w http.ResponseWriter, r *http.Request, day attendance.Day) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	view, err := h.attendanceService.Day(r.Context(), day, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

// Export implements AttendanceHandler. The workbook is rendered into memory
// first so a failure can still be reported as JSON.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.Records(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Records already refreshed if asked to.
	query.Refresh = false
	summary, err := h.attendanceService.Summary(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	report := workbook.Report{
		Records:     records.Records,
		Summary:     summary,
		Locale:      h.reportLocale,
		GeneratedAt: h.now(),
	}

	var buf bytes.Buffer
	if err := workbook.WriteReport(&buf, report); err != nil {
		slog.Error("Failed to render attendance report", "error", err)
		response.InternalServerError(w, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", workbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write attendance report", "error", err)
	}
}

// Dashboard implements AttendanceHandler.
func (h *attendanceHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Dashboard(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Options implements AttendanceHandler.
func (h *attendanceHandlerImpl) Options(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Options(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Employees implements AttendanceHandler.
func (h *attendanceHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Employees(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// Shifts implements AttendanceHandler.
func (h *attendanceHandlerImpl) Shifts(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Shifts(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// Logs implements AttendanceHandler.
func (h *attendanceHandlerImpl) Logs(w http.ResponseWriter, r *http.Request) {
	query, err := parseRecordQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Logs(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// RawData implements AttendanceHandler. It passes the upstream tables
// through without the response envelope.
func (h *attendanceHandlerImpl) RawData(w http.ResponseWriter, r *http.Request) {
	payload, err := h.attendanceService.RawPayload(r.Context())
	if err != nil {
		slog.Error("Raw data fetch failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, payload)
}
