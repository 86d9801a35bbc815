package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/handler/http/response"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/gas"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sse"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/workbook"
	"github.com/smc-analytics/attendance-dashboard/internal/repository/memory"
	attendanceService "github.com/smc-analytics/attendance-dashboard/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type handlerTestSource struct {
	err error
}

func (s *handlerTestSource) Fetch(ctx context.Context) (sheet.Payload, error) {
	if s.err != nil {
		return sheet.Payload{}, s.err
	}
	return sheet.Payload{
		Logs: []sheet.RawRow{
			sheet.Row("staffId", "name", "date", "time"),
			sheet.Row("S1", "Alice", "2024-03-22", "09:15", "", "", "", "", "", "", "A", "8"),
			sheet.Row("S2", "Bob", "2024-03-22", "08:50", "", "", "", "", "", "", "B", "8"),
			sheet.Row("S3", "Carol", "2024-03-21", "08:59", "", "", "", "", "", "", "A", "8"),
		},
		Employees: []sheet.RawRow{
			sheet.Row("lineId", "staffId", "name", "siteId", "roleType", "position"),
			sheet.Row("L1", "S1", "Alice", "A", "staff", "Operation Manager"),
			sheet.Row("L2", "S2", "Bob", "B", "staff", "Guard"),
			sheet.Row("L3", "S3", "Carol", "A", "staff", "Guard"),
		},
		Shifts: []sheet.RawRow{
			sheet.Row("shiftCode", "shiftName", "startTime", "endTime", "gracePeriod", "lateThreshold"),
			sheet.Row("SH1", "Morning", "09:00", "17:00", "5", ""),
		},
	}, nil
}

func newHandlerTestRouter(t *testing.T, src attendance.Source, jwtService jwt.Service) *chi.Mux {
	t.Helper()
	hub := sse.NewHub()
	svc := attendanceService.NewAttendanceService(src, memory.NewSnapshotStore(), attendanceService.Config{
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2024, 3, 22, 12, 0, 0, 0, time.UTC) },
		Publisher: hub,
	})
	handler := NewAttendanceHandler(svc, "en")
	return NewRouter(RouterConfig{
		AppName:          "attendance-dashboard-test",
		Env:              "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedPositions: []string{"Operation Manager", "General Manager"},
	}, jwtService, handler, NewEventsHandler(hub))
}

func doRequest(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	var raw struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestRecordsEndpoint(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/records?site_id=A", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []attendance.AttendanceRecord
	env := decodeEnvelope(t, rec, &records)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.TotalItems)
	assert.Equal(t, attendance.ModeLogs, env.Meta.Mode)
	assert.NotEmpty(t, env.Meta.SnapshotID)

	require.Len(t, records, 2)
	assert.Equal(t, "S3", records[0].StaffID)
	assert.Equal(t, attendance.StatusOnTime, records[0].Status)
	assert.Equal(t, "S1", records[1].StaffID)
	assert.Equal(t, attendance.StatusLate, records[1].Status)
}

func TestRecordsEndpoint_ValidationError(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/records?start_date=22-03-2024&refresh=maybe", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "refresh")

	rec = doRequest(router, http.MethodGet, "/api/v1/attendance/records?start_date=2024-03-23&end_date=2024-03-22", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env = decodeEnvelope(t, rec, nil)
	assert.Contains(t, env.Error.Details, "end_date")
}

func TestRosterEndpoint(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/records?mode=roster&site_id=A", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []attendance.AttendanceRecord
	decodeEnvelope(t, rec, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "S3", records[0].StaffID)
	assert.Equal(t, attendance.StatusAbsent, records[0].Status)
	assert.Equal(t, "S1", records[1].StaffID)
}

func TestSummaryEndpoint(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary attendance.SummaryResponse
	decodeEnvelope(t, rec, &summary)
	assert.Equal(t, 3, summary.Summary.Total)
	assert.Equal(t, 2, summary.Summary.OnTime)
	assert.Equal(t, 1, summary.Summary.Late)
	require.Len(t, summary.Sites, 2)
	assert.Equal(t, "A", summary.Sites[0].SiteID)
}

func TestDayEndpoints(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var today attendance.DayView
	decodeEnvelope(t, rec, &today)
	assert.Equal(t, "2024-03-22", today.Date)
	assert.Len(t, today.Records, 2)

	rec = doRequest(router, http.MethodGet, "/api/v1/attendance/yesterday", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var yesterday attendance.DayView
	decodeEnvelope(t, rec, &yesterday)
	assert.Equal(t, "2024-03-21", yesterday.Date)
	assert.Len(t, yesterday.Records, 1)
}

func TestDashboardAndOptionsEndpoints(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard attendance.DashboardResponse
	decodeEnvelope(t, rec, &dashboard)
	assert.Equal(t, 3, dashboard.Snapshot.Logs)
	assert.Equal(t, 3, dashboard.Summary.Total)
	assert.Len(t, dashboard.Today.Records, 2)

	rec = doRequest(router, http.MethodGet, "/api/v1/filters/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var options attendance.FilterOptions
	decodeEnvelope(t, rec, &options)
	assert.Equal(t, []string{"A", "B"}, options.Sites)
	assert.Len(t, options.Staff, 3)
}

func TestCollectionEndpoints(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	for path, want := range map[string]int{
		"/api/v1/employees":                3,
		"/api/v1/employees?site_id=B":      1,
		"/api/v1/shifts":                   1,
		"/api/v1/logs?staff_id=S1":         1,
		"/api/v1/logs?end_date=2024-03-21": 1,
	} {
		rec := doRequest(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		env := decodeEnvelope(t, rec, nil)
		require.NotNil(t, env.Meta, path)
		assert.Equal(t, want, env.Meta.TotalItems, path)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/snapshot", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, "DATA_NOT_LOADED", env.Error.Code)

	rec = doRequest(router, http.MethodPost, "/api/v1/snapshot/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info attendance.SnapshotInfo
	env = decodeEnvelope(t, rec, &info)
	assert.Equal(t, "Snapshot refreshed", env.Message)
	assert.Equal(t, 3, info.Logs)

	rec = doRequest(router, http.MethodGet, "/api/v1/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var current attendance.SnapshotInfo
	decodeEnvelope(t, rec, &current)
	assert.Equal(t, info.ID, current.ID)
}

func TestUpstreamErrors(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&gas.FetchError{StatusCode: 500, Body: "boom"}, http.StatusBadGateway, "GAS_FETCH_ERROR"},
		{gas.ErrInvalidJSON, http.StatusBadGateway, "INVALID_JSON"},
		{&sheet.MissingTableError{Table: "logs"}, http.StatusBadGateway, "MALFORMED_PAYLOAD"},
		{attendance.ErrSourceUnavailable, http.StatusServiceUnavailable, "CONNECTION_ERROR"},
	}

	for _, c := range cases {
		router := newHandlerTestRouter(t, &handlerTestSource{err: c.err}, nil)

		rec := doRequest(router, http.MethodGet, "/api/v1/attendance/records", "")
		assert.Equal(t, c.wantStatus, rec.Code)
		env := decodeEnvelope(t, rec, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, c.wantCode, env.Error.Code)
	}
}

func TestRawDataEndpoint(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, jwt.NewJWTService(handlerTestSecret, time.Hour))

	rec := doRequest(router, http.MethodGet, "/api/sheets/data", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload sheet.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Logs, 4)
	assert.Equal(t, "S1", payload.Logs[1].Text(0))
}

func TestExportEndpoint(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/export?site_id=A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, workbook.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(workbook.AttendanceSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestTokenGate(t *testing.T) {
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := newHandlerTestRouter(t, &handlerTestSource{}, jwtService)

	rec := doRequest(router, http.MethodGet, "/api/v1/attendance/summary", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guard, _, err := jwtService.GenerateAccessToken(jwt.AccessClaims{StaffID: "S2", Position: "Guard"}, 0)
	require.NoError(t, err)
	rec = doRequest(router, http.MethodGet, "/api/v1/attendance/summary", guard)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	manager, _, err := jwtService.GenerateAccessToken(jwt.AccessClaims{StaffID: "S1", Position: "Operation Manager"}, 0)
	require.NoError(t, err)
	rec = doRequest(router, http.MethodGet, "/api/v1/attendance/summary", manager)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHeartbeatAndNotFound(t *testing.T) {
	router := newHandlerTestRouter(t, &handlerTestSource{}, nil)

	rec := doRequest(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsStream(t *testing.T) {
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	srv := httptest.NewServer(newHandlerTestRouter(t, &handlerTestSource{}, jwtService))
	defer srv.Close()

	token, _, err := jwtService.GenerateAccessToken(jwt.AccessClaims{StaffID: "S1", Position: "General Manager"}, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?jwt="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	assert.Equal(t, "connected", event)

	refreshReq, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/snapshot/refresh", nil)
	require.NoError(t, err)
	refreshReq.Header.Set("Authorization", "Bearer "+token)
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	require.NoError(t, err)
	refreshResp.Body.Close()
	require.Equal(t, http.StatusOK, refreshResp.StatusCode)

	event, data := readEvent(t, reader)
	assert.Equal(t, "snapshot", event)
	var info attendance.SnapshotInfo
	require.NoError(t, json.Unmarshal([]byte(data), &info))
	assert.Equal(t, 3, info.Logs)
	assert.NotEmpty(t, info.ID)
}
