package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	eical "github.com/emersion/go-ical"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quick-event-planner/internal/dto"
	"github.com/noah-isme/quick-event-planner/internal/service"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
)

func assertDownloadHeaders(t *testing.T, w *httptest.ResponseRecorder, count string) {
	t.Helper()
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="events.ics"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, count, w.Header().Get(EventCountHeader))
}

func TestExportHandlerStatelessDownload(t *testing.T) {
	r := newSessionRouter(t)

	w := doRequest(r, http.MethodPost, "/export", `{
		"dates": ["2024-03-02", "2024-02-29", "2024-02-29"],
		"title": "Team Standup",
		"description": "Agenda:\nstatus, blockers",
		"all_day": false,
		"start_time": "09:30",
		"end_time": "09:45"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDownloadHeaders(t, w, "2")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//HandlerTest//EN\r\n"))
	assert.True(t, strings.HasSuffix(body, "END:VCALENDAR\r\n"))
	assert.Contains(t, body, "DESCRIPTION:Agenda:\\nstatus\\, blockers\r\n")
	assert.Contains(t, body, "DTSTART:20240229T093000\r\n")

	cal, err := eical.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	desc, err := events[0].Props.Text(eical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "Agenda:\nstatus, blockers", desc)
}

func TestExportHandlerStatelessValidation(t *testing.T) {
	r := newSessionRouter(t)

	w := doRequest(r, http.MethodPost, "/export", `{"dates": [], "title": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "To export, select at least one date and add an event title.")
	assert.Empty(t, w.Header().Get(EventCountHeader))

	w = doRequest(r, http.MethodPost, "/export", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerSessionDownload(t *testing.T) {
	r := newSessionRouter(t)
	created := createSession(t, r)

	w := doRequest(r, http.MethodPost, "/sessions/"+created.ID+"/readiness", `{"title":"Retro"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "select at least one date")

	w = doRequest(r, http.MethodPost, "/sessions/"+created.ID+"/export", `{"title":"Retro"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	doRequest(r, http.MethodPost, "/sessions/"+created.ID+"/dates/2023-12-31/toggle", "")

	w = doRequest(r, http.MethodPost, "/sessions/"+created.ID+"/export", `{"title":"Retro"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDownloadHeaders(t, w, "1")
	assert.Contains(t, w.Body.String(), "DTSTART;VALUE=DATE:20231231\r\nDTEND;VALUE=DATE:20240101\r\n")

	w = doRequest(r, http.MethodPost, "/sessions/missing/export", `{"title":"Retro"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type exportServiceStub struct {
	captured dto.ExportRequest
}

func (s *exportServiceStub) Export(_ context.Context, req dto.ExportRequest) (*service.ExportResult, error) {
	s.captured = req
	return &service.ExportResult{Filename: "team \"sync\".ics", ContentType: "text/calendar; charset=utf-8", Body: []byte("BEGIN:VCALENDAR\r\n"), EventCount: 7}, nil
}

func (s *exportServiceStub) ExportSelection(context.Context, string, dto.EventDetails) (*service.ExportResult, error) {
	return nil, appErrors.ErrInternal
}

func (s *exportServiceStub) SelectionReadiness(context.Context, string, dto.EventDetails) (dto.Readiness, error) {
	return dto.Readiness{}, nil
}

func TestExportHandlerUsesResultMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &exportServiceStub{}
	h := NewExportHandler(stub)

	r := gin.New()
	r.POST("/export", h.Export)

	w := doRequest(r, http.MethodPost, "/export", `{"dates":["2024-01-01"],"title":"Sync","all_day":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Header().Get(EventCountHeader))
	assert.Equal(t, `attachment; filename="team _sync_.ics"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []string{"2024-01-01"}, stub.captured.Dates)
	assert.Equal(t, "Sync", stub.captured.Title)
	require.NotNil(t, stub.captured.AllDay)
	assert.True(t, *stub.captured.AllDay)
}
