package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/internal/service"
)

type checkinStateStub struct {
	students    []models.Student
	attendances []models.Attendance
}

func (s *checkinStateStub) StudentByNISN(nisn string) (models.Student, bool) {
	for _, st := range s.students {
		if st.NISN == nisn {
			return st, true
		}
	}
	return models.Student{}, false
}

func (s *checkinStateStub) AttendanceFor(studentID, date string) (models.Attendance, bool) {
	for _, a := range s.attendances {
		if a.StudentID == studentID && a.Date == date {
			return a, true
		}
	}
	return models.Attendance{}, false
}

func (s *checkinStateStub) AddAttendance(_ context.Context, attendance models.Attendance) error {
	s.attendances = append(s.attendances, attendance)
	return nil
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
}

func postJSON(t *testing.T, h gin.HandlerFunc, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h(c)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestCheckinHandlerScanSuccess(t *testing.T) {
	state := &checkinStateStub{
		students: []models.Student{{ID: "stu-1", Name: "Budi", NISN: "1234567890"}},
	}
	handler := NewCheckinHandler(service.NewCheckinService(state, nil, nil))

	rec, env := postJSON(t, handler.Scan, "/checkin/scan", `{"code":"1234567890"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Data["status"])
	require.Len(t, state.attendances, 1)
}

func TestCheckinHandlerScanMissingCode(t *testing.T) {
	handler := NewCheckinHandler(service.NewCheckinService(&checkinStateStub{}, nil, nil))

	rec, env := postJSON(t, handler.Scan, "/checkin/scan", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotNil(t, env.Error)
}

func TestCheckinHandlerScanCooldownReturns429(t *testing.T) {
	state := &checkinStateStub{}
	svc := service.NewCheckinService(state, nil, nil)
	handler := NewCheckinHandler(svc)

	rec, _ := postJSON(t, handler.Scan, "/checkin/scan", `{"code":"unknown"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "invalid code is a decision, not an error")

	rec, env := postJSON(t, handler.Scan, "/checkin/scan", `{"code":"unknown"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "SCANNER_COOLDOWN", env.Error["code"])
}

func TestCheckinHandlerResetReopensGate(t *testing.T) {
	state := &checkinStateStub{
		students: []models.Student{{ID: "stu-1", NISN: "1234567890"}},
	}
	svc := service.NewCheckinService(state, nil, nil)
	handler := NewCheckinHandler(svc)

	_, _ = postJSON(t, handler.Scan, "/checkin/scan", `{"code":"1234567890"}`)
	require.True(t, svc.CoolingDown())

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkin/reset", nil)
	handler.Reset(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, svc.CoolingDown())
}
