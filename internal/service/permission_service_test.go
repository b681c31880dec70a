package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/pkg/config"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type fakePermissionState struct {
	permissions []models.PermissionRequest
	attendances []models.Attendance
}

func (f *fakePermissionState) Permissions() []models.PermissionRequest { return f.permissions }

func (f *fakePermissionState) PermissionByID(id string) (models.PermissionRequest, bool) {
	for _, p := range f.permissions {
		if p.ID == id {
			return p, true
		}
	}
	return models.PermissionRequest{}, false
}

func (f *fakePermissionState) AddPermission(_ context.Context, req models.PermissionRequest) error {
	f.permissions = append([]models.PermissionRequest{req}, f.permissions...)
	return nil
}

func (f *fakePermissionState) UpdatePermission(_ context.Context, req models.PermissionRequest) error {
	for i, p := range f.permissions {
		if p.ID == req.ID {
			f.permissions[i] = req
			return nil
		}
	}
	return appErrors.ErrNotFound
}

func (f *fakePermissionState) AttendanceFor(studentID, date string) (models.Attendance, bool) {
	for _, a := range f.attendances {
		if a.StudentID == studentID && a.Date == date {
			return a, true
		}
	}
	return models.Attendance{}, false
}

func (f *fakePermissionState) AddAttendance(_ context.Context, attendance models.Attendance) error {
	f.attendances = append(f.attendances, attendance)
	return nil
}

func pendingRequest(id string, typ models.PermissionType) models.PermissionRequest {
	return models.PermissionRequest{
		ID:          id,
		StudentID:   "stu-1",
		Date:        "2024-03-11",
		Type:        typ,
		Description: "acara keluarga",
		Status:      models.PermissionStatusPending,
	}
}

func TestPermissionCreateStartsPending(t *testing.T) {
	state := &fakePermissionState{}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	created, err := svc.Create(context.Background(), CreatePermissionRequest{
		StudentID:   "stu-1",
		Date:        "2024-03-11",
		Type:        models.PermissionTypeIzin,
		Description: "acara keluarga",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionStatusPending, created.Status)
	assert.NotEmpty(t, created.ID)
	require.Len(t, state.permissions, 1)
}

type fakeEvidenceSaver struct {
	saved map[string][]byte
}

func (f *fakeEvidenceSaver) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[filename] = data
	return filename, nil
}

func TestPermissionCreateStoresInlineEvidence(t *testing.T) {
	state := &fakePermissionState{}
	saver := &fakeEvidenceSaver{}
	svc := NewPermissionService(state, nil, nil, saver, config.EvidenceConfig{})

	created, err := svc.Create(context.Background(), CreatePermissionRequest{
		StudentID:   "stu-1",
		Date:        "2024-03-11",
		Type:        models.PermissionTypeSakit,
		Description: "surat dokter",
		Evidence:    "data:image/png;base64,aGFsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID+".png", created.Evidence)
	assert.Equal(t, []byte("hallo"), saver.saved[created.ID+".png"])
}

func TestPermissionCreateRejectsOversizedEvidence(t *testing.T) {
	svc := NewPermissionService(&fakePermissionState{}, nil, nil, &fakeEvidenceSaver{}, config.EvidenceConfig{MaxFileSizeBytes: 4})

	_, err := svc.Create(context.Background(), CreatePermissionRequest{
		StudentID:   "stu-1",
		Date:        "2024-03-11",
		Type:        models.PermissionTypeSakit,
		Description: "surat dokter",
		Evidence:    "data:image/png;base64,aGFsbG8=",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPermissionCreateKeepsPlainEvidenceReference(t *testing.T) {
	state := &fakePermissionState{}
	saver := &fakeEvidenceSaver{}
	svc := NewPermissionService(state, nil, nil, saver, config.EvidenceConfig{})

	created, err := svc.Create(context.Background(), CreatePermissionRequest{
		StudentID:   "stu-1",
		Date:        "2024-03-11",
		Type:        models.PermissionTypeIzin,
		Description: "acara keluarga",
		Evidence:    "uploads/surat.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/surat.pdf", created.Evidence)
	assert.Empty(t, saver.saved)
}

func TestPermissionApproveMaterializesAttendance(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeIzin)},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	result, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionStatusApproved, result.Request.Status)
	assert.True(t, result.AttendanceRecorded)

	require.Len(t, state.attendances, 1)
	row := state.attendances[0]
	assert.Equal(t, "stu-1", row.StudentID)
	assert.Equal(t, "2024-03-11", row.Date)
	assert.Equal(t, models.TimeUnspecified, row.Time)
	assert.Equal(t, models.AttendanceStatusIzin, row.Status)
}

func TestPermissionApproveSakitRecordsSakit(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeSakit)},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	result, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusApproved)
	require.NoError(t, err)
	require.True(t, result.AttendanceRecorded)
	assert.Equal(t, models.AttendanceStatusSakit, state.attendances[0].Status)
}

func TestPermissionRejectLeavesLedgerUntouched(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeIzin)},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	result, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionStatusRejected, result.Request.Status)
	assert.False(t, result.AttendanceRecorded)
	assert.Empty(t, state.attendances)
}

func TestPermissionApproveSkipsWhenDayAlreadyRecorded(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeIzin)},
		attendances: []models.Attendance{
			{ID: "a1", StudentID: "stu-1", Date: "2024-03-11", Status: models.AttendanceStatusHadir},
		},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	result, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionStatusApproved, result.Request.Status)
	assert.False(t, result.AttendanceRecorded)
	assert.Len(t, state.attendances, 1, "one-per-day invariant wins over the append")
}

func TestPermissionVerifyTwiceConflicts(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeIzin)},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	_, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusRejected)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "perm-1", models.PermissionStatusApproved)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPermissionVerifyUnknownID(t *testing.T) {
	svc := NewPermissionService(&fakePermissionState{}, nil, nil, nil, config.EvidenceConfig{})

	_, err := svc.Verify(context.Background(), "missing", models.PermissionStatusApproved)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPermissionVerifyRejectsPendingTarget(t *testing.T) {
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{pendingRequest("perm-1", models.PermissionTypeIzin)},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	_, err := svc.Verify(context.Background(), "perm-1", models.PermissionStatusPending)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPermissionListFiltersByStatus(t *testing.T) {
	approved := pendingRequest("perm-2", models.PermissionTypeSakit)
	approved.Status = models.PermissionStatusApproved
	state := &fakePermissionState{
		permissions: []models.PermissionRequest{
			pendingRequest("perm-1", models.PermissionTypeIzin),
			approved,
		},
	}
	svc := NewPermissionService(state, nil, nil, nil, config.EvidenceConfig{})

	pending, err := svc.List(context.Background(), models.PermissionStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "perm-1", pending[0].ID)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
