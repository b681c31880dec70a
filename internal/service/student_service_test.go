package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type fakeStudentState struct {
	students []models.Student
}

func (f *fakeStudentState) Students() []models.Student { return f.students }

func (f *fakeStudentState) StudentByID(id string) (models.Student, bool) {
	for _, st := range f.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

func (f *fakeStudentState) StudentByNISN(nisn string) (models.Student, bool) {
	for _, st := range f.students {
		if st.NISN == nisn {
			return st, true
		}
	}
	return models.Student{}, false
}

func (f *fakeStudentState) AddStudent(_ context.Context, student models.Student) error {
	f.students = append(f.students, student)
	return nil
}

func (f *fakeStudentState) UpdateStudent(_ context.Context, student models.Student) error {
	for i, st := range f.students {
		if st.ID == student.ID {
			f.students[i] = student
			return nil
		}
	}
	return appErrors.ErrNotFound
}

func (f *fakeStudentState) RemoveStudent(_ context.Context, id string) error {
	for i, st := range f.students {
		if st.ID == id {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return nil
		}
	}
	return appErrors.ErrNotFound
}

func TestStudentCreateMirrorsNISNIntoQRCode(t *testing.T) {
	state := &fakeStudentState{}
	svc := NewStudentService(state, nil, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:      "Budi Santoso",
		Gender:    models.GenderMale,
		NISN:      "1234567890",
		ClassName: "X-A",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234567890", student.QRCode)
	assert.NotEmpty(t, student.ID)
}

func TestStudentCreateDuplicateNISNConflicts(t *testing.T) {
	state := &fakeStudentState{
		students: []models.Student{{ID: "stu-1", NISN: "1234567890"}},
	}
	svc := NewStudentService(state, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:   "Sari",
		Gender: models.GenderFemale,
		NISN:   "1234567890",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateRejectsUnknownGender(t *testing.T) {
	svc := NewStudentService(&fakeStudentState{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:   "Budi",
		Gender: "X",
		NISN:   "1234567890",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateKeepsNISNUniqueAcrossOthers(t *testing.T) {
	state := &fakeStudentState{
		students: []models.Student{
			{ID: "stu-1", Name: "Budi", NISN: "111"},
			{ID: "stu-2", Name: "Sari", NISN: "222"},
		},
	}
	svc := NewStudentService(state, nil, nil)

	_, err := svc.Update(context.Background(), "stu-2", UpdateStudentRequest{
		Name:   "Sari",
		Gender: models.GenderFemale,
		NISN:   "111",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Re-submitting the student's own NISN is fine.
	updated, err := svc.Update(context.Background(), "stu-2", UpdateStudentRequest{
		Name:   "Sari Dewi",
		Gender: models.GenderFemale,
		NISN:   "222",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sari Dewi", updated.Name)
	assert.Equal(t, "222", updated.QRCode)
}

func TestStudentListFiltersByClass(t *testing.T) {
	state := &fakeStudentState{
		students: []models.Student{
			{ID: "stu-1", ClassName: "X-A"},
			{ID: "stu-2", ClassName: "X-B"},
		},
	}
	svc := NewStudentService(state, nil, nil)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(context.Background(), "X-B")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "stu-2", filtered[0].ID)
}
